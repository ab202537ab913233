package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/codejourney/internal/application/service"
	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/pkg/logger"
)

// ProcessLookupEventUseCase runs in the worker: it records a successful lookup and keeps a
// copy of image cards, since the card services render live data and change over time.
type ProcessLookupEventUseCase struct {
	lookupRepo lookup.Repository
	uploader   service.Uploader
	logger     logger.Logger
	now        func() time.Time
}

func NewProcessLookupEventUseCase(lr lookup.Repository, up service.Uploader, log logger.Logger) *ProcessLookupEventUseCase {
	return &ProcessLookupEventUseCase{lookupRepo: lr, uploader: up, logger: log, now: time.Now}
}

func (uc *ProcessLookupEventUseCase) Execute(ctx context.Context, e lookup.Event) error {
	l := uc.logger.With(zap.String("lookup_id", e.LookupID.String()), zap.String("platform", string(e.Platform)))

	if e.EventType != lookup.EventSucceeded {
		l.Warn("Unknown lookup event type, skip", zap.String("event_type", string(e.EventType)))
		return nil
	}

	record := lookup.FromEvent(e, uc.now().UTC())
	if err := uc.lookupRepo.Save(ctx, record); err != nil {
		return fmt.Errorf("save lookup failed: %w", err)
	}
	l.Info("Lookup recorded", zap.String("handle", e.Handle))

	if e.Kind != platform.KindImage || e.ImageURL == "" || uc.uploader == nil {
		return nil
	}

	folder := fmt.Sprintf("cards/%s", e.Platform)
	publicID := snapshotPublicID(e)
	snapshotURL, err := uc.uploader.UploadRemote(ctx, e.ImageURL, folder, publicID)
	if err != nil {
		// The history row is already stored; a missing snapshot is not worth a redelivery.
		l.Error("Failed to snapshot card image", err, zap.String("image_url", e.ImageURL))
		return nil
	}

	if err := uc.lookupRepo.SetSnapshotURL(ctx, e.LookupID, snapshotURL); err != nil {
		if delErr := uc.uploader.Delete(ctx, folder+"/"+publicID); delErr != nil {
			l.Warn("Failed to remove orphan snapshot", zap.Error(delErr))
		}
		return fmt.Errorf("store snapshot url failed: %w", err)
	}
	l.Info("Card snapshot stored", zap.String("snapshot_url", snapshotURL))
	return nil
}

func snapshotPublicID(e lookup.Event) string {
	handle := strings.ToLower(strings.NewReplacer("/", "_", " ", "_").Replace(e.Handle))
	return fmt.Sprintf("%s-%s-%s", handle, e.FetchedAt.UTC().Format("20060102T150405"), e.LookupID.String()[:8])
}
