package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/internal/domain/session"
	"github.com/khoahotran/codejourney/pkg/apperror"
)

var tracer = otel.Tracer("profile_usecase")

// ExecuteFetch runs the fetch action of one platform against the session's current handle.
//
// Image cards resolve synchronously; their loading flag is only a display delay.
// JSON cards await the stats API outside the session lock, so other platforms of the
// same session can progress meanwhile. The remote call is detached from ctx cancellation:
// it finishes and lands in its slot even if the caller went away or the handle changed.
func (uc *ProfileUseCase) ExecuteFetch(ctx context.Context, id uuid.UUID, platformID platform.ID) (*session.View, error) {
	p, ok := uc.catalog.Get(platformID)
	if !ok {
		return nil, apperror.NewNotFound("platform", string(platformID))
	}

	ctx, span := tracer.Start(ctx, "ExecuteFetch", trace.WithAttributes(
		attribute.String("session_id", id.String()),
		attribute.String("platform", string(p.ID)),
	))
	defer span.End()

	var (
		handle     string
		theme      platform.Theme
		imageURL   string
		loadingSeq uint64
	)
	now := uc.opts.Now()
	view, err := uc.mutate(ctx, id, func(s *session.Session) bool {
		if s.Handle == "" {
			uc.showError(s, p.EmptyHandleMessage())
			return true
		}
		handle, theme = s.Handle, s.Theme
		loadingSeq = s.BeginLoading(p.ID)
		if p.Kind == platform.KindImage {
			imageURL = p.CardURL(handle, theme)
			s.SetImageResult(p.ID, handle, imageURL, now)
			s.MarkSuccess(now)
		}
		return true
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if handle == "" {
		return view, nil
	}
	span.SetAttributes(attribute.String("handle", handle))

	if p.Kind == platform.KindImage {
		uc.displayDelay(id, p.ID, loadingSeq)
		uc.publish(lookup.Event{
			EventType: lookup.EventSucceeded,
			LookupID:  uuid.New(),
			SessionID: id,
			Platform:  p.ID,
			Kind:      p.Kind,
			Handle:    handle,
			Theme:     theme,
			ImageURL:  imageURL,
			FetchedAt: now,
		})
		return view, nil
	}

	return uc.awaitStats(context.WithoutCancel(ctx), span, id, p, handle, theme, loadingSeq)
}

// displayDelay flips the loading flag back after the cosmetic window unless a newer fetch
// of the same platform opened its own window meanwhile. Nothing awaits it.
func (uc *ProfileUseCase) displayDelay(id uuid.UUID, platformID platform.ID, seq uint64) {
	uc.scheduler.AfterFunc(uc.opts.LoadingDelay, func() {
		_, err := uc.mutate(context.Background(), id, func(s *session.Session) bool {
			return s.EndLoading(platformID, seq)
		})
		if err != nil {
			uc.logger.Warn("Failed to end loading display", zap.String("session_id", id.String()), zap.Error(err))
		}
	})
}

func (uc *ProfileUseCase) awaitStats(ctx context.Context, span trace.Span, id uuid.UUID, p platform.Platform, handle string, theme platform.Theme, loadingSeq uint64) (*session.View, error) {
	l := uc.logger.With(zap.String("session_id", id.String()), zap.String("platform", string(p.ID)), zap.String("handle", handle))

	payload, fetchErr := uc.fetcher.FetchStats(ctx, p, handle)
	if fetchErr != nil {
		span.RecordError(fetchErr)
		if errors.Is(fetchErr, apperror.ErrNotFound) {
			l.Info("Stats lookup found no user")
		} else {
			l.Warn("Stats lookup failed", zap.Error(fetchErr))
		}
	}

	now := uc.opts.Now()
	view, err := uc.mutate(ctx, id, func(s *session.Session) bool {
		s.EndLoading(p.ID, loadingSeq)
		switch {
		case fetchErr == nil:
			s.SetPayloadResult(p.ID, handle, payload, now)
			s.MarkSuccess(now)
		case errors.Is(fetchErr, apperror.ErrNotFound):
			uc.showError(s, p.NotFoundMessage())
		default:
			uc.showError(s, p.FailureMessage())
		}
		return true
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if fetchErr == nil {
		uc.publish(lookup.Event{
			EventType: lookup.EventSucceeded,
			LookupID:  uuid.New(),
			SessionID: id,
			Platform:  p.ID,
			Kind:      p.Kind,
			Handle:    handle,
			Theme:     theme,
			Payload:   payload,
			FetchedAt: now,
		})
	}
	return view, nil
}

// ExecuteFetchAll triggers every platform at once. They complete in any order.
func (uc *ProfileUseCase) ExecuteFetchAll(ctx context.Context, id uuid.UUID) (*session.View, error) {
	s, err := uc.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Handle == "" {
		return uc.mutate(ctx, id, func(s *session.Session) bool {
			if s.Handle != "" {
				return false
			}
			uc.showError(s, "Please enter a username")
			return true
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range uc.catalog.All() {
		g.Go(func() error {
			_, err := uc.ExecuteFetch(gctx, id, p.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uc.ExecuteGetView(ctx, id)
}
