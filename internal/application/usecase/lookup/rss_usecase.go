package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/pkg/logger"
)

type RSSUseCase struct {
	lookupRepo lookup.Repository
	catalog    *platform.Catalog
	logger     logger.Logger
	siteURL    string
}

func NewRSSUseCase(lr lookup.Repository, catalog *platform.Catalog, siteURL string, log logger.Logger) *RSSUseCase {
	return &RSSUseCase{lookupRepo: lr, catalog: catalog, siteURL: siteURL, logger: log}
}

// Execute builds a feed of the most recent lookups, optionally for one handle.
func (uc *RSSUseCase) Execute(ctx context.Context, handle string) (*feeds.Feed, error) {
	uc.logger.Info("Generating lookup RSS feed...", zap.String("handle", handle))

	feed := &feeds.Feed{
		Title:       "CodeJourney - Recent lookups",
		Link:        &feeds.Link{Href: uc.siteURL},
		Description: "Competitive programming stats looked up on CodeJourney.",
		Created:     time.Now(),
	}
	if handle != "" {
		feed.Title = fmt.Sprintf("CodeJourney - %s", handle)
	}

	lookups, err := uc.lookupRepo.List(ctx, lookup.Filter{Handle: handle, Limit: 20})
	if err != nil {
		uc.logger.Error("Failed to list lookups for RSS", err)
		return nil, err
	}

	for _, l := range lookups {
		p, ok := uc.catalog.Get(l.Platform)
		if !ok {
			continue
		}
		item := &feeds.Item{
			Id:          l.ID.String(),
			Title:       fmt.Sprintf("%s on %s", l.Handle, p.Name),
			Link:        &feeds.Link{Href: p.ProfileURL(l.Handle)},
			Description: describe(p, l),
			Created:     l.FetchedAt,
		}
		if img := cardImage(l); img != "" {
			item.Enclosure = &feeds.Enclosure{Url: img, Type: "image/svg+xml", Length: "0"}
		}
		feed.Items = append(feed.Items, item)
	}

	uc.logger.Info("Lookup RSS feed generated", zap.Int("item_count", len(feed.Items)))
	return feed, nil
}

func cardImage(l *lookup.Lookup) string {
	if l.SnapshotURL != nil {
		return *l.SnapshotURL
	}
	if l.ImageURL != nil {
		return *l.ImageURL
	}
	return ""
}

func describe(p platform.Platform, l *lookup.Lookup) string {
	if p.Kind == platform.KindImage {
		return fmt.Sprintf("%s stats card for %s", p.Name, l.Handle)
	}
	stats, err := p.DecodeStats(l.Payload)
	if err != nil {
		return fmt.Sprintf("%s stats for %s", p.Name, l.Handle)
	}
	var b strings.Builder
	for _, f := range stats.Fields() {
		if f.Value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	return b.String()
}
