package http

import (
	"time"

	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/internal/domain/session"
)

// LastUpdatedLayout renders the refresh time the way the page shows it, e.g. "10/19/2026, 9:05:00 AM".
const LastUpdatedLayout = "1/2/2006, 3:04:05 PM"

type SetHandleRequest struct {
	Handle *string `json:"handle" binding:"required"`
}

type SessionDTO struct {
	SessionID   string               `json:"session_id"`
	Handle      string               `json:"handle"`
	Theme       platform.Theme       `json:"theme"`
	Error       string               `json:"error,omitempty"`
	LastUpdated string               `json:"last_updated,omitempty"`
	Loading     map[platform.ID]bool `json:"loading"`
	Cards       []session.Card       `json:"cards"`
}

type CreateSessionResponse struct {
	Token   string     `json:"token"`
	Session SessionDTO `json:"session"`
}

func ToSessionDTO(v *session.View, loc *time.Location) SessionDTO {
	dto := SessionDTO{
		SessionID: v.SessionID.String(),
		Handle:    v.Handle,
		Theme:     v.Theme,
		Error:     v.Error,
		Loading:   v.Loading,
		Cards:     v.Cards,
	}
	if !v.LastUpdated.IsZero() {
		if loc == nil {
			loc = time.Local
		}
		dto.LastUpdated = v.LastUpdated.In(loc).Format(LastUpdatedLayout)
	}
	return dto
}

type PlatformDTO struct {
	ID       platform.ID   `json:"id"`
	Name     string        `json:"name"`
	Kind     platform.Kind `json:"kind"`
	Themed   bool          `json:"themed"`
	Endpoint string        `json:"endpoint"`
}

func ToPlatformDTOs(catalog *platform.Catalog) []PlatformDTO {
	dtos := make([]PlatformDTO, 0, len(catalog.All()))
	for _, p := range catalog.All() {
		dtos = append(dtos, PlatformDTO{ID: p.ID, Name: p.Name, Kind: p.Kind, Themed: p.Themed, Endpoint: p.BaseURL})
	}
	return dtos
}

type LookupDTO struct {
	ID          string           `json:"id"`
	Platform    platform.ID      `json:"platform"`
	Kind        platform.Kind    `json:"kind"`
	Handle      string           `json:"handle"`
	ProfileURL  string           `json:"profile_url,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	SnapshotURL *string          `json:"snapshot_url,omitempty"`
	Fields      []platform.Field `json:"fields,omitempty"`
	FetchedAt   time.Time        `json:"fetched_at"`
}

func ToLookupDTOs(lookups []*lookup.Lookup, catalog *platform.Catalog) []LookupDTO {
	dtos := make([]LookupDTO, 0, len(lookups))
	for _, l := range lookups {
		dto := LookupDTO{
			ID:          l.ID.String(),
			Platform:    l.Platform,
			Kind:        l.Kind,
			Handle:      l.Handle,
			ImageURL:    l.ImageURL,
			SnapshotURL: l.SnapshotURL,
			FetchedAt:   l.FetchedAt,
		}
		if p, ok := catalog.Get(l.Platform); ok {
			dto.ProfileURL = p.ProfileURL(l.Handle)
			if p.Kind == platform.KindJSON {
				if stats, err := p.DecodeStats(l.Payload); err == nil {
					dto.Fields = stats.Fields()
				}
			}
		}
		dtos = append(dtos, dto)
	}
	return dtos
}
