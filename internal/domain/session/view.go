package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/codejourney/internal/domain/platform"
)

// Card is the rendered result of one platform.
type Card struct {
	Platform   platform.ID      `json:"platform" yaml:"platform"`
	Name       string           `json:"name" yaml:"name"`
	Kind       platform.Kind    `json:"kind" yaml:"kind"`
	Handle     string           `json:"handle" yaml:"handle"`
	ProfileURL string           `json:"profile_url" yaml:"profile_url"`
	ImageURL   string           `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	AvatarURL  string           `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	FlagURL    string           `json:"flag_url,omitempty" yaml:"flag_url,omitempty"`
	Title      string           `json:"title,omitempty" yaml:"title,omitempty"`
	Fields     []platform.Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type View struct {
	SessionID   uuid.UUID            `json:"session_id" yaml:"session_id"`
	Handle      string               `json:"handle" yaml:"handle"`
	Theme       platform.Theme       `json:"theme" yaml:"theme"`
	Error       string               `json:"error" yaml:"error"`
	LastUpdated time.Time            `json:"last_updated" yaml:"last_updated"`
	Loading     map[platform.ID]bool `json:"loading" yaml:"loading"`
	Cards       []Card               `json:"cards" yaml:"cards"`
}

// BuildView renders the session in catalog order. Platforms without a result produce no card.
// A payload that can no longer be decoded is dropped rather than failing the whole view.
func BuildView(s *Session, catalog *platform.Catalog) View {
	v := View{
		SessionID:   s.ID,
		Handle:      s.Handle,
		Theme:       s.Theme,
		Error:       s.Error,
		LastUpdated: s.LastUpdated,
		Loading:     make(map[platform.ID]bool),
		Cards:       []Card{},
	}

	for _, p := range catalog.All() {
		slot := s.Peek(p.ID)
		v.Loading[p.ID] = slot != nil && slot.Loading
		if !slot.HasResult() {
			continue
		}

		card := Card{
			Platform:   p.ID,
			Name:       p.Name,
			Kind:       p.Kind,
			Handle:     slot.Handle,
			ProfileURL: p.ProfileURL(slot.Handle),
		}

		switch p.Kind {
		case platform.KindImage:
			card.ImageURL = slot.ImageURL
		case platform.KindJSON:
			stats, err := p.DecodeStats(slot.Payload)
			if err != nil {
				continue
			}
			card.Title = p.Name + " Stats"
			card.AvatarURL = stats.AvatarURL()
			card.Fields = stats.Fields()
			if flagged, ok := stats.(interface{ FlagURL() string }); ok {
				card.FlagURL = flagged.FlagURL()
			}
		}
		v.Cards = append(v.Cards, card)
	}
	return v
}
