package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/codejourney/internal/domain/platform"
)

type EventType string

const (
	EventSucceeded EventType = "lookup.succeeded"
)

// Event is published after every successful platform fetch.
type Event struct {
	EventType EventType       `json:"event_type"`
	LookupID  uuid.UUID       `json:"lookup_id"`
	SessionID uuid.UUID       `json:"session_id"`
	Platform  platform.ID     `json:"platform"`
	Kind      platform.Kind   `json:"kind"`
	Handle    string          `json:"handle"`
	Theme     platform.Theme  `json:"theme"`
	ImageURL  string          `json:"image_url,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Lookup is the persisted history row of an Event.
type Lookup struct {
	ID          uuid.UUID       `json:"id"`
	SessionID   uuid.UUID       `json:"session_id"`
	Platform    platform.ID     `json:"platform"`
	Kind        platform.Kind   `json:"kind"`
	Handle      string          `json:"handle"`
	ImageURL    *string         `json:"image_url"`
	SnapshotURL *string         `json:"snapshot_url"`
	Payload     json.RawMessage `json:"payload"`
	FetchedAt   time.Time       `json:"fetched_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

func FromEvent(e Event, now time.Time) *Lookup {
	l := &Lookup{
		ID:        e.LookupID,
		SessionID: e.SessionID,
		Platform:  e.Platform,
		Kind:      e.Kind,
		Handle:    e.Handle,
		Payload:   e.Payload,
		FetchedAt: e.FetchedAt,
		CreatedAt: now,
	}
	if e.ImageURL != "" {
		imageURL := e.ImageURL
		l.ImageURL = &imageURL
	}
	return l
}

var ErrLookupNotFound = errors.New("lookup not found")

type Filter struct {
	Handle   string
	Platform platform.ID
	Limit    int
	Offset   int
}

type Repository interface {
	// Save is idempotent on ID so redelivered events do not duplicate history.
	Save(ctx context.Context, l *Lookup) error
	SetSnapshotURL(ctx context.Context, id uuid.UUID, snapshotURL string) error
	List(ctx context.Context, f Filter) ([]*Lookup, error)
}
