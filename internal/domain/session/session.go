package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/codejourney/internal/domain/platform"
)

var ErrSessionNotFound = errors.New("session not found")

// Slot is the per-platform state: a loading flag and an optional result.
type Slot struct {
	Loading bool `json:"loading"`
	// LoadingSeq identifies the latest fetch so an earlier one cannot end its loading window.
	LoadingSeq uint64 `json:"loading_seq"`
	// Handle is the handle the current result was fetched for; it may differ from
	// Session.Handle once the user types something else.
	Handle    string          `json:"handle,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	FetchedAt time.Time       `json:"fetched_at,omitempty"`
}

func (s *Slot) HasResult() bool {
	return s != nil && (s.ImageURL != "" || len(s.Payload) > 0)
}

type Session struct {
	ID     uuid.UUID             `json:"id"`
	Handle string                `json:"handle"`
	Theme  platform.Theme        `json:"theme"`
	Slots  map[platform.ID]*Slot `json:"slots"`
	Error  string                `json:"error"`
	// ErrorSeq increases every time an error is shown so a stale auto-clear can be told apart.
	ErrorSeq    uint64    `json:"error_seq"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func New(id uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:        id,
		Theme:     platform.ThemeDark,
		Slots:     make(map[platform.ID]*Slot),
		CreatedAt: now,
	}
}

// Slot returns the slot of a platform, creating an empty one on first use.
func (s *Session) Slot(id platform.ID) *Slot {
	if s.Slots == nil {
		s.Slots = make(map[platform.ID]*Slot)
	}
	slot, ok := s.Slots[id]
	if !ok {
		slot = &Slot{}
		s.Slots[id] = slot
	}
	return slot
}

func (s *Session) Peek(id platform.ID) *Slot {
	return s.Slots[id]
}

func (s *Session) SetHandle(handle string) {
	s.Handle = handle
}

// ShowError replaces the visible error and returns its sequence number.
func (s *Session) ShowError(msg string) uint64 {
	s.ErrorSeq++
	s.Error = msg
	return s.ErrorSeq
}

// ClearError hides the error only if it is still the one identified by seq.
func (s *Session) ClearError(seq uint64) bool {
	if s.ErrorSeq != seq || s.Error == "" {
		return false
	}
	s.Error = ""
	return true
}

// MarkSuccess refreshes the timestamp and clears any visible error immediately.
func (s *Session) MarkSuccess(now time.Time) {
	s.LastUpdated = now
	s.Error = ""
}

// BeginLoading marks the platform as loading and returns the sequence number of this fetch.
func (s *Session) BeginLoading(id platform.ID) uint64 {
	slot := s.Slot(id)
	slot.LoadingSeq++
	slot.Loading = true
	return slot.LoadingSeq
}

// EndLoading clears the loading flag only if seq is still the latest fetch of the platform.
func (s *Session) EndLoading(id platform.ID, seq uint64) bool {
	slot := s.Peek(id)
	if slot == nil || !slot.Loading || slot.LoadingSeq != seq {
		return false
	}
	slot.Loading = false
	return true
}

func (s *Session) SetImageResult(id platform.ID, handle, imageURL string, now time.Time) {
	slot := s.Slot(id)
	slot.Handle = handle
	slot.ImageURL = imageURL
	slot.Payload = nil
	slot.FetchedAt = now
}

func (s *Session) SetPayloadResult(id platform.ID, handle string, payload json.RawMessage, now time.Time) {
	slot := s.Slot(id)
	slot.Handle = handle
	slot.ImageURL = ""
	slot.Payload = payload
	slot.FetchedAt = now
}

// ToggleTheme flips the theme and regenerates the card URL of every themed platform
// that already has a result. Non-themed results are left untouched.
func (s *Session) ToggleTheme(catalog *platform.Catalog) {
	s.Theme = s.Theme.Toggle()
	for _, p := range catalog.All() {
		if !p.Themed || p.Kind != platform.KindImage {
			continue
		}
		slot := s.Peek(p.ID)
		if slot == nil || slot.ImageURL == "" || slot.Handle == "" {
			continue
		}
		slot.ImageURL = p.CardURL(slot.Handle, s.Theme)
	}
}

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Save(ctx context.Context, s *Session) error
}
