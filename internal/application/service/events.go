package service

import (
	"context"

	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/internal/domain/session"
)

type LookupPublisher interface {
	PublishLookupEvent(ctx context.Context, e lookup.Event) error
}

// SessionNotifier is told about every state change of a session.
type SessionNotifier interface {
	Notify(v session.View)
}

type NopPublisher struct{}

func (NopPublisher) PublishLookupEvent(context.Context, lookup.Event) error { return nil }

type NopNotifier struct{}

func (NopNotifier) Notify(session.View) {}
