package profile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/codejourney/internal/application/service"
	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/internal/domain/session"
	"github.com/khoahotran/codejourney/pkg/apperror"
	"github.com/khoahotran/codejourney/pkg/logger"
)

const (
	DefaultErrorDisplay = 3 * time.Second
	DefaultLoadingDelay = time.Second
)

type Options struct {
	// ErrorDisplay is how long the shared error stays visible.
	ErrorDisplay time.Duration
	// LoadingDelay is the cosmetic loading window of image cards.
	LoadingDelay time.Duration
	Now          func() time.Time
}

type ProfileUseCase struct {
	sessions  session.Repository
	catalog   *platform.Catalog
	fetcher   service.StatsFetcher
	publisher service.LookupPublisher
	notifier  service.SessionNotifier
	scheduler service.Scheduler
	logger    logger.Logger
	opts      Options

	locks      *sessionLocks
	publishing sync.WaitGroup
}

func NewProfileUseCase(
	repo session.Repository,
	catalog *platform.Catalog,
	fetcher service.StatsFetcher,
	publisher service.LookupPublisher,
	notifier service.SessionNotifier,
	scheduler service.Scheduler,
	log logger.Logger,
	opts Options,
) *ProfileUseCase {
	if opts.ErrorDisplay <= 0 {
		opts.ErrorDisplay = DefaultErrorDisplay
	}
	if opts.LoadingDelay <= 0 {
		opts.LoadingDelay = DefaultLoadingDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if publisher == nil {
		publisher = service.NopPublisher{}
	}
	if notifier == nil {
		notifier = service.NopNotifier{}
	}
	if scheduler == nil {
		scheduler = service.RealScheduler{}
	}
	return &ProfileUseCase{
		sessions:  repo,
		catalog:   catalog,
		fetcher:   fetcher,
		publisher: publisher,
		notifier:  notifier,
		scheduler: scheduler,
		logger:    log,
		opts:      opts,
		locks:     newSessionLocks(),
	}
}

// Close waits for lookup events that are still being published.
func (uc *ProfileUseCase) Close() {
	uc.publishing.Wait()
}

func (uc *ProfileUseCase) Catalog() *platform.Catalog {
	return uc.catalog
}

func (uc *ProfileUseCase) ExecuteCreateSession(ctx context.Context) (*session.View, error) {
	s := session.New(uuid.New(), uc.opts.Now())
	if err := uc.sessions.Save(ctx, s); err != nil {
		return nil, apperror.NewInternal("save session", err)
	}
	uc.logger.Info("Session created", zap.String("session_id", s.ID.String()))
	v := session.BuildView(s, uc.catalog)
	return &v, nil
}

func (uc *ProfileUseCase) ExecuteGetView(ctx context.Context, id uuid.UUID) (*session.View, error) {
	s, err := uc.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	v := session.BuildView(s, uc.catalog)
	return &v, nil
}

func (uc *ProfileUseCase) ExecuteSetHandle(ctx context.Context, id uuid.UUID, handle string) (*session.View, error) {
	return uc.mutate(ctx, id, func(s *session.Session) bool {
		if s.Handle == handle {
			return false
		}
		s.SetHandle(handle)
		return true
	})
}

func (uc *ProfileUseCase) ExecuteToggleTheme(ctx context.Context, id uuid.UUID) (*session.View, error) {
	return uc.mutate(ctx, id, func(s *session.Session) bool {
		s.ToggleTheme(uc.catalog)
		return true
	})
}

// mutate applies fn under the session lock, persists the result when fn reports a change
// and pushes the new view to subscribers.
func (uc *ProfileUseCase) mutate(ctx context.Context, id uuid.UUID, fn func(s *session.Session) bool) (*session.View, error) {
	unlock := uc.locks.lock(id)

	s, err := uc.getSession(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}

	changed := fn(s)
	if changed {
		if err := uc.sessions.Save(ctx, s); err != nil {
			unlock()
			return nil, apperror.NewInternal("save session", err)
		}
	}
	v := session.BuildView(s, uc.catalog)
	unlock()

	if changed {
		uc.notifier.Notify(v)
	}
	return &v, nil
}

func (uc *ProfileUseCase) getSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	s, err := uc.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, apperror.NewNotFound("session", id.String())
		}
		return nil, apperror.NewInternal("load session", err)
	}
	return s, nil
}

// showError sets the shared error and schedules its removal. Only this error is removed:
// a newer error shown in the meantime keeps its own full display window.
func (uc *ProfileUseCase) showError(s *session.Session, msg string) {
	seq := s.ShowError(msg)
	id := s.ID
	uc.scheduler.AfterFunc(uc.opts.ErrorDisplay, func() {
		_, err := uc.mutate(context.Background(), id, func(s *session.Session) bool {
			return s.ClearError(seq)
		})
		if err != nil {
			uc.logger.Warn("Failed to auto-clear session error", zap.String("session_id", id.String()), zap.Error(err))
		}
	})
}

func (uc *ProfileUseCase) publish(e lookup.Event) {
	uc.publishing.Add(1)
	go func() {
		defer uc.publishing.Done()
		if err := uc.publisher.PublishLookupEvent(context.Background(), e); err != nil {
			uc.logger.Error("Failed to publish lookup event", err,
				zap.String("lookup_id", e.LookupID.String()),
				zap.String("platform", string(e.Platform)),
			)
		}
	}()
}
