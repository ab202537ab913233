package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/codejourney/internal/domain/session"
)

const (
	sessionKeyPrefix  = "session:"
	DefaultSessionTTL = 24 * time.Hour
)

type redisSessionRepo struct {
	rdb redisKV
	ttl time.Duration
}

// NewRedisSessionRepo stores sessions as JSON under session:<id>. Every save refreshes the TTL.
func NewRedisSessionRepo(rdb redisKV, ttl time.Duration) session.Repository {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &redisSessionRepo{rdb: rdb, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (r *redisSessionRepo) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *redisSessionRepo) Save(ctx context.Context, s *session.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(s.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

// memorySessionRepo keeps sessions in process. The CLI uses it; it is also the fallback
// of the server when Redis is not configured.
type memorySessionRepo struct {
	mu   sync.RWMutex
	data map[uuid.UUID][]byte
}

func NewMemorySessionRepo() session.Repository {
	return &memorySessionRepo{data: make(map[uuid.UUID][]byte)}
}

func (r *memorySessionRepo) Get(_ context.Context, id uuid.UUID) (*session.Session, error) {
	r.mu.RLock()
	raw, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, session.ErrSessionNotFound
	}

	var s session.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Save stores a copy so callers never share a session value across goroutines.
func (r *memorySessionRepo) Save(_ context.Context, s *session.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	r.mu.Lock()
	r.data[s.ID] = raw
	r.mu.Unlock()
	return nil
}
