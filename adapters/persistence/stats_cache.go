package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/codejourney/internal/application/service"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/pkg/logger"
)

const statsKeyPrefix = "stats:"

// CachingStatsFetcher wraps a StatsFetcher and keeps successful payloads in Redis.
// Not-found and failed lookups always go to the upstream API again.
type CachingStatsFetcher struct {
	next   service.StatsFetcher
	rdb    redisKV
	ttl    time.Duration
	logger logger.Logger
}

func NewCachingStatsFetcher(next service.StatsFetcher, rdb redisKV, ttl time.Duration, log logger.Logger) *CachingStatsFetcher {
	return &CachingStatsFetcher{next: next, rdb: rdb, ttl: ttl, logger: log}
}

func statsKey(id platform.ID, handle string) string {
	return fmt.Sprintf("%s%s:%s", statsKeyPrefix, id, strings.ToLower(handle))
}

func (c *CachingStatsFetcher) FetchStats(ctx context.Context, p platform.Platform, handle string) (json.RawMessage, error) {
	key := statsKey(p.ID, handle)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.logger.Debug("Stats cache hit", zap.String("key", key))
		return json.RawMessage(cached), nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Stats cache read failed, fetch from API", zap.String("key", key), zap.Error(err))
	}

	payload, err := c.next.FetchStats(ctx, p, handle)
	if err != nil {
		return nil, err
	}

	if err := c.rdb.Set(ctx, key, []byte(payload), c.ttl).Err(); err != nil {
		c.logger.Warn("Stats cache write failed", zap.String("key", key), zap.Error(err))
	}
	return payload, nil
}
