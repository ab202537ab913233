package service

import (
	"context"
	"encoding/json"

	"github.com/khoahotran/codejourney/internal/domain/platform"
)

// StatsFetcher retrieves the raw payload of a JSON platform. Implementations return an
// apperror.ErrNotFound error when the success key is missing and apperror.ErrUpstream
// when the request or body is unusable.
type StatsFetcher interface {
	FetchStats(ctx context.Context, p platform.Platform, handle string) (json.RawMessage, error)
}
