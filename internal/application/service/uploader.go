package service

import (
	"context"
)

// Uploader stores a copy of a remote asset (a rendered stats card) and returns its URL.
type Uploader interface {
	UploadRemote(ctx context.Context, sourceURL string, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
}
