package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when nothing is stored at the path.
var ErrNotFound = errors.New("stored object not found")

// Storage keeps uploaded blobs under relative paths.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is idempotent: a missing path is not an error.
	Delete(ctx context.Context, path string) error
}
