package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no object exists at the given path.
var ErrNotFound = errors.New("stored object not found")

// Storage defines the blob operations used for room photos.
// Paths are relative, slash separated keys such as "rooms/ab/<id>.jpg".
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
