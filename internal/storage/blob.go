package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned by Get when no blob exists under the key.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidKey is returned for empty keys and keys escaping the store.
	ErrInvalidKey = errors.New("invalid blob key")
)

// BlobStore keeps generated exam files under slash-separated keys such as
// "<examID>/qcm.pdf".
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error) // returns canonical key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
