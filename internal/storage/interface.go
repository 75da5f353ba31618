package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStorage defines the object store operations used by the projection job.
// Objects are addressed by (bucket, key) because every resource names its own bucket.
type ObjectStorage interface {
	// Upload writes an object, overwriting any previous content.
	Upload(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error

	// Download opens an object for reading. Callers must close the reader.
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Exists checks if an object exists.
	Exists(ctx context.Context, bucket, key string) (bool, error)
}
