// Package storage defines the interface for object storage operations.
// The MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when the requested object does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes a stored object as reported by the backend.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Storage is the interface for storing and retrieving objects in a single bucket.
type Storage interface {
	// Put streams data to the store under the given key, replacing any existing object.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Stat returns the object's metadata, or ErrNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Get opens a stream over the object's content. The caller closes it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
