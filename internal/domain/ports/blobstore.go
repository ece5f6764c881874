// Package ports defines interfaces for external service communication.
package ports

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by BlobStore.Get when the key has never been written.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore persists complete serialized state under well-known keys.
// Every Put replaces the whole value; there is no partial update.
type BlobStore interface {
	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the value stored under key, or ErrBlobNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying storage.
	Close() error
}
