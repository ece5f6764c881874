package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
)

// BlobStore is an in-memory mock implementation of ports.BlobStore.
type BlobStore struct {
	PutErr error
	GetErr error

	mu    sync.Mutex
	Blobs map[string][]byte

	// Call tracking
	PutCallCount int
	Closed       bool
}

// Put stores a copy of data.
func (m *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PutCallCount++
	if m.PutErr != nil {
		return m.PutErr
	}
	if m.Blobs == nil {
		m.Blobs = make(map[string][]byte)
	}
	m.Blobs[key] = append([]byte(nil), data...)
	return nil
}

// Get returns the stored value or ports.ErrBlobNotFound.
func (m *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.Blobs[key]
	if !ok {
		return nil, ports.ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete removes key.
func (m *BlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Blobs, key)
	return nil
}

// Close marks the store closed.
func (m *BlobStore) Close() error {
	m.Closed = true
	return nil
}
