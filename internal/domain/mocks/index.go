// Package mocks provides mock implementations for testing.
package mocks

import "context"

// IndexManager is a mock implementation of ports.IndexManager.
type IndexManager struct {
	EnsureErr error

	// Call tracking
	EnsureIndexCallCount int
	LastVectorSize       uint64
}

// EnsureIndex records the call and returns the configured error.
func (m *IndexManager) EnsureIndex(ctx context.Context, vectorSize uint64) error {
	m.EnsureIndexCallCount++
	m.LastVectorSize = vectorSize
	return m.EnsureErr
}
