package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
)

// VectorDB is an in-memory mock implementation of ports.VectorDB. Search
// returns the world's vectors ordered by title with a fixed score.
type VectorDB struct {
	Err error

	mu      sync.Mutex
	Vectors map[string]ports.ElementVector

	// Call tracking
	UpsertCallCount        int
	DeleteCallCount        int
	DeleteByWorldCallCount int
}

// Upsert stores or replaces vectors.
func (m *VectorDB) Upsert(ctx context.Context, vectors []ports.ElementVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertCallCount++
	if m.Err != nil {
		return m.Err
	}
	if m.Vectors == nil {
		m.Vectors = make(map[string]ports.ElementVector)
	}
	for _, v := range vectors {
		m.Vectors[v.ElementID] = v
	}
	return nil
}

// Delete removes vectors by element ID.
func (m *VectorDB) Delete(ctx context.Context, elementIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCallCount++
	if m.Err != nil {
		return m.Err
	}
	for _, id := range elementIDs {
		delete(m.Vectors, id)
	}
	return nil
}

// DeleteByWorld removes every vector of a world.
func (m *VectorDB) DeleteByWorld(ctx context.Context, worldID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteByWorldCallCount++
	if m.Err != nil {
		return m.Err
	}
	for id, v := range m.Vectors {
		if v.WorldID == worldID {
			delete(m.Vectors, id)
		}
	}
	return nil
}

// Search returns up to limit vectors of the world.
func (m *VectorDB) Search(ctx context.Context, worldID string, embedding []float32, limit int) ([]ports.SearchHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var hits []ports.SearchHit
	for _, v := range m.Vectors {
		if v.WorldID != worldID {
			continue
		}
		hits = append(hits, ports.SearchHit{
			ElementID: v.ElementID,
			WorldID:   v.WorldID,
			Title:     v.Title,
			Type:      v.Type,
			Score:     1,
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Title < hits[j].Title })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (m *VectorDB) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Vectors)
}
