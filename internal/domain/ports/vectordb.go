package ports

import "context"

// ElementVector is an element embedding with the payload needed to render a hit.
type ElementVector struct {
	ElementID string
	WorldID   string
	Title     string
	Type      string
	Embedding []float32
}

// SearchHit is one semantic search result.
type SearchHit struct {
	ElementID string
	WorldID   string
	Title     string
	Type      string
	Score     float32
}

// VectorDB defines the interface for the element vector index.
type VectorDB interface {
	// Upsert stores or replaces element vectors.
	Upsert(ctx context.Context, vectors []ElementVector) error

	// Delete removes element vectors by element ID.
	Delete(ctx context.Context, elementIDs []string) error

	// DeleteByWorld removes every vector belonging to a world.
	DeleteByWorld(ctx context.Context, worldID string) error

	// Search returns the elements of a world closest to the embedding.
	Search(ctx context.Context, worldID string, embedding []float32, limit int) ([]SearchHit, error)
}

// IndexManager prepares the backing collection of a VectorDB.
type IndexManager interface {
	// EnsureIndex creates the collection if it doesn't exist.
	EnsureIndex(ctx context.Context, vectorSize uint64) error
}

// Embedder turns element text into vectors for the semantic index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
