package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
	embedder "github.com/ersonp/lore-worlds/internal/infrastructure/embedder/openai"
)

// InitHandler handles workspace initialization.
type InitHandler struct {
	indexManager ports.IndexManager
}

// NewInitHandler creates a new init handler. indexManager may be nil when
// semantic search is not configured.
func NewInitHandler(indexManager ports.IndexManager) *InitHandler {
	return &InitHandler{
		indexManager: indexManager,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath     string
	StoragePath    string
	CollectionName string
}

// Handle writes the default config and prepares the vector index.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("lore already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	result := &InitResult{
		ConfigPath:  config.ConfigFilePath(basePath),
		StoragePath: cfg.StoragePath(basePath),
	}

	if h.indexManager != nil {
		if err := h.indexManager.EnsureIndex(ctx, embedder.VectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
		result.CollectionName = cfg.Qdrant.Collection
	}

	return result, nil
}
