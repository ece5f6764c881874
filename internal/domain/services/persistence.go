package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/infrastructure/formats"
)

// Blob keys of the persisted state.
const (
	GraphKey    = "lore.graph"
	ActivityKey = "lore.activity"
)

// PersistenceService saves and restores the whole store as two blobs.
type PersistenceService struct {
	store  *Store
	blobs  ports.BlobStore
	logger *zap.Logger
}

// NewPersistenceService creates a new persistence service. logger may be nil.
func NewPersistenceService(store *Store, blobs ports.BlobStore, logger *zap.Logger) *PersistenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersistenceService{store: store, blobs: blobs, logger: logger}
}

// Save writes the graph and the activity log from one snapshot.
func (p *PersistenceService) Save(ctx context.Context) error {
	snap, err := p.store.Snapshot()
	if err != nil {
		return fmt.Errorf("taking snapshot: %w", err)
	}

	graph, err := formats.Encode(entities.FormatCanonical, &formats.Document{
		Worlds:     snap.Worlds,
		Activity:   []entities.ActivityItem{},
		ExportedAt: snap.TakenAt,
	})
	if err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}

	oldestFirst := make([]entities.ActivityItem, len(snap.Activity))
	for i, item := range snap.Activity {
		oldestFirst[len(snap.Activity)-1-i] = item
	}
	activity, err := formats.EncodeActivity(oldestFirst)
	if err != nil {
		return err
	}

	if err := p.blobs.Put(ctx, GraphKey, graph); err != nil {
		return fmt.Errorf("saving graph: %w", err)
	}
	if err := p.blobs.Put(ctx, ActivityKey, activity); err != nil {
		return fmt.Errorf("saving activity: %w", err)
	}

	p.logger.Debug("state saved",
		zap.Int("worlds", len(snap.Worlds)),
		zap.Int("activity", len(oldestFirst)),
		zap.Int("graphBytes", len(graph)))
	return nil
}

// Load replaces the store contents with the persisted state. Missing
// blobs load as empty.
func (p *PersistenceService) Load(ctx context.Context) error {
	worlds := []entities.World{}
	graph, err := p.blobs.Get(ctx, GraphKey)
	switch {
	case errors.Is(err, ports.ErrBlobNotFound):
	case err != nil:
		return fmt.Errorf("loading graph: %w", err)
	default:
		doc, err := formats.Decode(graph)
		if err != nil {
			return fmt.Errorf("decoding graph: %w", err)
		}
		worlds = doc.Worlds
	}

	var activity []entities.ActivityItem
	data, err := p.blobs.Get(ctx, ActivityKey)
	switch {
	case errors.Is(err, ports.ErrBlobNotFound):
	case err != nil:
		return fmt.Errorf("loading activity: %w", err)
	default:
		activity, err = formats.DecodeActivity(data)
		if err != nil {
			return fmt.Errorf("decoding activity: %w", err)
		}
	}

	if err := p.store.Replace(ctx, worlds, activity); err != nil {
		return fmt.Errorf("restoring store: %w", err)
	}

	p.logger.Debug("state loaded", zap.Int("worlds", len(worlds)), zap.Int("activity", len(activity)))
	return nil
}
