package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/infrastructure/formats"
)

// ConflictStrategy defines how to handle an incoming world whose identity
// already exists.
type ConflictStrategy string

const (
	// ConflictFail aborts the import and reports the conflicts.
	ConflictFail ConflictStrategy = "fail"
	// ConflictSkip leaves the existing world and drops the incoming one.
	ConflictSkip ConflictStrategy = "skip"
	// ConflictRename imports the incoming world under fresh identities.
	ConflictRename ConflictStrategy = "rename"
)

// ImportedTitleSuffix decorates the title of a world imported under a new identity.
const ImportedTitleSuffix = " (Imported)"

// ParseConflictStrategy converts a string to a ConflictStrategy.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch c := ConflictStrategy(strings.ToLower(strings.TrimSpace(s))); c {
	case ConflictFail, ConflictSkip, ConflictRename:
		return c, nil
	case "":
		return ConflictFail, nil
	default:
		return "", &entities.InputError{Field: "on-conflict", Value: s, Message: "valid: fail, skip, rename"}
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun      bool                        // Validate without saving
	OnConflict  ConflictStrategy            // Default for conflicting worlds
	Resolutions map[string]ConflictStrategy // Per-world override, keyed by incoming world ID
}

func (o *ImportOptions) strategyFor(worldID string) ConflictStrategy {
	if c, ok := o.Resolutions[worldID]; ok && c != "" {
		return c
	}
	if o.OnConflict == "" {
		return ConflictFail
	}
	return o.OnConflict
}

// RenamedWorld records a world imported under a new identity.
type RenamedWorld struct {
	OriginalID string
	NewID      string
	Title      string
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported      int
	Skipped       int
	Renamed       []RenamedWorld
	Elements      int
	Relationships int
}

// ImportService loads canonical documents into the store.
type ImportService struct {
	store  *Store
	logger *zap.Logger
}

// NewImportService creates a new import service. logger may be nil.
func NewImportService(store *Store, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{store: store, logger: logger}
}

// Import decodes a canonical document and adds its worlds to the store.
// Everything is validated before the single commit; on any error the store
// is unchanged.
func (s *ImportService) Import(ctx context.Context, data []byte, opts ImportOptions) (*ImportResult, error) {
	for id, c := range opts.Resolutions {
		if _, err := ParseConflictStrategy(string(c)); err != nil {
			return nil, fmt.Errorf("resolution for world %s: %w", id, err)
		}
	}
	if _, err := ParseConflictStrategy(string(opts.OnConflict)); err != nil {
		return nil, err
	}

	doc, err := formats.Decode(data)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	batch := make([]insertion, 0, len(doc.Worlds))
	var unresolved []entities.WorldConflict

	for i := range doc.Worlds {
		incoming := doc.Worlds[i]

		existing, err := s.store.World(incoming.ID)
		if err != nil {
			batch = append(batch, insertion{world: incoming, restored: activityFor(doc.Activity, incoming.ID)})
			continue
		}

		switch opts.strategyFor(incoming.ID) {
		case ConflictSkip:
			result.Skipped++
		case ConflictRename:
			renamed := s.reidentify(incoming)
			batch = append(batch, insertion{world: renamed})
			result.Renamed = append(result.Renamed, RenamedWorld{
				OriginalID: incoming.ID,
				NewID:      renamed.ID,
				Title:      renamed.Title,
			})
		default:
			unresolved = append(unresolved, entities.WorldConflict{
				WorldID:       incoming.ID,
				ExistingTitle: existing.Title,
				IncomingTitle: incoming.Title,
			})
		}
	}

	if len(unresolved) > 0 {
		return nil, &entities.ConflictError{Conflicts: unresolved}
	}

	for i := range batch {
		result.Imported++
		result.Elements += len(batch[i].world.Elements)
		result.Relationships += len(batch[i].world.Relationships)
	}

	if opts.DryRun {
		if err := s.store.checkInsert(batch); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := s.store.insertWorlds(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("import applied",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("renamed", len(result.Renamed)))

	return result, nil
}

// reidentify gives a world, its elements, relationships and mentions fresh
// IDs and decorates the world title.
func (s *ImportService) reidentify(w entities.World) entities.World {
	newID := s.store.newID
	ids := make(map[string]string, len(w.Elements))

	out := w.Clone()
	out.ID = newID()
	out.Title = w.Title + ImportedTitleSuffix

	for i := range out.Elements {
		ids[out.Elements[i].ID] = newID()
	}
	for i := range out.Elements {
		e := &out.Elements[i]
		e.ID = ids[e.ID]
		e.WorldID = out.ID
		for j := range e.Mentions {
			e.Mentions[j].ID = newID()
			e.Mentions[j].ElementID = ids[e.Mentions[j].ElementID]
		}
	}
	for i := range out.Relationships {
		r := &out.Relationships[i]
		r.ID = newID()
		r.WorldID = out.ID
		r.SourceID = ids[r.SourceID]
		r.TargetID = ids[r.TargetID]
	}
	return out
}

// activityFor returns the payload's items for one world.
func activityFor(items []entities.ActivityItem, worldID string) []entities.ActivityItem {
	var result []entities.ActivityItem
	for i := range items {
		if items[i].WorldID == worldID {
			result = append(result, items[i])
		}
	}
	return result
}
