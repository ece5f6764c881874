package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
)

// DefaultSearchLimit is the number of hits returned when no limit is given.
const DefaultSearchLimit = 10

// SearchService keeps a vector index of element text in step with the
// store and answers similarity queries against it.
type SearchService struct {
	store    *Store
	embedder ports.Embedder
	vectors  ports.VectorDB
	logger   *zap.Logger
}

// NewSearchService creates a new search service. logger may be nil.
func NewSearchService(store *Store, embedder ports.Embedder, vectors ports.VectorDB, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		store:    store,
		embedder: embedder,
		vectors:  vectors,
		logger:   logger,
	}
}

// Attach subscribes the service to store events. Index failures are logged;
// they never fail the mutation that caused them.
func (s *SearchService) Attach(ctx context.Context) (detach func()) {
	return s.store.Subscribe(func(ev Event) {
		if err := s.Sync(ctx, ev); err != nil {
			s.logger.Warn("search index sync failed",
				zap.String("kind", string(ev.Kind)),
				zap.String("elementID", ev.ElementID),
				zap.Error(err))
		}
	})
}

// Sync applies one store event to the index.
func (s *SearchService) Sync(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case entities.ActivityElementCreated, entities.ActivityElementModified:
		e, err := s.store.Element(ev.WorldID, ev.ElementID)
		if errors.Is(err, entities.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return s.upsert(ctx, []entities.Element{e})
	case entities.ActivityElementDeleted:
		return s.vectors.Delete(ctx, []string{ev.ElementID})
	case entities.ActivityWorldDeleted:
		return s.vectors.DeleteByWorld(ctx, ev.WorldID)
	default:
		return nil
	}
}

// Reindex rebuilds the index entries of one world and returns the number
// of elements indexed.
func (s *SearchService) Reindex(ctx context.Context, worldID string) (int, error) {
	elements, err := s.store.Elements(worldID)
	if err != nil {
		return 0, err
	}
	if err := s.vectors.DeleteByWorld(ctx, worldID); err != nil {
		return 0, fmt.Errorf("clearing index: %w", err)
	}
	if len(elements) == 0 {
		return 0, nil
	}
	if err := s.upsert(ctx, elements); err != nil {
		return 0, err
	}
	return len(elements), nil
}

func (s *SearchService) upsert(ctx context.Context, elements []entities.Element) error {
	texts := make([]string, len(elements))
	for i := range elements {
		texts[i] = elementText(&elements[i])
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding elements: %w", err)
	}
	if len(embeddings) != len(elements) {
		return fmt.Errorf("embedding elements: got %d vectors for %d elements", len(embeddings), len(elements))
	}

	vectors := make([]ports.ElementVector, len(elements))
	for i := range elements {
		vectors[i] = ports.ElementVector{
			ElementID: elements[i].ID,
			WorldID:   elements[i].WorldID,
			Title:     elements[i].Title,
			Type:      string(elements[i].Type),
			Embedding: embeddings[i],
		}
	}

	if err := s.vectors.Upsert(ctx, vectors); err != nil {
		return fmt.Errorf("saving vectors: %w", err)
	}
	return nil
}

// Search returns the elements of a world closest to the query text.
func (s *SearchService) Search(ctx context.Context, worldID, query string, limit int) ([]ports.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &entities.InputError{Field: "query", Message: "must not be empty"}
	}
	if _, err := s.store.World(worldID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.vectors.Search(ctx, worldID, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	return hits, nil
}

// elementText is the text embedded for an element.
func elementText(e *entities.Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", e.Title, e.Type.DisplayName())
	if len(e.Tags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Tags, ", "))
	}
	if e.Content != "" {
		b.WriteString("\n")
		b.WriteString(e.Content)
	}
	return b.String()
}
