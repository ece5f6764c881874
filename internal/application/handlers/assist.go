package handlers

import (
	"context"
	"errors"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/domain/services"
)

// ErrSearchUnavailable is returned when no embedder or vector index is configured.
var ErrSearchUnavailable = errors.New("semantic search is not configured (set an embedder API key and qdrant host)")

// AssistHandler handles AI assistant and semantic search requests.
type AssistHandler struct {
	store     *services.Store
	assistant *services.AssistantService
	search    *services.SearchService
}

// NewAssistHandler creates a new AssistHandler. search may be nil.
func NewAssistHandler(store *services.Store, assistant *services.AssistantService, search *services.SearchService) *AssistHandler {
	return &AssistHandler{
		store:     store,
		assistant: assistant,
		search:    search,
	}
}

// AskInput is an assistant question as typed by the user.
type AskInput struct {
	Provider string
	World    string
	Element  string
	Prompt   string
}

// HandleAsk asks the assistant about a world or one of its elements.
func (h *AssistHandler) HandleAsk(ctx context.Context, in AskInput) (ports.AssistantResponse, error) {
	w, err := resolveWorld(h.store, in.World)
	if err != nil {
		return ports.AssistantResponse{}, err
	}

	req := services.AssistRequest{Provider: in.Provider, WorldID: w.ID, Prompt: in.Prompt}
	if in.Element != "" {
		e, err := resolveElement(&w, in.Element)
		if err != nil {
			return ports.AssistantResponse{}, err
		}
		req.ElementID = e.ID
	}

	return h.assistant.Ask(ctx, req)
}

// HandleSearch runs a semantic search within a world.
func (h *AssistHandler) HandleSearch(ctx context.Context, worldRef, query string, limit int) ([]ports.SearchHit, error) {
	if h.search == nil {
		return nil, ErrSearchUnavailable
	}
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return nil, err
	}
	return h.search.Search(ctx, w.ID, query, limit)
}

// HandleReindexSearch rebuilds the vector index for a world and returns
// the number of elements embedded.
func (h *AssistHandler) HandleReindexSearch(ctx context.Context, worldRef string) (int, error) {
	if h.search == nil {
		return 0, ErrSearchUnavailable
	}
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return 0, err
	}
	return h.search.Reindex(ctx, w.ID)
}
