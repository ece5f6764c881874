package handlers

import (
	"context"
	"time"

	"github.com/ersonp/lore-worlds/internal/domain/services"
)

// WorldHandler handles world operations.
type WorldHandler struct {
	store *services.Store
}

// NewWorldHandler creates a new WorldHandler.
func NewWorldHandler(store *services.Store) *WorldHandler {
	return &WorldHandler{store: store}
}

// WorldSummary is one row of the world list.
type WorldSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Elements      int       `json:"elements"`
	Relationships int       `json:"relationships"`
	CreatedAt     time.Time `json:"created_at"`
	ModifiedAt    time.Time `json:"modified_at"`
}

// HandleList returns every world in creation order.
func (h *WorldHandler) HandleList() []WorldSummary {
	worlds := h.store.Worlds()
	out := make([]WorldSummary, 0, len(worlds))
	for i := range worlds {
		w := &worlds[i]
		out = append(out, WorldSummary{
			ID:            w.ID,
			Title:         w.Title,
			Description:   w.Description,
			Elements:      len(w.Elements),
			Relationships: len(w.Relationships),
			CreatedAt:     w.CreatedAt,
			ModifiedAt:    w.ModifiedAt,
		})
	}
	return out
}

// HandleCreate creates a world and returns its ID.
func (h *WorldHandler) HandleCreate(ctx context.Context, title, description string) (string, error) {
	return h.store.CreateWorld(ctx, title, description)
}

// HandleUpdate changes the title and/or description of a world. Nil fields
// are left alone.
func (h *WorldHandler) HandleUpdate(ctx context.Context, worldRef string, title, description *string) (string, error) {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return "", err
	}
	return w.ID, h.store.UpdateWorld(ctx, w.ID, services.WorldUpdate{Title: title, Description: description})
}

// HandleDelete removes a world by ID or title. A reference that matches
// nothing is treated as already deleted.
func (h *WorldHandler) HandleDelete(ctx context.Context, worldRef string) (string, error) {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		if isNotFound(err) {
			return "", h.store.DeleteWorld(ctx, worldRef)
		}
		return "", err
	}
	return w.Title, h.store.DeleteWorld(ctx, w.ID)
}
