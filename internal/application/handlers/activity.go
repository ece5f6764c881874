package handlers

import (
	"strings"
	"time"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/services"
)

// ActivityHandler reads the activity log.
type ActivityHandler struct {
	store *services.Store
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store *services.Store) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// ActivityQuery filters the activity listing. Kinds accept "element-created"
// or "element_created".
type ActivityQuery struct {
	World string
	Kinds []string
	Since time.Duration
	Limit int
}

// HandleList returns matching activity items, newest first.
func (h *ActivityHandler) HandleList(q ActivityQuery, now time.Time) ([]entities.ActivityItem, error) {
	filter := services.ActivityFilter{Limit: q.Limit}

	if q.World != "" {
		w, err := resolveWorld(h.store, q.World)
		if err != nil {
			// Deleted worlds still have history.
			if !isNotFound(err) {
				return nil, err
			}
			filter.WorldID = q.World
		} else {
			filter.WorldID = w.ID
		}
	}

	for _, raw := range q.Kinds {
		kind := entities.ActivityKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
		if !kind.IsValid() {
			return nil, &entities.InputError{Field: "kind", Value: raw, Message: "unknown activity kind"}
		}
		filter.Kinds = append(filter.Kinds, kind)
	}

	if q.Since > 0 {
		filter.Since = now.Add(-q.Since)
	}

	return h.store.Activity().Query(filter), nil
}
