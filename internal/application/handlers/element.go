package handlers

import (
	"context"
	"strings"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/services"
)

// ElementHandler handles element operations.
type ElementHandler struct {
	store *services.Store
}

// NewElementHandler creates a new ElementHandler.
func NewElementHandler(store *services.Store) *ElementHandler {
	return &ElementHandler{store: store}
}

// ElementInput carries the fields of a new element as typed by the user.
type ElementInput struct {
	Type    string
	Title   string
	Content string
	Tags    []string
}

// ElementChanges carries optional element edits. Nil fields are left alone.
type ElementChanges struct {
	Type    *string
	Title   *string
	Content *string
	Tags    *[]string
}

// ElementFilter narrows an element listing.
type ElementFilter struct {
	Type string
	Tag  string
}

// ElementDetail is an element with its graph neighborhood.
type ElementDetail struct {
	World         entities.World
	Element       entities.Element
	Relationships []services.RelationshipView
	Backlinks     []services.Backlink
}

// HandleAdd creates an element in a world and returns its ID.
func (h *ElementHandler) HandleAdd(ctx context.Context, worldRef string, in ElementInput) (string, error) {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return "", err
	}

	elementType, err := entities.ParseElementType(in.Type)
	if err != nil {
		return "", err
	}

	return h.store.CreateElement(ctx, w.ID, services.NewElement{
		Type:    elementType,
		Title:   in.Title,
		Content: in.Content,
		Tags:    in.Tags,
	})
}

// HandleUpdate applies changes to an element.
func (h *ElementHandler) HandleUpdate(ctx context.Context, worldRef, elementRef string, changes ElementChanges) (string, error) {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return "", err
	}
	e, err := resolveElement(&w, elementRef)
	if err != nil {
		return "", err
	}

	upd := services.ElementUpdate{
		Title:   changes.Title,
		Content: changes.Content,
		Tags:    changes.Tags,
	}
	if changes.Type != nil {
		t, err := entities.ParseElementType(*changes.Type)
		if err != nil {
			return "", err
		}
		upd.Type = &t
	}

	return e.ID, h.store.UpdateElement(ctx, w.ID, e.ID, upd)
}

// HandleDelete removes an element and everything that points at it. A
// reference that matches nothing is treated as already deleted.
func (h *ElementHandler) HandleDelete(ctx context.Context, worldRef, elementRef string) (string, error) {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return "", err
	}
	e, err := resolveElement(&w, elementRef)
	if err != nil {
		if isNotFound(err) {
			return "", h.store.DeleteElement(ctx, w.ID, elementRef)
		}
		return "", err
	}
	return e.Title, h.store.DeleteElement(ctx, w.ID, e.ID)
}

// HandleList returns the elements of a world ordered by title.
func (h *ElementHandler) HandleList(worldRef string, filter ElementFilter) ([]entities.Element, error) {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return nil, err
	}

	var want entities.ElementType
	if filter.Type != "" {
		if want, err = entities.ParseElementType(filter.Type); err != nil {
			return nil, err
		}
	}
	tag := strings.ToLower(strings.TrimSpace(filter.Tag))

	all, err := h.store.Elements(w.ID)
	if err != nil {
		return nil, err
	}

	out := make([]entities.Element, 0, len(all))
	for i := range all {
		if want != "" && all[i].Type != want {
			continue
		}
		if tag != "" && !all[i].HasTag(tag) {
			continue
		}
		out = append(out, all[i])
	}
	return out, nil
}

// HandleShow returns an element with its relationships and backlinks.
func (h *ElementHandler) HandleShow(worldRef, elementRef string) (*ElementDetail, error) {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return nil, err
	}
	e, err := resolveElement(&w, elementRef)
	if err != nil {
		return nil, err
	}

	links, err := h.store.MentionsOf(w.ID, e.ID)
	if err != nil {
		return nil, err
	}

	return &ElementDetail{
		World:         w,
		Element:       *e,
		Relationships: services.ViewRelationships(&w, e.ID),
		Backlinks:     links,
	}, nil
}

// HandleReindex re-scans the content of one element, or of every element
// in the world when elementRef is empty. It returns the number of elements
// scanned and the total mentions found.
func (h *ElementHandler) HandleReindex(ctx context.Context, worldRef, elementRef string) (scanned, mentions int, err error) {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return 0, 0, err
	}

	ids := make([]string, 0, len(w.Elements))
	if elementRef != "" {
		e, err := resolveElement(&w, elementRef)
		if err != nil {
			return 0, 0, err
		}
		ids = append(ids, e.ID)
	} else {
		for i := range w.Elements {
			ids = append(ids, w.Elements[i].ID)
		}
	}

	for _, id := range ids {
		found, err := h.store.ReindexElement(ctx, w.ID, id)
		if err != nil {
			return scanned, mentions, err
		}
		scanned++
		mentions += len(found)
	}
	return scanned, mentions, nil
}
