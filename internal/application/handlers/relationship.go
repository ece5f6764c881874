package handlers

import (
	"context"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/services"
)

// RelationshipHandler handles relationship operations.
type RelationshipHandler struct {
	store *services.Store
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(store *services.Store) *RelationshipHandler {
	return &RelationshipHandler{store: store}
}

// RelateInput describes a relationship as typed by the user. Type accepts
// an identifier ("located-in") or a display label ("Located In").
type RelateInput struct {
	From          string
	Type          string
	To            string
	Description   string
	Bidirectional bool
}

// RelationshipListing is the relationship list of a world or of one element.
type RelationshipListing struct {
	World entities.World
	// Element is set when the listing is viewed from one element.
	Element *entities.Element
	Views   []services.RelationshipView
}

// HandleCreate relates two elements of a world and returns the new ID.
func (h *RelationshipHandler) HandleCreate(ctx context.Context, worldRef string, in RelateInput) (string, error) {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return "", err
	}

	relType, err := entities.ParseRelationType(in.Type)
	if err != nil {
		return "", err
	}

	from, err := h.endpoint(&w, in.From)
	if err != nil {
		return "", err
	}
	to, err := h.endpoint(&w, in.To)
	if err != nil {
		return "", err
	}

	return h.store.CreateRelationship(ctx, w.ID, services.NewRelationship{
		SourceID:      from,
		TargetID:      to,
		Type:          relType,
		Description:   in.Description,
		Bidirectional: in.Bidirectional,
	})
}

// endpoint resolves a reference within w. An ID that is not in w is passed
// through so the store can tell a cross-world reference from a missing one.
func (h *RelationshipHandler) endpoint(w *entities.World, ref string) (string, error) {
	e, err := resolveElement(w, ref)
	if err == nil {
		return e.ID, nil
	}
	if isNotFound(err) {
		return ref, nil
	}
	return "", err
}

// HandleDelete removes a relationship by ID.
func (h *RelationshipHandler) HandleDelete(ctx context.Context, worldRef, relationshipID string) error {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return err
	}
	return h.store.DeleteRelationship(ctx, w.ID, relationshipID)
}

// HandleList returns the relationships of a world, or those touching one
// element when elementRef is set. World-wide listings are viewed from the
// source side.
func (h *RelationshipHandler) HandleList(worldRef, elementRef string) (*RelationshipListing, error) {
	w, err := resolveWorld(h.store, worldRef)
	if err != nil {
		return nil, err
	}

	listing := &RelationshipListing{World: w}

	if elementRef != "" {
		e, err := resolveElement(&w, elementRef)
		if err != nil {
			return nil, err
		}
		listing.Element = e
		listing.Views, err = h.store.RelationshipsFor(w.ID, e.ID)
		if err != nil {
			return nil, err
		}
		return listing, nil
	}

	rels, err := h.store.Relationships(w.ID)
	if err != nil {
		return nil, err
	}
	listing.Views = make([]services.RelationshipView, 0, len(rels))
	for i := range rels {
		rel := &rels[i]
		title := ""
		if e := w.Element(rel.TargetID); e != nil {
			title = e.Title
		}
		listing.Views = append(listing.Views, services.RelationshipView{
			Relationship:     *rel,
			Label:            services.DisplayLabel(rel, rel.SourceID),
			CounterpartID:    rel.TargetID,
			CounterpartTitle: title,
			ViewedFromSource: true,
		})
	}
	return listing, nil
}
