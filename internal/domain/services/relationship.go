package services

import (
	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

// DisplayLabel returns the label of rel as seen from viewerID: the stored
// type label from the source side, the inverse label from the target side.
// Symmetric types read the same either way.
func DisplayLabel(rel *entities.Relationship, viewerID string) string {
	if viewerID == rel.TargetID && viewerID != rel.SourceID {
		return rel.Type.Inverse().Label()
	}
	return rel.Type.Label()
}

// CounterpartID returns the endpoint opposite to viewerID.
func CounterpartID(rel *entities.Relationship, viewerID string) string {
	if viewerID == rel.SourceID {
		return rel.TargetID
	}
	return rel.SourceID
}

// ValidateEndpoints checks that a relationship from fromID to toID can be
// created in world: distinct endpoints, both present in the world, and no
// identical relationship already recorded.
func ValidateEndpoints(world *entities.World, fromID, toID string, relType entities.RelationType) error {
	if !relType.IsValid() {
		return &entities.RelationshipError{Reason: entities.ReasonUnknownType, FromID: fromID, ToID: toID}
	}
	if fromID == toID {
		return &entities.RelationshipError{Reason: entities.ReasonSelfReference, FromID: fromID, ToID: toID}
	}

	for _, id := range []string{fromID, toID} {
		e := world.Element(id)
		if e == nil {
			return &entities.RelationshipError{Reason: entities.ReasonCrossWorld, FromID: fromID, ToID: toID}
		}
		if e.WorldID != world.ID {
			return &entities.RelationshipError{Reason: entities.ReasonCrossWorld, FromID: fromID, ToID: toID}
		}
	}

	for i := range world.Relationships {
		r := &world.Relationships[i]
		if r.SourceID == fromID && r.TargetID == toID && r.Type == relType {
			return &entities.RelationshipError{Reason: entities.ReasonDuplicate, FromID: fromID, ToID: toID}
		}
	}

	return nil
}

// RelationshipView is a relationship rendered from one endpoint.
type RelationshipView struct {
	Relationship     entities.Relationship
	Label            string
	CounterpartID    string
	CounterpartTitle string
	ViewedFromSource bool
}

// ViewRelationships renders every relationship touching elementID in world.
func ViewRelationships(world *entities.World, elementID string) []RelationshipView {
	views := make([]RelationshipView, 0, 8)
	for i := range world.Relationships {
		rel := &world.Relationships[i]
		if !rel.Involves(elementID) {
			continue
		}
		other := CounterpartID(rel, elementID)
		title := ""
		if e := world.Element(other); e != nil {
			title = e.Title
		}
		views = append(views, RelationshipView{
			Relationship:     *rel,
			Label:            DisplayLabel(rel, elementID),
			CounterpartID:    other,
			CounterpartTitle: title,
			ViewedFromSource: rel.SourceID == elementID,
		})
	}
	return views
}
