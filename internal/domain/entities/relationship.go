package entities

import (
	"fmt"
	"strings"
	"time"
)

// RelationType defines the kind of relationship between elements.
type RelationType string

const (
	RelationParentOf  RelationType = "parent_of"
	RelationChildOf   RelationType = "child_of"
	RelationLocatedIn RelationType = "located_in"
	RelationContains  RelationType = "contains"
	RelationMemberOf  RelationType = "member_of"
	RelationHasMember RelationType = "has_member"
	RelationOwns      RelationType = "owns"
	RelationOwnedBy   RelationType = "owned_by"
	RelationCreated   RelationType = "created"
	RelationCreatedBy RelationType = "created_by"
	RelationLeads     RelationType = "leads"
	RelationLedBy     RelationType = "led_by"
	RelationPrecedes  RelationType = "precedes"
	RelationFollows   RelationType = "follows"
	RelationCaused    RelationType = "caused"
	RelationCausedBy  RelationType = "caused_by"
	RelationAllyOf    RelationType = "ally_of"
	RelationEnemyOf   RelationType = "enemy_of"
	RelationSiblingOf RelationType = "sibling_of"
	RelationSpouseOf  RelationType = "spouse_of"
	RelationRelatedTo RelationType = "related_to"
)

type relationInfo struct {
	label   string
	inverse RelationType
}

// relationTable is total over the enumeration. Symmetric types are their own inverse.
var relationTable = map[RelationType]relationInfo{
	RelationParentOf:  {"Parent Of", RelationChildOf},
	RelationChildOf:   {"Child Of", RelationParentOf},
	RelationLocatedIn: {"Located In", RelationContains},
	RelationContains:  {"Contains", RelationLocatedIn},
	RelationMemberOf:  {"Member Of", RelationHasMember},
	RelationHasMember: {"Has Member", RelationMemberOf},
	RelationOwns:      {"Owns", RelationOwnedBy},
	RelationOwnedBy:   {"Owned By", RelationOwns},
	RelationCreated:   {"Created", RelationCreatedBy},
	RelationCreatedBy: {"Created By", RelationCreated},
	RelationLeads:     {"Leads", RelationLedBy},
	RelationLedBy:     {"Led By", RelationLeads},
	RelationPrecedes:  {"Precedes", RelationFollows},
	RelationFollows:   {"Follows", RelationPrecedes},
	RelationCaused:    {"Caused", RelationCausedBy},
	RelationCausedBy:  {"Caused By", RelationCaused},
	RelationAllyOf:    {"Ally Of", RelationAllyOf},
	RelationEnemyOf:   {"Enemy Of", RelationEnemyOf},
	RelationSiblingOf: {"Sibling Of", RelationSiblingOf},
	RelationSpouseOf:  {"Spouse Of", RelationSpouseOf},
	RelationRelatedTo: {"Related To", RelationRelatedTo},
}

// AllRelationTypes lists every relationship type in display order.
var AllRelationTypes = []RelationType{
	RelationParentOf, RelationChildOf,
	RelationLocatedIn, RelationContains,
	RelationMemberOf, RelationHasMember,
	RelationOwns, RelationOwnedBy,
	RelationCreated, RelationCreatedBy,
	RelationLeads, RelationLedBy,
	RelationPrecedes, RelationFollows,
	RelationCaused, RelationCausedBy,
	RelationAllyOf, RelationEnemyOf,
	RelationSiblingOf, RelationSpouseOf,
	RelationRelatedTo,
}

// IsValid reports whether t is one of the known relationship types.
func (t RelationType) IsValid() bool {
	_, ok := relationTable[t]
	return ok
}

// Label returns the display label, e.g. "Located In".
func (t RelationType) Label() string {
	if info, ok := relationTable[t]; ok {
		return info.label
	}
	return string(t)
}

// Inverse returns the type seen from the target side.
func (t RelationType) Inverse() RelationType {
	if info, ok := relationTable[t]; ok {
		return info.inverse
	}
	return t
}

// IsSymmetric reports whether the type reads the same from both sides.
func (t RelationType) IsSymmetric() bool {
	return t.Inverse() == t
}

// ParseRelationType accepts either the identifier ("located_in") or the
// display label ("Located In"), case-insensitively.
func ParseRelationType(s string) (RelationType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	t := RelationType(key)
	if !t.IsValid() {
		names := make([]string, len(AllRelationTypes))
		for i, known := range AllRelationTypes {
			names[i] = string(known)
		}
		return "", &InputError{Field: "relationship type", Value: s, Message: fmt.Sprintf("valid: %s", strings.Join(names, ", "))}
	}
	return t, nil
}

// Relationship is a directed edge between two elements of the same world.
// Bidirectional is a display hint; no reverse record is created for it.
type Relationship struct {
	ID            string       `json:"id"`
	WorldID       string       `json:"world_id"`
	SourceID      string       `json:"source_id"`
	TargetID      string       `json:"target_id"`
	Type          RelationType `json:"type"`
	Description   string       `json:"description,omitempty"`
	Bidirectional bool         `json:"bidirectional"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Involves reports whether the element is either endpoint.
func (r *Relationship) Involves(elementID string) bool {
	return r.SourceID == elementID || r.TargetID == elementID
}
