package entities

import "time"

// ActivityKind identifies the mutation an activity item records.
type ActivityKind string

const (
	ActivityWorldCreated        ActivityKind = "world_created"
	ActivityWorldModified       ActivityKind = "world_modified"
	ActivityWorldDeleted        ActivityKind = "world_deleted"
	ActivityElementCreated      ActivityKind = "element_created"
	ActivityElementModified     ActivityKind = "element_modified"
	ActivityElementDeleted      ActivityKind = "element_deleted"
	ActivityRelationshipCreated ActivityKind = "relationship_created"
	ActivityRelationshipDeleted ActivityKind = "relationship_deleted"
)

// AllActivityKinds lists every activity kind.
var AllActivityKinds = []ActivityKind{
	ActivityWorldCreated,
	ActivityWorldModified,
	ActivityWorldDeleted,
	ActivityElementCreated,
	ActivityElementModified,
	ActivityElementDeleted,
	ActivityRelationshipCreated,
	ActivityRelationshipDeleted,
}

// IsValid reports whether k is a known activity kind.
func (k ActivityKind) IsValid() bool {
	for _, known := range AllActivityKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ActivityItem is an immutable audit record of one graph mutation. Titles
// are denormalized so the trail still reads after the subject is deleted.
type ActivityItem struct {
	ID             string       `json:"id"`
	Seq            uint64       `json:"seq"`
	Kind           ActivityKind `json:"kind"`
	WorldID        string       `json:"world_id"`
	WorldTitle     string       `json:"world_title"`
	ElementID      string       `json:"element_id,omitempty"`
	ElementTitle   string       `json:"element_title,omitempty"`
	ElementType    ElementType  `json:"element_type,omitempty"`
	RelationshipID string       `json:"relationship_id,omitempty"`
	Detail         string       `json:"detail,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}
