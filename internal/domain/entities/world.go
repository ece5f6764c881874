// Package entities contains core domain data structures.
package entities

import (
	"strings"
	"time"
)

// World is the top-level container of a self-consistent fictional setting.
// It owns its elements and relationships; deleting it deletes both.
type World struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	CreatedAt     time.Time      `json:"created_at"`
	ModifiedAt    time.Time      `json:"modified_at"`
	Elements      []Element      `json:"elements"`
	Relationships []Relationship `json:"relationships"`
}

// Element returns the element with the given ID, or nil.
func (w *World) Element(id string) *Element {
	for i := range w.Elements {
		if w.Elements[i].ID == id {
			return &w.Elements[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the world.
func (w *World) Clone() World {
	c := *w
	c.Elements = make([]Element, len(w.Elements))
	for i := range w.Elements {
		c.Elements[i] = w.Elements[i].Clone()
	}
	c.Relationships = append([]Relationship(nil), w.Relationships...)
	if c.Relationships == nil {
		c.Relationships = []Relationship{}
	}
	return c
}

// NormalizeTitle converts a title to lowercase for case-insensitive matching.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Timestamp strips the monotonic reading and location so timestamps compare
// equal after a round trip through the canonical format.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Round(0)
}
