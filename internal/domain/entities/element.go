package entities

import (
	"sort"
	"strings"
	"time"
)

// Element is a typed node in a world's graph. Its WorldID never changes
// after creation.
type Element struct {
	ID         string      `json:"id"`
	WorldID    string      `json:"world_id"`
	Type       ElementType `json:"type"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Tags       []string    `json:"tags"`
	Mentions   []Mention   `json:"mentions"`
	CreatedAt  time.Time   `json:"created_at"`
	ModifiedAt time.Time   `json:"modified_at"`
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() Element {
	c := *e
	c.Tags = append([]string{}, e.Tags...)
	c.Mentions = append([]Mention{}, e.Mentions...)
	return c
}

// HasTag reports whether the element carries the tag (case-insensitive).
func (e *Element) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range e.Tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}

// NormalizeTags trims, de-duplicates and sorts a tag set. Tags compare
// case-insensitively; the first spelling seen wins.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}

// SortElements orders elements by title, then creation time, then ID.
func SortElements(elements []Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		a, b := &elements[i], &elements[j]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
