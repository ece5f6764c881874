package entities

import (
	"fmt"
	"strings"
)

// ElementType is the closed set of element kinds.
type ElementType string

const (
	ElementCharacter    ElementType = "character"
	ElementLocation     ElementType = "location"
	ElementEvent        ElementType = "event"
	ElementOrganization ElementType = "organization"
	ElementItem         ElementType = "item"
	ElementCulture      ElementType = "culture"
	ElementLanguage     ElementType = "language"
	ElementTimeline     ElementType = "timeline"
	ElementPlot         ElementType = "plot"
	ElementConcept      ElementType = "concept"
	ElementCustom       ElementType = "custom"
)

// AllElementTypes lists every element type in display order.
var AllElementTypes = []ElementType{
	ElementCharacter,
	ElementLocation,
	ElementEvent,
	ElementOrganization,
	ElementItem,
	ElementCulture,
	ElementLanguage,
	ElementTimeline,
	ElementPlot,
	ElementConcept,
	ElementCustom,
}

// IsValid reports whether t is one of the known element types.
func (t ElementType) IsValid() bool {
	for _, known := range AllElementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DisplayName returns the capitalized name, e.g. "Character".
func (t ElementType) DisplayName() string {
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseElementType converts a string to an ElementType (case-insensitive).
func ParseElementType(s string) (ElementType, error) {
	t := ElementType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		names := make([]string, len(AllElementTypes))
		for i, known := range AllElementTypes {
			names[i] = string(known)
		}
		return "", &InputError{Field: "type", Value: s, Message: fmt.Sprintf("valid: %s", strings.Join(names, ", "))}
	}
	return t, nil
}
