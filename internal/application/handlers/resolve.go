// Package handlers contains application use case handlers. Handlers accept
// the loose strings a user types and turn them into store calls.
package handlers

import (
	"fmt"
	"strings"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/services"
)

// resolveWorld finds a world by exact ID or, failing that, by
// case-insensitive title. An ambiguous title is an input error.
func resolveWorld(store *services.Store, ref string) (entities.World, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return entities.World{}, &entities.InputError{Field: "world", Message: "must not be empty"}
	}

	if w, err := store.World(ref); err == nil {
		return w, nil
	}

	want := entities.NormalizeTitle(ref)
	var matches []entities.World
	for _, w := range store.Worlds() {
		if entities.NormalizeTitle(w.Title) == want {
			matches = append(matches, w)
		}
	}

	switch len(matches) {
	case 0:
		return entities.World{}, &entities.NotFoundError{Kind: entities.KindWorld, ID: ref}
	case 1:
		return matches[0], nil
	default:
		return entities.World{}, &entities.InputError{
			Field:   "world",
			Value:   ref,
			Message: fmt.Sprintf("title matches %d worlds; use an id", len(matches)),
		}
	}
}

// resolveElement finds an element of w by exact ID or case-insensitive title.
func resolveElement(w *entities.World, ref string) (*entities.Element, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &entities.InputError{Field: "element", Message: "must not be empty"}
	}

	if e := w.Element(ref); e != nil {
		return e, nil
	}

	want := entities.NormalizeTitle(ref)
	var found *entities.Element
	count := 0
	for i := range w.Elements {
		if entities.NormalizeTitle(w.Elements[i].Title) == want {
			if found == nil {
				found = &w.Elements[i]
			}
			count++
		}
	}

	switch count {
	case 0:
		return nil, &entities.NotFoundError{Kind: entities.KindElement, ID: ref}
	case 1:
		return found, nil
	default:
		return nil, &entities.InputError{
			Field:   "element",
			Value:   ref,
			Message: fmt.Sprintf("title matches %d elements in %s; use an id", count, w.Title),
		}
	}
}
