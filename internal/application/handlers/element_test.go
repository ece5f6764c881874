package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

func TestElementHandler_Add(t *testing.T) {
	f := newFixture(t)
	h := NewElementHandler(f.store)
	ctx := context.Background()

	id, err := h.HandleAdd(ctx, "Eldoria", ElementInput{
		Type:    "Character",
		Title:   "Villain",
		Content: "Besieges the @castle",
		Tags:    []string{"antagonist"},
	})
	require.NoError(t, err)

	e, err := f.store.Element(f.worldID, id)
	require.NoError(t, err)
	assert.Equal(t, entities.ElementCharacter, e.Type)
	require.Len(t, e.Mentions, 1)
	assert.Equal(t, f.castle, e.Mentions[0].ElementID)

	_, err = h.HandleAdd(ctx, "Eldoria", ElementInput{Type: "spaceship", Title: "X"})
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	_, err = h.HandleAdd(ctx, "Atlantis", ElementInput{Type: "item", Title: "X"})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestElementHandler_Update(t *testing.T) {
	f := newFixture(t)
	h := NewElementHandler(f.store)
	ctx := context.Background()

	title := "Fortress"
	kind := "location"
	id, err := h.HandleUpdate(ctx, "Eldoria", "Castle", ElementChanges{Title: &title, Type: &kind})
	require.NoError(t, err)
	assert.Equal(t, f.castle, id)

	hero, err := f.store.Element(f.worldID, f.hero)
	require.NoError(t, err)
	require.Len(t, hero.Mentions, 1)
	assert.Equal(t, "Fortress", hero.Mentions[0].ElementTitle)

	bad := "starship"
	_, err = h.HandleUpdate(ctx, "Eldoria", "Fortress", ElementChanges{Type: &bad})
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}

func TestElementHandler_Delete(t *testing.T) {
	f := newFixture(t)
	h := NewElementHandler(f.store)
	ctx := context.Background()

	title, err := h.HandleDelete(ctx, "Eldoria", "castle")
	require.NoError(t, err)
	assert.Equal(t, "Castle", title)

	rels, err := f.store.Relationships(f.worldID)
	require.NoError(t, err)
	assert.Empty(t, rels)

	_, err = h.HandleDelete(ctx, "Eldoria", "castle")
	require.NoError(t, err)
}

func TestElementHandler_List(t *testing.T) {
	f := newFixture(t)
	h := NewElementHandler(f.store)

	all, err := h.HandleList("Eldoria", ElementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Castle", all[0].Title)
	assert.Equal(t, "Hero", all[1].Title)

	chars, err := h.HandleList("Eldoria", ElementFilter{Type: "character"})
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, "Hero", chars[0].Title)

	tagged, err := h.HandleList("Eldoria", ElementFilter{Tag: "KEEP"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "Castle", tagged[0].Title)

	_, err = h.HandleList("Eldoria", ElementFilter{Type: "nope"})
	assert.Error(t, err)
}

func TestElementHandler_Show(t *testing.T) {
	f := newFixture(t)
	h := NewElementHandler(f.store)

	detail, err := h.HandleShow("Eldoria", "Castle")
	require.NoError(t, err)

	assert.Equal(t, "Castle", detail.Element.Title)
	require.Len(t, detail.Relationships, 1)
	assert.Equal(t, "Contains", detail.Relationships[0].Label)
	assert.Equal(t, "Hero", detail.Relationships[0].CounterpartTitle)
	require.Len(t, detail.Backlinks, 1)
	assert.Equal(t, "Hero", detail.Backlinks[0].SourceTitle)
}

func TestElementHandler_Reindex(t *testing.T) {
	f := newFixture(t)
	h := NewElementHandler(f.store)
	ctx := context.Background()

	scanned, mentions, err := h.HandleReindex(ctx, "Eldoria", "")
	require.NoError(t, err)
	assert.Equal(t, 2, scanned)
	assert.Equal(t, 1, mentions)

	scanned, mentions, err = h.HandleReindex(ctx, "Eldoria", "Castle")
	require.NoError(t, err)
	assert.Equal(t, 1, scanned)
	assert.Zero(t, mentions)
}
