package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

func TestWorldHandler_List(t *testing.T) {
	f := newFixture(t)
	h := NewWorldHandler(f.store)

	_, err := h.HandleCreate(context.Background(), "Second", "")
	require.NoError(t, err)

	list := h.HandleList()
	require.Len(t, list, 2)
	assert.Equal(t, "Eldoria", list[0].Title)
	assert.Equal(t, 2, list[0].Elements)
	assert.Equal(t, 1, list[0].Relationships)
	assert.Equal(t, "Second", list[1].Title)
	assert.Zero(t, list[1].Elements)
}

func TestWorldHandler_Update(t *testing.T) {
	f := newFixture(t)
	h := NewWorldHandler(f.store)

	title := "Eldoria Reborn"
	id, err := h.HandleUpdate(context.Background(), "eldoria", &title, nil)
	require.NoError(t, err)
	assert.Equal(t, f.worldID, id)

	w, err := f.store.World(f.worldID)
	require.NoError(t, err)
	assert.Equal(t, "Eldoria Reborn", w.Title)
	assert.Equal(t, "A northern realm", w.Description)

	_, err = h.HandleUpdate(context.Background(), "Atlantis", &title, nil)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestWorldHandler_Delete(t *testing.T) {
	f := newFixture(t)
	h := NewWorldHandler(f.store)

	title, err := h.HandleDelete(context.Background(), "Eldoria")
	require.NoError(t, err)
	assert.Equal(t, "Eldoria", title)
	assert.Zero(t, f.store.WorldCount())

	// Deleting again is a no-op.
	_, err = h.HandleDelete(context.Background(), "Eldoria")
	require.NoError(t, err)
}
