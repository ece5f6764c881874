package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

func TestActivityHandler_List(t *testing.T) {
	f := newFixture(t)
	h := NewActivityHandler(f.store)
	now := time.Now()

	all, err := h.HandleList(ActivityQuery{}, now)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, entities.ActivityRelationshipCreated, all[0].Kind, "newest first")

	elements, err := h.HandleList(ActivityQuery{World: "Eldoria", Kinds: []string{"element-created"}}, now)
	require.NoError(t, err)
	assert.Len(t, elements, 2)

	limited, err := h.HandleList(ActivityQuery{Limit: 1}, now)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	recent, err := h.HandleList(ActivityQuery{Since: time.Hour}, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = h.HandleList(ActivityQuery{Kinds: []string{"world-exploded"}}, now)
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}

func TestActivityHandler_DeletedWorldKeepsHistory(t *testing.T) {
	f := newFixture(t)
	h := NewActivityHandler(f.store)
	require.NoError(t, f.store.DeleteWorld(context.Background(), f.worldID))

	items, err := h.HandleList(ActivityQuery{World: f.worldID}, time.Now())
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, entities.ActivityWorldDeleted, items[0].Kind)
}
