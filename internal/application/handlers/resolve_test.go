package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

func TestResolveWorld(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		ref     string
		wantErr error
	}{
		{name: "by id", ref: f.worldID},
		{name: "by title", ref: "Eldoria"},
		{name: "case-insensitive title", ref: "  eldoria "},
		{name: "unknown", ref: "Atlantis", wantErr: entities.ErrNotFound},
		{name: "empty", ref: " ", wantErr: entities.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := resolveWorld(f.store, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, f.worldID, w.ID)
		})
	}
}

func TestResolveWorld_AmbiguousTitle(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.CreateWorld(context.Background(), "ELDORIA", "")
	require.NoError(t, err)

	_, err = resolveWorld(f.store, "eldoria")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
	assert.ErrorContains(t, err, "matches 2 worlds")

	// IDs still resolve.
	w, err := resolveWorld(f.store, f.worldID)
	require.NoError(t, err)
	assert.Equal(t, "Eldoria", w.Title)
}

func TestResolveElement(t *testing.T) {
	f := newFixture(t)
	w, err := f.store.World(f.worldID)
	require.NoError(t, err)

	e, err := resolveElement(&w, "castle")
	require.NoError(t, err)
	assert.Equal(t, f.castle, e.ID)

	e, err = resolveElement(&w, f.hero)
	require.NoError(t, err)
	assert.Equal(t, "Hero", e.Title)

	_, err = resolveElement(&w, "Dragon")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	_, err = resolveElement(&w, "")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}
