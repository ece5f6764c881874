package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/mocks"
	"github.com/ersonp/lore-worlds/internal/domain/services"
)

// fixture is a store with one world, "Eldoria", holding a castle and a hero
// who lives in it.
type fixture struct {
	store   *services.Store
	worldID string
	castle  string
	hero    string
	relID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := services.NewStore(&mocks.Policy{})

	worldID, err := store.CreateWorld(ctx, "Eldoria", "A northern realm")
	require.NoError(t, err)
	castle, err := store.CreateElement(ctx, worldID, services.NewElement{
		Type:  entities.ElementLocation,
		Title: "Castle",
		Tags:  []string{"keep"},
	})
	require.NoError(t, err)
	hero, err := store.CreateElement(ctx, worldID, services.NewElement{
		Type:    entities.ElementCharacter,
		Title:   "Hero",
		Content: "Lives in @Castle",
	})
	require.NoError(t, err)
	relID, err := store.CreateRelationship(ctx, worldID, services.NewRelationship{
		SourceID: hero,
		TargetID: castle,
		Type:     entities.RelationLocatedIn,
	})
	require.NoError(t, err)

	return &fixture{store: store, worldID: worldID, castle: castle, hero: hero, relID: relID}
}
