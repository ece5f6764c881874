package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/mocks"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/domain/services"
)

func newCastleWorld(t *testing.T) *services.Store {
	t.Helper()
	ctx := context.Background()
	store := services.NewStore(&mocks.Policy{})

	worldID, err := store.CreateWorld(ctx, "Eldoria", "A northern realm")
	require.NoError(t, err)
	castle, err := store.CreateElement(ctx, worldID, services.NewElement{Type: entities.ElementLocation, Title: "Castle"})
	require.NoError(t, err)
	hero, err := store.CreateElement(ctx, worldID, services.NewElement{
		Type:    entities.ElementCharacter,
		Title:   "Hero",
		Content: "Lives in @Castle",
		Tags:    []string{"protagonist"},
	})
	require.NoError(t, err)
	_, err = store.CreateRelationship(ctx, worldID, services.NewRelationship{
		SourceID: hero,
		TargetID: castle,
		Type:     entities.RelationLocatedIn,
	})
	require.NoError(t, err)
	return store
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, []handlers.WorldSummary{{ID: "w1", Title: "Eldoria", Elements: 2}})
	require.NoError(t, err)

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "Eldoria", parsed[0]["title"])
	assert.Equal(t, float64(2), parsed[0]["elements"])
}

func TestWriteWorlds(t *testing.T) {
	var buf bytes.Buffer
	err := writeWorlds(&buf, []handlers.WorldSummary{
		{ID: "w1", Title: "Eldoria", Elements: 2, Relationships: 1, Description: "A northern realm"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[1], "Eldoria")
	assert.Contains(t, lines[1], "A northern realm")
}

func TestWriteRelationsTree_ViewedFromTarget(t *testing.T) {
	store := newCastleWorld(t)
	listing, err := handlers.NewRelationshipHandler(store).HandleList("Eldoria", "Castle")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeRelationsTree(&buf, listing))

	assert.Equal(t, "Castle\n\\- Contains -> Hero\n", buf.String())
}

func TestWriteRelationsTree_World(t *testing.T) {
	store := newCastleWorld(t)
	listing, err := handlers.NewRelationshipHandler(store).HandleList("Eldoria", "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeRelationsTree(&buf, listing))

	assert.Equal(t, "Eldoria\n\\- Hero Located In -> Castle\n", buf.String())
}

func TestWriteRelationsList(t *testing.T) {
	store := newCastleWorld(t)
	listing, err := handlers.NewRelationshipHandler(store).HandleList("Eldoria", "Hero")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeRelationsList(&buf, listing))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Hero")
	assert.Contains(t, lines[1], "Located In")
	assert.Contains(t, lines[1], "Castle")
}

func TestWriteElementDetail(t *testing.T) {
	store := newCastleWorld(t)
	detail, err := handlers.NewElementHandler(store).HandleShow("Eldoria", "Castle")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeElementDetail(&buf, detail))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Castle (Location)\n"))
	assert.Contains(t, out, "Relationships:\n  Contains Hero\n")
	assert.Contains(t, out, "Mentioned by:\n  Hero (at 9)\n")
}

func TestWriteActivity(t *testing.T) {
	store := newCastleWorld(t)
	items := store.Activity().Query(services.ActivityFilter{Limit: 2})

	var buf bytes.Buffer
	require.NoError(t, writeActivity(&buf, items))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "relationship_created")
	assert.Contains(t, lines[2], "element_created")
	assert.Contains(t, lines[2], "Hero")
}

func TestWriteSearchHits(t *testing.T) {
	var buf bytes.Buffer
	err := writeSearchHits(&buf, []ports.SearchHit{{ElementID: "e1", Title: "Castle", Type: "location", Score: 0.875}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "0.875")
	assert.Contains(t, buf.String(), "Castle")
}

func TestWriteTypes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTypes(&buf))
	out := buf.String()

	assert.Contains(t, out, "character")
	assert.Contains(t, out, "Located In")
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "located_in") {
			assert.Contains(t, line, "Contains")
		}
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "one two", truncate("one\ntwo", 10))
	assert.Equal(t, "ééééééé...", truncate(strings.Repeat("é", 20), 10))
}
