package integration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
)

func TestScenario_GraphSurvivesRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()

			s := openSession(t, backend, dir, nil, 100)
			_, err := s.worlds.HandleCreate(ctx, "Eldoria", "A northern realm")
			require.NoError(t, err)
			_, err = s.elements.HandleAdd(ctx, "Eldoria", handlers.ElementInput{Type: "location", Title: "Castle"})
			require.NoError(t, err)
			_, err = s.elements.HandleAdd(ctx, "Eldoria", handlers.ElementInput{
				Type:    "character",
				Title:   "Hero",
				Content: "Lives in @Castle",
			})
			require.NoError(t, err)
			_, err = s.rels.HandleCreate(ctx, "Eldoria", handlers.RelateInput{From: "Hero", Type: "Located In", To: "Castle"})
			require.NoError(t, err)
			s.close()

			s = openSession(t, backend, dir, nil, 100)
			detail, err := s.elements.HandleShow("eldoria", "castle")
			require.NoError(t, err)
			require.Len(t, detail.Relationships, 1)
			assert.Equal(t, "Contains", detail.Relationships[0].Label)
			assert.Equal(t, "Hero", detail.Relationships[0].CounterpartTitle)
			require.Len(t, detail.Backlinks, 1)
			assert.Equal(t, "Hero", detail.Backlinks[0].SourceTitle)
			assert.Equal(t, 9, detail.Backlinks[0].Mention.Offset)
			assert.Equal(t, 7, detail.Backlinks[0].Mention.Length)

			// Rename after restart still refreshes the stored mention.
			title := "Fortress"
			_, err = s.elements.HandleUpdate(ctx, "Eldoria", "Castle", handlers.ElementChanges{Title: &title})
			require.NoError(t, err)
			s.close()

			s = openSession(t, backend, dir, nil, 100)
			defer s.close()
			hero, err := s.elements.HandleShow("Eldoria", "Hero")
			require.NoError(t, err)
			require.Len(t, hero.Element.Mentions, 1)
			assert.Equal(t, "Fortress", hero.Element.Mentions[0].ElementTitle)
		})
	}
}

func TestScenario_CascadeDeleteSurvivesRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()

			s := openSession(t, backend, dir, nil, 100)
			worldID, err := s.worlds.HandleCreate(ctx, "Eldoria", "")
			require.NoError(t, err)
			_, err = s.elements.HandleAdd(ctx, worldID, handlers.ElementInput{Type: "location", Title: "Castle"})
			require.NoError(t, err)
			_, err = s.elements.HandleAdd(ctx, worldID, handlers.ElementInput{Type: "item", Title: "Crown"})
			require.NoError(t, err)
			_, err = s.rels.HandleCreate(ctx, worldID, handlers.RelateInput{From: "Crown", Type: "located_in", To: "Castle"})
			require.NoError(t, err)

			_, err = s.elements.HandleDelete(ctx, worldID, "Castle")
			require.NoError(t, err)
			listing, err := s.rels.HandleList(worldID, "")
			require.NoError(t, err)
			assert.Empty(t, listing.Views)

			_, err = s.worlds.HandleDelete(ctx, "Eldoria")
			require.NoError(t, err)
			s.close()

			s = openSession(t, backend, dir, nil, 100)
			defer s.close()
			assert.Empty(t, s.worlds.HandleList())

			items, err := s.activity.HandleList(handlers.ActivityQuery{World: worldID}, time.Now())
			require.NoError(t, err)
			require.NotEmpty(t, items)
			assert.Equal(t, entities.ActivityWorldDeleted, items[0].Kind)
			assert.Equal(t, "Eldoria", items[0].WorldTitle)
		})
	}
}

func TestScenario_ActivityEvictionAcrossRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	ctx := context.Background()

	s := openSession(t, config.BackendSQLite, dir, nil, 3)
	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		_, err := s.worlds.HandleCreate(ctx, title, "")
		require.NoError(t, err)
	}
	s.close()

	s = openSession(t, config.BackendSQLite, dir, nil, 3)
	defer s.close()

	items, err := s.activity.HandleList(handlers.ActivityQuery{}, time.Now())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Five", items[0].WorldTitle)
	assert.Equal(t, "Three", items[2].WorldTitle)
	assert.Greater(t, items[0].Seq, items[1].Seq)

	// Sequence numbers continue after the restored tail.
	_, err = s.worlds.HandleCreate(ctx, "Six", "")
	require.NoError(t, err)
	latest, err := s.activity.HandleList(handlers.ActivityQuery{Limit: 1}, time.Now())
	require.NoError(t, err)
	assert.Greater(t, latest[0].Seq, items[0].Seq)
}

func TestScenario_WorldLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	ctx := context.Background()
	policy := &config.Policy{Worlds: 2}

	s := openSession(t, config.BackendSQLite, dir, policy, 100)
	_, err := s.worlds.HandleCreate(ctx, "One", "")
	require.NoError(t, err)
	_, err = s.worlds.HandleCreate(ctx, "Two", "")
	require.NoError(t, err)
	s.close()

	s = openSession(t, config.BackendSQLite, dir, policy, 100)
	defer s.close()

	_, err = s.worlds.HandleCreate(ctx, "Three", "")
	require.Error(t, err)
	var limit *entities.LimitError
	require.True(t, errors.As(err, &limit))
	assert.Equal(t, entities.LimitMaxWorlds, limit.Limit)
	assert.Equal(t, 2, limit.Max)
	assert.Len(t, s.worlds.HandleList(), 2)
}

func TestScenario_ExportMutateImportSkip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	ctx := context.Background()
	backup := filepath.Join(dir, "exports", "eldoria.json")

	s := openSession(t, config.BackendBadger, dir, nil, 100)
	defer s.close()

	_, err := s.worlds.HandleCreate(ctx, "Eldoria", "")
	require.NoError(t, err)
	_, err = s.elements.HandleAdd(ctx, "Eldoria", handlers.ElementInput{Type: "location", Title: "Castle", Content: "Stone walls"})
	require.NoError(t, err)

	res, err := s.transfer.HandleExport(ctx, handlers.ExportOptions{Output: backup})
	require.NoError(t, err)
	assert.Equal(t, entities.FormatCanonical, res.Format)

	content := "Ruins"
	_, err = s.elements.HandleUpdate(ctx, "Eldoria", "Castle", handlers.ElementChanges{Content: &content})
	require.NoError(t, err)

	_, err = s.transfer.HandleImport(ctx, backup, handlers.ImportOptions{})
	require.ErrorIs(t, err, entities.ErrImportConflict)

	result, err := s.transfer.HandleImport(ctx, backup, handlers.ImportOptions{OnConflict: "skip"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)

	detail, err := s.elements.HandleShow("Eldoria", "Castle")
	require.NoError(t, err)
	assert.Equal(t, "Ruins", detail.Element.Content)

	renamed, err := s.transfer.HandleImport(ctx, backup, handlers.ImportOptions{OnConflict: "rename"})
	require.NoError(t, err)
	require.Len(t, renamed.Renamed, 1)
	copyDetail, err := s.elements.HandleShow(renamed.Renamed[0].NewID, "Castle")
	require.NoError(t, err)
	assert.Equal(t, "Stone walls", copyDetail.Element.Content)
}

func TestScenario_OneWayExportsRefuseImport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	ctx := context.Background()

	s := openSession(t, config.BackendSQLite, dir, nil, 100)
	defer s.close()

	_, err := s.worlds.HandleCreate(ctx, "Eldoria", "")
	require.NoError(t, err)

	for _, name := range []string{"eldoria.md", "eldoria.csv", "eldoria.xml", "eldoria.txt"} {
		path := filepath.Join(dir, name)
		_, err := s.transfer.HandleExport(ctx, handlers.ExportOptions{Output: path})
		require.NoError(t, err, name)

		_, err = s.transfer.HandleImport(ctx, path, handlers.ImportOptions{})
		assert.ErrorIs(t, err, entities.ErrFormatUnsupported, name)
	}
}
