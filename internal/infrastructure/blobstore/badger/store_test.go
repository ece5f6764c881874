package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	t.Run("requires directory on disk", func(t *testing.T) {
		_, err := Open(Options{})
		require.Error(t, err)
	})

	t.Run("opens directory", func(t *testing.T) {
		s, err := Open(Options{Dir: t.TempDir(), Logger: zaptest.NewLogger(t)})
		require.NoError(t, err)
		require.NoError(t, s.Close())
	})
}

func TestStore_PutGetDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "lore.graph")
	assert.ErrorIs(t, err, ports.ErrBlobNotFound)

	require.NoError(t, s.Put(ctx, "lore.graph", []byte("first")))
	require.NoError(t, s.Put(ctx, "lore.graph", []byte("second")))

	data, err := s.Get(ctx, "lore.graph")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	require.NoError(t, s.Delete(ctx, "lore.graph"))
	_, err = s.Get(ctx, "lore.graph")
	assert.ErrorIs(t, err, ports.ErrBlobNotFound)

	require.NoError(t, s.Delete(ctx, "never-written"))
}

func TestStore_Keys(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "lore.graph", []byte("g")))
	require.NoError(t, s.Put(ctx, "lore.activity", []byte("a")))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lore.graph", "lore.activity"}, keys)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(Options{Dir: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "lore.graph", []byte(`{"version":1}`)))
	require.NoError(t, s.Close())

	reopened, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Get(ctx, "lore.graph")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))
}

func TestStore_Closed(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.ErrorIs(t, s.Put(ctx, "k", nil), ErrClosed)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_CanceledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v")), context.Canceled)
}
