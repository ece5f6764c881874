package filesource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOS_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "middle_earth.md")
	fs := OS{}

	require.NoError(t, fs.WriteFile(path, []byte("# Lore Export\n")))
	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Lore Export\n", string(data))

	require.NoError(t, fs.WriteFile(path, []byte("replaced")))
	data, err = fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestOS_ReadMissing(t *testing.T) {
	_, err := OS{}.ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
