package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNested(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "a", "b", "c")

	got, err := EnsureDir(dir)
	require.NoError(t, err)

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDir_IdempotentOnExisting(t *testing.T) {
	base := t.TempDir()

	first, err := EnsureDir(base)
	require.NoError(t, err)

	second, err := EnsureDir(base)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExists(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "f.bin")

	ok, err := Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	ok, err = Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)
}
