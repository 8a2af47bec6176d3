package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"closet/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreSavesSiblingVariants(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewDiskStore(dir)
	require.NoError(t, err)

	origURL, procURL, err := store.Save(".JPG", []byte("original"), []byte("processed"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(origURL, storage.StaticPrefix))
	assert.True(t, strings.HasPrefix(procURL, storage.StaticPrefix))
	assert.True(t, strings.HasSuffix(origURL, "_orig.jpg"))
	assert.True(t, strings.HasSuffix(procURL, "_proc.png"))

	// Both variants share one generated ID.
	origName := strings.TrimPrefix(origURL, storage.StaticPrefix)
	procName := strings.TrimPrefix(procURL, storage.StaticPrefix)
	assert.Equal(t,
		strings.TrimSuffix(origName, "_orig.jpg"),
		strings.TrimSuffix(procName, "_proc.png"))

	data, err := os.ReadFile(filepath.Join(dir, origName))
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)

	data, err = os.ReadFile(filepath.Join(dir, procName))
	require.NoError(t, err)
	assert.Equal(t, []byte("processed"), data)
}

func TestDiskStoreSaveDefaultsExtension(t *testing.T) {
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	origURL, _, err := store.Save("", []byte("x"), []byte("y"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(origURL, "_orig.jpg"))
}

func TestDiskStoreRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewDiskStore(dir)
	require.NoError(t, err)

	origURL, procURL, err := store.Save(".png", []byte("o"), []byte("p"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(origURL, procURL))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Removing already-gone assets is not an error.
	assert.NoError(t, store.Remove(origURL))
}
