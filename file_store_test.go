package blockbtree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockbtree/storage"
)

// Exercises the crash-safe build path end to end: construct into a
// File adapter, commit (temp-rename), then read back through the
// read-only mmap adapter.
func TestConstructFileThenReadViaMmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.db")
	entries := sortedEntries(80)

	adapter, err := storage.CreateForConstruct(path, 64)
	require.NoError(t, err)
	require.NoError(t, Construct(adapter, entries))
	require.NoError(t, adapter.CommitAndClose())

	mm, err := storage.OpenMmap(path, 64)
	require.NoError(t, err)
	defer mm.Close()

	store, err := Open(mm)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(entries)), store.Len())

	for _, e := range entries {
		payload, found, err := store.Get(e.Key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, e.Payload, payload)
	}

	_, found, err := store.Get(1) // odd keys were never inserted
	require.NoError(t, err)
	assert.False(t, found)
}
