package nodelayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockbtree/internal/codec"
	"blockbtree/storage"
)

const testBlockSize uint16 = 64 // F = 3, per spec §8

func readMeta(t *testing.T, adapter storage.Adapter) (storage.Address, uint64, uint64) {
	t.Helper()
	block, err := adapter.Get(adapter.Meta())
	require.NoError(t, err)
	root, height, count, err := codec.DecodeMeta(block)
	require.NoError(t, err)
	return root, height, count
}

// Spec §8 scenario 4: empty input.
func TestBuildIndexEmpty(t *testing.T) {
	adapter := storage.NewMemory(testBlockSize)

	root, height, err := BuildIndex(adapter, nil)
	require.NoError(t, err)
	assert.Equal(t, adapter.Empty(), root)
	assert.Equal(t, uint64(0), height)

	gotRoot, gotHeight, gotCount := readMeta(t, adapter)
	assert.Equal(t, adapter.Empty(), gotRoot)
	assert.Equal(t, uint64(0), gotHeight)
	assert.Equal(t, uint64(0), gotCount)
}

// Spec §8 scenario 1: a single entry still descends through one node
// block (the root), not a bare pointer to the chain head.
func TestBuildIndexSingleLeaf(t *testing.T) {
	adapter := storage.NewMemory(testBlockSize)
	leaves := []Leaf{{Key: 42, Head: storage.Address(5)}}

	root, height, err := BuildIndex(adapter, leaves)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), height)

	block, err := adapter.Get(root)
	require.NoError(t, err)
	entries, err := codec.DecodeNodeBlock(testBlockSize, block)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(42), entries[0].Key)
	assert.Equal(t, storage.Address(5), entries[0].Child)

	_, _, gotCount := readMeta(t, adapter)
	assert.Equal(t, uint64(1), gotCount)
}

// Spec §8 scenario 2: three entries, F=3, fit in one node block.
func TestBuildIndexThreeLeavesOneNode(t *testing.T) {
	adapter := storage.NewMemory(testBlockSize)
	leaves := []Leaf{
		{Key: 5, Head: storage.Address(10)},
		{Key: 7, Head: storage.Address(11)},
		{Key: 9, Head: storage.Address(12)},
	}

	root, height, err := BuildIndex(adapter, leaves)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), height)

	block, err := adapter.Get(root)
	require.NoError(t, err)
	entries, err := codec.DecodeNodeBlock(testBlockSize, block)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []uint64{5, 7, 9}, keysOf(entries))
}

// Spec §8 scenario 3: four entries, F=3, force two leaf-level node
// blocks of two entries each (after redistribution) plus a root.
func TestBuildIndexFourLeavesTwoNodes(t *testing.T) {
	adapter := storage.NewMemory(testBlockSize)
	leaves := []Leaf{
		{Key: 1, Head: storage.Address(10)},
		{Key: 2, Head: storage.Address(11)},
		{Key: 3, Head: storage.Address(12)},
		{Key: 4, Head: storage.Address(13)},
	}

	root, height, err := BuildIndex(adapter, leaves)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), height)

	rootBlock, err := adapter.Get(root)
	require.NoError(t, err)
	rootEntries, err := codec.DecodeNodeBlock(testBlockSize, rootBlock)
	require.NoError(t, err)
	require.Len(t, rootEntries, 2)

	var allLeafEntries []codec.NodeEntry
	for _, re := range rootEntries {
		childBlock, err := adapter.Get(re.Child)
		require.NoError(t, err)
		childEntries, err := codec.DecodeNodeBlock(testBlockSize, childBlock)
		require.NoError(t, err)
		assert.Len(t, childEntries, 2)
		allLeafEntries = append(allLeafEntries, childEntries...)
	}
	assert.Equal(t, []uint64{1, 2, 3, 4}, keysOf(allLeafEntries))
}

// P8: the sorted-key invariant holds at every level for a larger tree
// spanning several layers.
func TestBuildIndexSortedAtEveryLevel(t *testing.T) {
	adapter := storage.NewMemory(testBlockSize)
	leaves := make([]Leaf, 200)
	for i := range leaves {
		leaves[i] = Leaf{Key: uint64(i), Head: storage.Address(1000 + i)}
	}

	root, height, err := BuildIndex(adapter, leaves)
	require.NoError(t, err)
	assert.Greater(t, height, uint64(1))

	checkSorted(t, adapter, root, height)
}

func checkSorted(t *testing.T, adapter storage.Adapter, addr storage.Address, levelsRemaining uint64) []uint64 {
	t.Helper()
	block, err := adapter.Get(addr)
	require.NoError(t, err)
	entries, err := codec.DecodeNodeBlock(testBlockSize, block)
	require.NoError(t, err)

	keys := keysOf(entries)
	for i := 1; i < len(keys); i++ {
		assert.LessOrEqual(t, keys[i-1], keys[i])
	}

	if levelsRemaining == 1 {
		return keys
	}

	var all []uint64
	for _, e := range entries {
		all = append(all, checkSorted(t, adapter, e.Child, levelsRemaining-1)...)
	}
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1], all[i])
	}
	return all
}

func keysOf(entries []codec.NodeEntry) []uint64 {
	keys := make([]uint64, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}
