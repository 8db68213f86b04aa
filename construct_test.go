package blockbtree

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockbtree/storage"
)

func sortedEntries(n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{
			Key:     uint64(i * 2),
			Payload: []byte(fmt.Sprintf("payload-%d-%s", i, bytes.Repeat([]byte{'x'}, i%40))),
		}
	}
	return entries
}

func TestConstructRejectsUnsortedInput(t *testing.T) {
	adapter := storage.NewMemory(64)
	entries := []Entry{{Key: 5, Payload: []byte("a")}, {Key: 1, Payload: []byte("b")}}

	err := Construct(adapter, entries)
	require.Error(t, err)
}

// P1 & P2: every input key looks up its own payload; absent keys
// return NotFound.
func TestConstructAndLookupRoundTrip(t *testing.T) {
	adapter := storage.NewMemory(64)
	entries := sortedEntries(50)

	require.NoError(t, Construct(adapter, entries))

	for _, e := range entries {
		got, err := Lookup(adapter, e.Key)
		require.NoError(t, err)
		assert.Equal(t, e.Payload, got)
	}

	for _, missing := range []uint64{1, 3, 9999} {
		_, err := Lookup(adapter, missing)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestConstructEmptyInput(t *testing.T) {
	adapter := storage.NewMemory(64)
	require.NoError(t, Construct(adapter, nil))

	_, err := Lookup(adapter, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConstructRandomizedAgainstReference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	adapter := storage.NewMemory(128)

	n := 300
	keys := make(map[uint64]bool)
	entries := make([]Entry, 0, n)
	next := uint64(0)
	for len(entries) < n {
		next += uint64(r.Intn(5) + 1)
		if keys[next] {
			continue
		}
		keys[next] = true
		payload := make([]byte, r.Intn(300))
		r.Read(payload)
		entries = append(entries, Entry{Key: next, Payload: payload})
	}

	require.NoError(t, Construct(adapter, entries))

	for _, e := range entries {
		got, err := Lookup(adapter, e.Key)
		require.NoError(t, err)
		assert.Equal(t, e.Payload, got)
	}

	// Keys one below every present key (and never itself inserted)
	// should not be found, since insertion intentionally left gaps.
	for _, e := range entries {
		if e.Key == 0 || keys[e.Key-1] {
			continue
		}
		_, err := Lookup(adapter, e.Key-1)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestConstructTraverseVisitsAllInOrder(t *testing.T) {
	adapter := storage.NewMemory(64)
	entries := sortedEntries(40)
	require.NoError(t, Construct(adapter, entries))

	var gotKeys []uint64
	got := map[uint64][]byte{}
	require.NoError(t, Traverse(adapter, func(key uint64, payload []byte) {
		gotKeys = append(gotKeys, key)
		got[key] = payload
	}))

	require.Len(t, gotKeys, len(entries))
	for i := 1; i < len(gotKeys); i++ {
		assert.Less(t, gotKeys[i-1], gotKeys[i])
	}
	for _, e := range entries {
		assert.Equal(t, e.Payload, got[e.Key])
	}
}
