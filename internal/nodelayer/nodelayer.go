// Package nodelayer builds index layers, bottom-up, above a sorted
// sequence of data-chain heads, finishing with the root address and
// tree height written to the storage's META block.
package nodelayer

import (
	"github.com/pkg/errors"

	"blockbtree/internal/codec"
	"blockbtree/storage"
)

// Leaf is one (key, data-chain head) pair: the node layer's view of an
// entry produced by the data layer builder. The chain's length is not
// carried here; it already lives in the chain's head block.
type Leaf struct {
	Key  uint64
	Head storage.Address
}

// BuildIndex constructs successive node layers over leaves, bottom-up,
// until a single root block remains, then writes (root, height) to
// META. leaves must already be sorted ascending by Key.
//
// Two edge cases: zero leaves writes Empty/height-0 to META; one leaf
// still produces a single-entry root node block rather than pointing
// META directly at the data chain, so lookups always descend through
// at least one node block.
func BuildIndex(adapter storage.Adapter, leaves []Leaf) (root storage.Address, height uint64, err error) {
	if len(leaves) == 0 {
		if err := adapter.Set(adapter.Meta(), codec.EncodeMeta(adapter.BlockSize(), adapter.Empty(), 0, 0)); err != nil {
			return 0, 0, errors.Wrap(err, "writing empty meta block")
		}
		return adapter.Empty(), 0, nil
	}

	fanOut := codec.MaxNodeEntries(adapter.BlockSize())

	current := make([]codec.NodeEntry, len(leaves))
	for i, l := range leaves {
		current[i] = codec.NodeEntry{Key: l.Key, Child: l.Head}
	}

	for len(current) > fanOut {
		current, err = buildLayer(adapter, current, fanOut)
		if err != nil {
			return 0, 0, err
		}
		height++
	}

	rootBlock, err := codec.EncodeNodeBlock(adapter.BlockSize(), current)
	if err != nil {
		return 0, 0, errors.Wrap(err, "encoding root node block")
	}
	root, err = adapter.Malloc()
	if err != nil {
		return 0, 0, errors.Wrap(err, "allocating root node block")
	}
	if err := adapter.Set(root, rootBlock); err != nil {
		return 0, 0, errors.Wrap(err, "writing root node block")
	}
	height++

	if err := adapter.Set(adapter.Meta(), codec.EncodeMeta(adapter.BlockSize(), root, height, uint64(len(leaves)))); err != nil {
		return 0, 0, errors.Wrap(err, "writing meta block")
	}
	return root, height, nil
}

// buildLayer partitions current into groups of fanOut entries each
// (the last possibly smaller, down to a minimum occupancy of
// ceil(fanOut/2)), emits one node block per group, and returns the
// (min-key, block-address) pairs for the next layer up.
func buildLayer(adapter storage.Adapter, current []codec.NodeEntry, fanOut int) ([]codec.NodeEntry, error) {
	groups := partition(current, fanOut)

	next := make([]codec.NodeEntry, 0, len(groups))
	for _, group := range groups {
		block, err := codec.EncodeNodeBlock(adapter.BlockSize(), group)
		if err != nil {
			return nil, errors.Wrap(err, "encoding node block")
		}
		addr, err := adapter.Malloc()
		if err != nil {
			return nil, errors.Wrap(err, "allocating node block")
		}
		if err := adapter.Set(addr, block); err != nil {
			return nil, errors.Wrap(err, "writing node block")
		}
		next = append(next, codec.NodeEntry{Key: group[0].Key, Child: addr})
	}
	return next, nil
}

// partition groups entries into consecutive slices of fanOut entries,
// except the last group, which holds between ceil(fanOut/2) and
// fanOut entries. When the natural remainder would leave a shorter
// tail, entries are redistributed from the preceding full group. When
// there are too few entries overall to reach even one
// minimum-occupancy group, the whole input is emitted as a single
// short node, an accepted, deliberately rare degenerate case.
func partition(entries []codec.NodeEntry, fanOut int) [][]codec.NodeEntry {
	n := len(entries)
	if n <= fanOut {
		return [][]codec.NodeEntry{entries}
	}

	minLast := (fanOut + 1) / 2 // ceil(fanOut/2)
	numFull := n / fanOut
	remainder := n % fanOut

	var groups [][]codec.NodeEntry
	switch {
	case remainder == 0:
		for i := 0; i < numFull; i++ {
			groups = append(groups, entries[i*fanOut:(i+1)*fanOut])
		}

	case remainder >= minLast:
		for i := 0; i < numFull; i++ {
			groups = append(groups, entries[i*fanOut:(i+1)*fanOut])
		}
		groups = append(groups, entries[numFull*fanOut:])

	case numFull >= 1:
		take := fanOut / 2
		for i := 0; i < numFull-1; i++ {
			groups = append(groups, entries[i*fanOut:(i+1)*fanOut])
		}
		lastFullStart := (numFull - 1) * fanOut
		shrunkEnd := lastFullStart + (fanOut - take)
		groups = append(groups, entries[lastFullStart:shrunkEnd])
		groups = append(groups, entries[shrunkEnd:])

	default:
		// Fewer than minLast entries total and no preceding group to
		// borrow from: emit as a single undersized node.
		groups = append(groups, entries)
	}

	return groups
}
