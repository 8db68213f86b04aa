// Package blockbtree builds and reads an immutable, persistent B+ tree
// over a block-addressable storage abstraction (storage.Adapter). A
// tree is built once, in ascending key order, from a sorted sequence
// of (key, payload) pairs; afterwards it supports only point lookups
// (Store.Get) and an in-order walk (Store.Traverse). There is no
// insert, delete, or rebalancing path; mutation after construction is
// a follow-on design, not this one.
package blockbtree

import (
	"sort"

	"github.com/pkg/errors"

	"blockbtree/internal/datalayer"
	"blockbtree/internal/nodelayer"
	"blockbtree/storage"
)

// Entry is one (key, payload) pair as the caller sees it: the data
// layer and node layer translate it into a data-chain head and a node
// entry respectively.
type Entry struct {
	Key     uint64
	Payload []byte
}

// Construct builds a tree over entries and commits the result (root
// address, height, and entry count) to adapter's META block. entries
// must already be sorted ascending by Key; Construct does not sort
// them itself, since bulk loading takes a pre-sorted input by
// contract, but it does validate the ordering so a caller mistake
// surfaces immediately rather than producing a silently malformed
// tree.
func Construct(adapter storage.Adapter, entries []Entry, opts ...ConstructOption) error {
	cfg := newConstructConfig(opts)

	if !sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key }) {
		return errors.New("blockbtree: entries must be sorted ascending by key")
	}

	if cfg.logger != nil {
		cfg.logger.WithField("entries", len(entries)).Debug("constructing data chains")
	}

	leaves := make([]nodelayer.Leaf, len(entries))
	for i, e := range entries {
		head, _, blocks, err := datalayer.BuildChain(adapter, e.Payload)
		if err != nil {
			return errors.Wrapf(err, "building data chain for entry %d (key %d)", i, e.Key)
		}
		leaves[i] = nodelayer.Leaf{Key: e.Key, Head: head}
		cfg.metrics.AddBlocksWritten(blocks)
		cfg.metrics.ObserveChainBlocks(blocks)
	}

	root, height, err := nodelayer.BuildIndex(adapter, leaves)
	if err != nil {
		return errors.Wrap(err, "building node layers")
	}

	cfg.metrics.SetTreeHeight(height)
	cfg.metrics.SetEntries(len(entries))
	if cfg.logger != nil {
		cfg.logger.WithFields(logFields(root, height, len(entries))).Info("constructed tree")
	}

	return nil
}

func logFields(root storage.Address, height uint64, entries int) map[string]interface{} {
	return map[string]interface{}{
		"root":    uint64(root),
		"height":  height,
		"entries": entries,
	}
}

