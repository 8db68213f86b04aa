package blockbtree

import (
	"github.com/pkg/errors"

	"blockbtree/errs"
	"blockbtree/internal/codec"
	"blockbtree/internal/datalayer"
	"blockbtree/storage"
)

// Lookup descends from the root through exactly height node levels
// (the height stored in META, rather than guessing a block's kind from
// its header), then reassembles the data chain at the leaf-parent's
// matched entry.
//
// A lookup fails with ErrNotFound both when the key falls outside the
// range covered by the tree and when the descended leaf-parent entry's
// key does not exactly equal key; no distinction is drawn between
// those two cases.
func Lookup(adapter storage.Adapter, key uint64) ([]byte, error) {
	metaBlock, err := adapter.Get(adapter.Meta())
	if err != nil {
		return nil, errors.Wrap(err, "reading meta block")
	}
	root, height, _, err := codec.DecodeMeta(metaBlock)
	if err != nil {
		return nil, err
	}
	if root == adapter.Empty() {
		return nil, errs.ErrNotFound
	}

	current := root
	var matchedKey uint64
	for level := uint64(0); level < height; level++ {
		block, err := adapter.Get(current)
		if err != nil {
			return nil, errors.Wrapf(err, "reading node block at address %d", current)
		}
		entries, err := codec.DecodeNodeBlock(adapter.BlockSize(), block)
		if err != nil {
			return nil, err
		}

		idx := searchLastLE(entries, key)
		if idx < 0 {
			return nil, errs.ErrNotFound
		}
		matchedKey = entries[idx].Key
		current = entries[idx].Child
	}

	if matchedKey != key {
		return nil, errs.ErrNotFound
	}
	return datalayer.ReadChain(adapter, current)
}

// searchLastLE returns the index of the last entry whose key is <=
// key, or -1 if every entry's key is greater than key. entries is
// assumed sorted ascending.
func searchLastLE(entries []codec.NodeEntry, key uint64) int {
	lo, hi, res := 0, len(entries)-1, -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if entries[mid].Key <= key {
			res = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return res
}

// Traverse walks every (key, payload) pair in the tree in ascending
// key order, calling visit once per pair. A left-to-right depth-first
// walk of the node levels reaches every data-chain head in sorted
// order because node entries within and across sibling blocks are
// sorted ascending.
func Traverse(adapter storage.Adapter, visit func(key uint64, payload []byte)) error {
	metaBlock, err := adapter.Get(adapter.Meta())
	if err != nil {
		return errors.Wrap(err, "reading meta block")
	}
	root, height, _, err := codec.DecodeMeta(metaBlock)
	if err != nil {
		return err
	}
	if root == adapter.Empty() {
		return nil
	}
	return traverseLevel(adapter, root, height, visit)
}

func traverseLevel(adapter storage.Adapter, addr storage.Address, levelsRemaining uint64, visit func(uint64, []byte)) error {
	block, err := adapter.Get(addr)
	if err != nil {
		return errors.Wrapf(err, "reading node block at address %d", addr)
	}
	entries, err := codec.DecodeNodeBlock(adapter.BlockSize(), block)
	if err != nil {
		return err
	}

	if levelsRemaining == 1 {
		for _, e := range entries {
			payload, err := datalayer.ReadChain(adapter, e.Child)
			if err != nil {
				return errors.Wrapf(err, "reassembling chain for key %d", e.Key)
			}
			visit(e.Key, payload)
		}
		return nil
	}

	for _, e := range entries {
		if err := traverseLevel(adapter, e.Child, levelsRemaining-1, visit); err != nil {
			return err
		}
	}
	return nil
}
