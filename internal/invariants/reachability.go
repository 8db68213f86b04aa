// Package invariants holds checks that verify a constructed tree
// against the structural invariants a bulk-build must uphold. They are
// used from tests, not from the construct/read path itself.
package invariants

import (
	set3 "github.com/TomTonic/Set3"
	"github.com/pkg/errors"

	"blockbtree/internal/codec"
	"blockbtree/storage"
)

// CheckReachability walks every node block from the root down to the
// data-chain heads and the data blocks within each chain, failing if
// any block address is reachable more than once: no address should
// ever be referenced from two places in the tree. It returns the set
// of every address visited, in case a caller wants to cross-check it
// against storage.Adapter's allocated range.
func CheckReachability(adapter storage.Adapter, root storage.Address, height uint64) (*set3.Set3[storage.Address], error) {
	seen := set3.EmptyWithCapacity[storage.Address](64)

	if root == adapter.Empty() {
		return seen, nil
	}

	if err := visitNode(adapter, root, height, seen); err != nil {
		return nil, err
	}
	return seen, nil
}

func visitNode(adapter storage.Adapter, addr storage.Address, levelsRemaining uint64, seen *set3.Set3[storage.Address]) error {
	if seen.Contains(addr) {
		return errors.Errorf("address %d reachable more than once (node block)", addr)
	}
	seen.Add(addr)

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
			if err := visitChain(adapter, e.Child, seen); err != nil {
				return err
			}
		}
		return nil
	}

	for _, e := range entries {
		if err := visitNode(adapter, e.Child, levelsRemaining-1, seen); err != nil {
			return err
		}
	}
	return nil
}

func visitChain(adapter storage.Adapter, head storage.Address, seen *set3.Set3[storage.Address]) error {
	current := head
	first := true
	for current != adapter.Empty() {
		if seen.Contains(current) {
			return errors.Errorf("address %d reachable more than once (data block)", current)
		}
		seen.Add(current)

		block, err := adapter.Get(current)
		if err != nil {
			return errors.Wrapf(err, "reading data block at address %d", current)
		}

		var next storage.Address
		if first {
			_, next, _, err = codec.DecodeHeadDataBlock(block)
			first = false
		} else {
			_, next, err = codec.DecodeDataBlock(block)
		}
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}
