package blockbtree

import (
	"errors"
	"io"

	"blockbtree/internal/codec"
	"blockbtree/storage"
)

// Store is a read-only facade over a storage.Adapter holding an
// already-constructed tree: a thin wrapper that owns an adapter and
// exposes the operations a caller actually wants (Get, Len, Height,
// Close) instead of the lower-level Lookup/Traverse functions. Store
// has no Put/Delete; construction happens once, via Construct, before
// a Store is ever opened.
type Store struct {
	adapter storage.Adapter
	root    storage.Address
	height  uint64
	count   uint64
}

// Open reads adapter's META block and returns a Store ready for
// lookups. adapter must already hold a tree committed by Construct.
func Open(adapter storage.Adapter) (*Store, error) {
	metaBlock, err := adapter.Get(adapter.Meta())
	if err != nil {
		return nil, err
	}
	root, height, count, err := codec.DecodeMeta(metaBlock)
	if err != nil {
		return nil, err
	}
	return &Store{adapter: adapter, root: root, height: height, count: count}, nil
}

// Get looks up key, returning (payload, true, nil) if present,
// (nil, false, nil) if absent, and a non-nil error only for failures
// other than "not found" (storage errors, corruption).
func (s *Store) Get(key uint64) ([]byte, bool, error) {
	payload, err := Lookup(s.adapter, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Traverse walks every (key, payload) pair in ascending key order.
func (s *Store) Traverse(visit func(key uint64, payload []byte)) error {
	return Traverse(s.adapter, visit)
}

// Height returns the number of node layers between META and the data
// chains (0 for an empty tree).
func (s *Store) Height() uint64 { return s.height }

// Len returns the number of (key, payload) entries the tree was
// constructed with.
func (s *Store) Len() uint64 { return s.count }

// Close releases the underlying adapter's resources, if it implements
// io.Closer (storage.File and storage.MmapFile both do; storage.Memory
// does not need to).
func (s *Store) Close() error {
	if closer, ok := s.adapter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
