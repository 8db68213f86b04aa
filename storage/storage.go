// Package storage defines the block I/O contract the B+ tree core is
// built against, plus reference adapters: an in-memory map-backed one,
// a file-backed one, and a read-only memory-mapped one for lookups.
package storage

// Address is an opaque handle produced by an Adapter's Malloc. Keys and
// addresses share the same width as the rest of the tree's numeric
// fields.
type Address uint64

// Adapter is the storage contract consumed by the tree. Implementations
// own a fixed block size chosen at construction; every block read or
// written through Get/Set must be exactly BlockSize() bytes.
//
// Adapter is exclusively owned by the tree during bulk construction. A
// constructed tree's reads may be shared across goroutines only if the
// concrete Adapter documents Get as safe for concurrent use; Memory and
// File both are.
type Adapter interface {
	// Get reads the block at address. It fails if address was never
	// allocated. Get does not detect a block that was allocated but
	// never written: Memory and File both zero each block at Malloc (and
	// the Meta block up front), so such a block reads back as zeros.
	Get(address Address) ([]byte, error)

	// Set writes block to address. address must have come from Malloc
	// or equal Meta(). len(block) must equal BlockSize().
	Set(address Address, block []byte) error

	// Malloc returns a fresh address, distinct from Empty, Meta, and
	// every address previously returned.
	Malloc() (Address, error)

	// Empty returns the sentinel null address.
	Empty() Address

	// Meta returns the reserved address holding the tree's root
	// pointer and height.
	Meta() Address

	// Size returns the total number of bytes currently allocated.
	Size() uint64

	// BlockSize returns the fixed block size B.
	BlockSize() uint16
}
