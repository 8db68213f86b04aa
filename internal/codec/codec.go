// Package codec encodes and decodes the fixed-size on-block binary
// layout for data blocks and node blocks. It is the lowest layer of
// the tree and has no notion of chains or trees, only bytes.
//
// Layout (little-endian throughout):
//
//	data block (non-head): next(8) | fragment(B-8)
//	data block (head):     next(8) | total_length(8) | fragment(B-16)
//	node block:             count(8) | (key(8) child(8))*count
//
// The chain's head block carries the logical payload length so a
// reader never needs to walk a chain speculatively to discover it.
package codec

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"blockbtree/errs"
	"blockbtree/storage"
)

const (
	addressSize    = 8
	nodeHeaderSize = 8 // count
	nodePairSize   = 2 * addressSize

	dataHeaderSize     = addressSize               // next
	dataHeadHeaderSize = addressSize + addressSize // next + total_length
)

// MaxFragment returns the usable payload size for a non-head data
// block of the given block size: B - 8.
func MaxFragment(blockSize uint16) int {
	return int(blockSize) - dataHeaderSize
}

// MaxHeadFragment returns the usable payload size for a chain's head
// data block: B - 16.
func MaxHeadFragment(blockSize uint16) int {
	return int(blockSize) - dataHeadHeaderSize
}

// MaxNodeEntries returns the fan-out F = floor((B-8)/16): the maximum
// number of (key, child) pairs a single node block can hold.
func MaxNodeEntries(blockSize uint16) int {
	return (int(blockSize) - nodeHeaderSize) / nodePairSize
}

// EncodeDataBlock serializes a non-head data block: a chain link plus
// a payload fragment, zero-padded to exactly blockSize bytes.
func EncodeDataBlock(blockSize uint16, fragment []byte, next storage.Address) ([]byte, error) {
	if len(fragment) > MaxFragment(blockSize) {
		return nil, errors.Wrapf(errs.ErrEncodingOverflow, "fragment length %d exceeds %d", len(fragment), MaxFragment(blockSize))
	}

	block := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(block[0:8], uint64(next))
	copy(block[dataHeaderSize:], fragment)
	return block, nil
}

// DecodeDataBlock reads a non-head data block's raw fragment (always
// B-8 bytes; the caller trims based on the chain's known total length)
// and its next pointer.
func DecodeDataBlock(block []byte) (fragment []byte, next storage.Address, err error) {
	if len(block) < dataHeaderSize {
		return nil, 0, errors.Wrap(errs.ErrMalformedBlock, "data block shorter than header")
	}
	next = storage.Address(binary.LittleEndian.Uint64(block[0:8]))
	fragment = block[dataHeaderSize:]
	return fragment, next, nil
}

// EncodeHeadDataBlock serializes a chain's head block: next pointer,
// the chain's total logical payload length, and the first fragment.
func EncodeHeadDataBlock(blockSize uint16, fragment []byte, next storage.Address, totalLength uint64) ([]byte, error) {
	if len(fragment) > MaxHeadFragment(blockSize) {
		return nil, errors.Wrapf(errs.ErrEncodingOverflow, "head fragment length %d exceeds %d", len(fragment), MaxHeadFragment(blockSize))
	}

	block := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(block[0:8], uint64(next))
	binary.LittleEndian.PutUint64(block[8:16], totalLength)
	copy(block[dataHeadHeaderSize:], fragment)
	return block, nil
}

// DecodeHeadDataBlock is the inverse of EncodeHeadDataBlock.
func DecodeHeadDataBlock(block []byte) (fragment []byte, next storage.Address, totalLength uint64, err error) {
	if len(block) < dataHeadHeaderSize {
		return nil, 0, 0, errors.Wrap(errs.ErrMalformedBlock, "head data block shorter than header")
	}
	next = storage.Address(binary.LittleEndian.Uint64(block[0:8]))
	totalLength = binary.LittleEndian.Uint64(block[8:16])
	fragment = block[dataHeadHeaderSize:]
	return fragment, next, totalLength, nil
}

// metaChecksumSize is the width of the xxhash checksum EncodeMeta
// appends after its three numeric fields, guarding META against silent
// corruption the way no other block in the tree is guarded (META is
// read on every single lookup, so it is the one block worth the extra
// 8 bytes).
const metaChecksumSize = 8

// EncodeMeta serializes the META block: the root address at offset 0,
// the tree's node-layer height at offset 8 (tracked explicitly rather
// than guessed from block contents), the entry count at offset 16, and
// an xxhash checksum of those three fields at offset 24. Remainder
// zeroed.
func EncodeMeta(blockSize uint16, root storage.Address, height uint64, count uint64) []byte {
	block := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(block[0:8], uint64(root))
	binary.LittleEndian.PutUint64(block[8:16], height)
	binary.LittleEndian.PutUint64(block[16:24], count)
	sum := xxhash.Sum64(block[0:24])
	binary.LittleEndian.PutUint64(block[24:32], sum)
	return block
}

// DecodeMeta is the inverse of EncodeMeta. It fails with
// ErrMalformedBlock if the stored checksum does not match the three
// fields it covers.
func DecodeMeta(block []byte) (root storage.Address, height uint64, count uint64, err error) {
	if len(block) < 24+metaChecksumSize {
		return 0, 0, 0, errors.Wrap(errs.ErrMalformedBlock, "meta block shorter than header")
	}
	wantSum := binary.LittleEndian.Uint64(block[24:32])
	gotSum := xxhash.Sum64(block[0:24])
	if wantSum != gotSum {
		return 0, 0, 0, errors.Wrap(errs.ErrMalformedBlock, "meta block checksum mismatch")
	}
	root = storage.Address(binary.LittleEndian.Uint64(block[0:8]))
	height = binary.LittleEndian.Uint64(block[8:16])
	count = binary.LittleEndian.Uint64(block[16:24])
	return root, height, count, nil
}

// NodeEntry is a single (key, child-address) pair of a node block, the
// in-memory counterpart of the encoded pair array.
type NodeEntry struct {
	Key   uint64
	Child storage.Address
}

// EncodeNodeBlock serializes a sorted list of (key, child) pairs into
// a single node block. The fan-out check is enforced here, not by the
// caller: packing more entries than a block can hold would silently
// corrupt the block's tail, so EncodeNodeBlock refuses instead.
func EncodeNodeBlock(blockSize uint16, entries []NodeEntry) ([]byte, error) {
	max := MaxNodeEntries(blockSize)
	if len(entries) > max {
		return nil, errors.Wrapf(errs.ErrNodeOverflow, "%d entries exceeds fan-out %d", len(entries), max)
	}

	block := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(block[0:8], uint64(len(entries)))
	for i, e := range entries {
		pos := nodeHeaderSize + i*nodePairSize
		binary.LittleEndian.PutUint64(block[pos:pos+8], e.Key)
		binary.LittleEndian.PutUint64(block[pos+8:pos+16], uint64(e.Child))
	}
	return block, nil
}

// DecodeNodeBlock reads a node block's count-prefixed pair array,
// ignoring unused tail bytes.
func DecodeNodeBlock(blockSize uint16, block []byte) ([]NodeEntry, error) {
	if len(block) < nodeHeaderSize {
		return nil, errors.Wrap(errs.ErrMalformedBlock, "node block shorter than header")
	}

	count := binary.LittleEndian.Uint64(block[0:8])
	max := uint64(MaxNodeEntries(blockSize))
	if count > max {
		return nil, errors.Wrapf(errs.ErrMalformedBlock, "node count %d exceeds fan-out %d", count, max)
	}

	entries := make([]NodeEntry, count)
	for i := uint64(0); i < count; i++ {
		pos := nodeHeaderSize + int(i)*nodePairSize
		entries[i] = NodeEntry{
			Key:   binary.LittleEndian.Uint64(block[pos : pos+8]),
			Child: storage.Address(binary.LittleEndian.Uint64(block[pos+8 : pos+16])),
		}
	}
	return entries, nil
}
