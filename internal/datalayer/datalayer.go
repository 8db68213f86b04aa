// Package datalayer splits a payload into a chain of fixed-size data
// blocks and reassembles a chain back into its payload.
package datalayer

import (
	"github.com/pkg/errors"

	"blockbtree/internal/codec"
	"blockbtree/storage"
)

// BuildChain splits payload into consecutive fragments and writes them
// as a chain of data blocks, returning the chain head's address, the
// payload's logical length, and the number of blocks the chain used
// (for callers recording chain-length metrics). Addresses for every
// block in the chain are pre-allocated (via Malloc) before any block
// is written, so each block's next pointer is known when it is
// written.
//
// A zero-length payload still allocates exactly one head block, with
// an empty fragment and Next == Empty.
func BuildChain(adapter storage.Adapter, payload []byte) (head storage.Address, length uint64, blocks int, err error) {
	length = uint64(len(payload))
	blockSize := adapter.BlockSize()
	headCap := codec.MaxHeadFragment(blockSize)
	followCap := codec.MaxFragment(blockSize)

	numBlocks := 1
	if len(payload) > headCap {
		remaining := len(payload) - headCap
		numBlocks += (remaining + followCap - 1) / followCap
	}

	addrs := make([]storage.Address, numBlocks)
	for i := range addrs {
		a, mallocErr := adapter.Malloc()
		if mallocErr != nil {
			return 0, 0, 0, errors.Wrap(mallocErr, "allocating data chain block")
		}
		addrs[i] = a
	}

	offset := 0
	for i, addr := range addrs {
		next := adapter.Empty()
		if i+1 < len(addrs) {
			next = addrs[i+1]
		}

		var block []byte
		var encErr error
		if i == 0 {
			end := min(len(payload), headCap)
			block, encErr = codec.EncodeHeadDataBlock(blockSize, payload[offset:end], next, length)
			offset = end
		} else {
			end := min(len(payload), offset+followCap)
			block, encErr = codec.EncodeDataBlock(blockSize, payload[offset:end], next)
			offset = end
		}
		if encErr != nil {
			return 0, 0, 0, errors.Wrapf(encErr, "encoding data block %d of chain", i)
		}
		if setErr := adapter.Set(addr, block); setErr != nil {
			return 0, 0, 0, errors.Wrapf(setErr, "writing data block %d of chain", i)
		}
	}

	return addrs[0], length, len(addrs), nil
}

// ReadChain reassembles the payload stored at head: the head block's
// total_length, then successive fragments trimmed to that length.
func ReadChain(adapter storage.Adapter, head storage.Address) ([]byte, error) {
	block, err := adapter.Get(head)
	if err != nil {
		return nil, errors.Wrapf(err, "reading chain head at address %d", head)
	}
	fragment, next, total, err := codec.DecodeHeadDataBlock(block)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 0, total)
	payload = append(payload, fragment...)

	for uint64(len(payload)) < total && next != adapter.Empty() {
		block, err = adapter.Get(next)
		if err != nil {
			return nil, errors.Wrapf(err, "reading chain block at address %d", next)
		}
		fragment, next, err = codec.DecodeDataBlock(block)
		if err != nil {
			return nil, err
		}
		payload = append(payload, fragment...)
	}

	if uint64(len(payload)) < total {
		return nil, errors.Errorf("blockbtree: chain terminated early at %d of %d bytes", len(payload), total)
	}
	return payload[:total], nil
}
