package storage

import (
	"fmt"
	"sync"
)

// addrEmpty and addrMeta are the two addresses every Memory adapter
// reserves before handing out allocated blocks, matching the file
// adapter's block 0 / block 1 reservation.
const (
	addrEmpty Address = 0
	addrMeta  Address = 1
)

// Memory is an in-memory, map-backed Adapter. Get is safe for
// concurrent readers once construction has finished.
type Memory struct {
	blockSize uint16

	mu     sync.RWMutex
	blocks map[Address][]byte
	next   Address
}

// NewMemory creates an empty Memory adapter with the given block size.
// Block 1 (Meta) is pre-allocated and zeroed, as the on-disk format
// reserves it.
func NewMemory(blockSize uint16) *Memory {
	m := &Memory{
		blockSize: blockSize,
		blocks:    make(map[Address][]byte),
		next:      2,
	}
	m.blocks[addrMeta] = make([]byte, blockSize)
	return m
}

func (m *Memory) Get(address Address) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	block, ok := m.blocks[address]
	if !ok {
		return nil, fmt.Errorf("storage: no block at address %d", address)
	}
	out := make([]byte, len(block))
	copy(out, block)
	return out, nil
}

func (m *Memory) Set(address Address, block []byte) error {
	if uint16(len(block)) != m.blockSize {
		return fmt.Errorf("storage: block length %d != block size %d", len(block), m.blockSize)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if address != addrMeta {
		if _, ok := m.blocks[address]; !ok {
			return fmt.Errorf("storage: address %d was not allocated", address)
		}
	}
	cp := make([]byte, len(block))
	copy(cp, block)
	m.blocks[address] = cp
	return nil
}

func (m *Memory) Malloc() (Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	addr := m.next
	m.next++
	m.blocks[addr] = make([]byte, m.blockSize)
	return addr, nil
}

func (m *Memory) Empty() Address { return addrEmpty }
func (m *Memory) Meta() Address  { return addrMeta }

func (m *Memory) Size() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.blocks)) * uint64(m.blockSize)
}

func (m *Memory) BlockSize() uint16 { return m.blockSize }
