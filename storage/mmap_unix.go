//go:build unix

package storage

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MmapFile is a read-only Adapter backed by a memory-mapped snapshot of
// a committed storage file. It is meant for the lookup path once
// construction has finished: repeated Get calls against a mapped
// region avoid a pread syscall per block.
//
// Set and Malloc always fail: a constructed tree is immutable, and
// MmapFile enforces that at the adapter layer too.
type MmapFile struct {
	blockSize uint16
	data      []byte
	file      *os.File
}

// OpenMmap maps path read-only. blockSize must match the value the
// file was constructed with; it is not self-describing in this
// adapter (Meta carries the root, height, entry count, and checksum,
// but not the block size).
func OpenMmap(path string, blockSize uint16) (*MmapFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s for mmap", path)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "statting %s", path)
	}
	if stat.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("storage: cannot mmap empty file %s", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "mmap")
	}
	_ = unix.Madvise(data, unix.MADV_RANDOM) // block addresses are looked up non-sequentially

	return &MmapFile{blockSize: blockSize, data: data, file: f}, nil
}

func (m *MmapFile) Get(address Address) ([]byte, error) {
	start := int(address) * int(m.blockSize)
	end := start + int(m.blockSize)
	if start < 0 || end > len(m.data) {
		return nil, fmt.Errorf("storage: address %d out of range", address)
	}
	block := make([]byte, m.blockSize)
	copy(block, m.data[start:end])
	return block, nil
}

func (m *MmapFile) Set(Address, []byte) error {
	return fmt.Errorf("storage: MmapFile is read-only")
}

func (m *MmapFile) Malloc() (Address, error) {
	return 0, fmt.Errorf("storage: MmapFile is read-only")
}

func (m *MmapFile) Empty() Address    { return Address(0) }
func (m *MmapFile) Meta() Address     { return Address(1) }
func (m *MmapFile) BlockSize() uint16 { return m.blockSize }
func (m *MmapFile) Size() uint64      { return uint64(len(m.data)) }

// Close unmaps the file and closes the descriptor.
func (m *MmapFile) Close() error {
	if err := unix.Munmap(m.data); err != nil {
		return errors.Wrap(err, "munmap")
	}
	return m.file.Close()
}
