//go:build !unix

package storage

import "fmt"

// OpenMmap is unavailable on non-unix platforms; callers on those
// platforms should use OpenExisting instead.
func OpenMmap(path string, blockSize uint16) (*MmapFile, error) {
	return nil, fmt.Errorf("storage: mmap-backed reads are not supported on this platform")
}

// MmapFile is declared here too so the type is importable regardless
// of platform; on non-unix builds it is never constructed.
type MmapFile struct{}

func (m *MmapFile) Get(Address) ([]byte, error) { return nil, fmt.Errorf("storage: unsupported") }
func (m *MmapFile) Set(Address, []byte) error   { return fmt.Errorf("storage: unsupported") }
func (m *MmapFile) Malloc() (Address, error)    { return 0, fmt.Errorf("storage: unsupported") }
func (m *MmapFile) Empty() Address              { return 0 }
func (m *MmapFile) Meta() Address               { return 1 }
func (m *MmapFile) BlockSize() uint16           { return 0 }
func (m *MmapFile) Size() uint64                { return 0 }
func (m *MmapFile) Close() error                { return nil }
