package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// File is a thread-safe, block-addressed file Adapter. It lays blocks
// out at offset = address * blockSize: block 0 is the Empty sentinel
// (never read meaningfully), block 1 is Meta, and blocks 2..n are
// allocated in order.
type File struct {
	blockSize uint16

	mu       sync.RWMutex
	file     *os.File
	tmpPath  string
	destPath string
	next     Address
}

// CreateForConstruct opens a fresh file-backed store for bulk
// construction. To make construction crash-safe, writes land in a
// uuid-suffixed temporary file beside path; CommitAndClose renames it
// over path only after the caller has finished writing the tree and
// its Meta block, a temp-then-rename idiom for crash-safe writes.
func CreateForConstruct(path string, blockSize uint16) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating directory for %s", path)
	}

	tmpPath := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	f, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "creating temp file %s", tmpPath)
	}

	fs := &File{
		blockSize: blockSize,
		file:      f,
		tmpPath:   tmpPath,
		destPath:  path,
		next:      2,
	}

	zero := make([]byte, blockSize)
	if _, err := fs.file.WriteAt(zero, 0); err != nil { // block 0: Empty
		f.Close()
		return nil, errors.Wrap(err, "writing empty sentinel block")
	}
	if _, err := fs.file.WriteAt(zero, int64(blockSize)); err != nil { // block 1: Meta
		f.Close()
		return nil, errors.Wrap(err, "writing meta block")
	}

	return fs, nil
}

// OpenExisting opens an already-constructed file-backed store for
// further reads or, if a caller needs to patch Meta directly, writes.
func OpenExisting(path string, blockSize uint16) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "statting %s", path)
	}
	next := Address(stat.Size() / int64(blockSize))
	if next < 2 {
		next = 2
	}
	return &File{
		blockSize: blockSize,
		file:      f,
		destPath:  path,
		next:      next,
	}, nil
}

func (f *File) offset(address Address) int64 {
	return int64(address) * int64(f.blockSize)
}

func (f *File) Get(address Address) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	block := make([]byte, f.blockSize)
	if _, err := f.file.ReadAt(block, f.offset(address)); err != nil {
		return nil, errors.Wrapf(err, "reading block at address %d", address)
	}
	return block, nil
}

func (f *File) Set(address Address, block []byte) error {
	if uint16(len(block)) != f.blockSize {
		return fmt.Errorf("storage: block length %d != block size %d", len(block), f.blockSize)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.file.WriteAt(block, f.offset(address)); err != nil {
		return errors.Wrapf(err, "writing block at address %d", address)
	}
	return nil
}

func (f *File) Malloc() (Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	addr := f.next
	f.next++
	zero := make([]byte, f.blockSize)
	if _, err := f.file.WriteAt(zero, f.offset(addr)); err != nil {
		return 0, errors.Wrapf(err, "pre-allocating block at address %d", addr)
	}
	return addr, nil
}

func (f *File) Empty() Address    { return Address(0) }
func (f *File) Meta() Address     { return Address(1) }
func (f *File) BlockSize() uint16 { return f.blockSize }

func (f *File) Size() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	stat, err := f.file.Stat()
	if err != nil {
		return 0
	}
	return uint64(stat.Size())
}

// CommitAndClose closes the file and, if it was opened with
// CreateForConstruct, renames the temp file over the destination path.
// This is the single atomic commit point: the caller must have already
// written Meta before calling this.
func (f *File) CommitAndClose() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.file.Sync(); err != nil {
		return errors.Wrap(err, "syncing storage file")
	}
	if err := f.file.Close(); err != nil {
		return errors.Wrap(err, "closing storage file")
	}
	if f.tmpPath != "" {
		if err := os.Rename(f.tmpPath, f.destPath); err != nil {
			return errors.Wrapf(err, "renaming %s to %s", f.tmpPath, f.destPath)
		}
	}
	return nil
}

// Close closes the underlying file without renaming. Use this for
// adapters opened with OpenExisting.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
