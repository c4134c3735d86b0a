//go:build !windows

package mmio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Region owns an open file and the single mmap view over it (spec.md §4.1).
// It is not safe for concurrent use; callers serialize remap against
// concurrent Base/Len reads the way mmlist.List does (§5).
type Region struct {
	file *os.File
	data []byte
	mode Mode
	path string
}

// Open opens or creates the file at path and maps at least requestedBytes,
// rounded up to PageSize (spec.md §4.1 "open").
func Open(path string, requestedBytes int64, mode Mode) (*Region, error) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		return nil, ErrUnsupported
	}

	flag := os.O_RDWR
	if mode == ReadOnly {
		flag = os.O_RDONLY
	} else {
		flag |= os.O_CREATE
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mmio: open %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmio: stat %q: %w", path, err)
	}

	size := info.Size()
	want := alignUp(max64(requestedBytes, PageSize), PageSize)

	if mode == ReadWrite && size < want {
		if err := f.Truncate(want); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("mmio: truncate %q: %w", path, err)
		}
		size = want
	} else if size < PageSize {
		// A read-only open of a file smaller than one page cannot happen
		// for a well-formed list file. An empty file fails at mmap; a
		// non-empty short file is mapped over one whole page.
		size = alignUp(size, PageSize)
	}

	prot := unix.PROT_READ
	if mode == ReadWrite {
		prot |= unix.PROT_WRITE
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmio: mmap %q: %w", path, err)
	}

	return &Region{file: f, data: data, mode: mode, path: path}, nil
}

// Remap disposes the current view and creates a fresh one over
// newByteCapacity, resizing the underlying file first when this is a
// read-write region. Per spec.md §4.1, a shrink below the current file
// length is silently downgraded to a no-op when another process still has
// the file open at its larger size, since truncating out from under a live
// reader would invalidate pages it still expects to dereference.
func (r *Region) Remap(newByteCapacity int64, otherProcessHoldsFile bool) error {
	want := alignUp(newByteCapacity, PageSize)

	info, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("mmio: stat %q: %w", r.path, err)
	}

	cur := info.Size()

	if r.mode == ReadWrite && want != cur {
		if want < cur && otherProcessHoldsFile {
			want = cur
		} else {
			if err := r.file.Truncate(want); err != nil {
				return fmt.Errorf("mmio: truncate %q: %w", r.path, err)
			}
		}
	} else if r.mode == ReadOnly {
		want = alignUp(max64(cur, want), PageSize)
	}

	if err := unix.Munmap(r.data); err != nil {
		return fmt.Errorf("mmio: munmap %q: %w", r.path, err)
	}

	prot := unix.PROT_READ
	if r.mode == ReadWrite {
		prot |= unix.PROT_WRITE
	}

	data, err := unix.Mmap(int(r.file.Fd()), 0, int(want), prot, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmio: mmap %q: %w", r.path, err)
	}

	r.data = data

	return nil
}

// Close releases the view, then the file handle, in that order (spec.md
// §4.1 "close").
func (r *Region) Close() error {
	var err error

	if r.data != nil {
		err = unix.Munmap(r.data)
		r.data = nil
	}

	if cerr := r.file.Close(); cerr != nil && err == nil {
		err = cerr
	}

	return err
}

// Sync flushes the mapped pages to disk via msync.
func (r *Region) Sync() error {
	return unix.Msync(r.data, unix.MS_SYNC)
}

// Base returns the current mapped view. The slice is only valid until the
// next call to Remap or Close.
func (r *Region) Base() []byte { return r.data }

// Fd returns the underlying file descriptor, for callers that need it for
// flock or fstat (identity, writer lock).
func (r *Region) Fd() uintptr { return r.file.Fd() }

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
