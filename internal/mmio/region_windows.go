//go:build windows

package mmio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Region owns an open file and the single mapping view over it (spec.md
// §4.1), implemented on windows with CreateFileMapping/MapViewOfFile
// instead of the unix mmap family.
type Region struct {
	file    *os.File
	mapping windows.Handle
	addr    uintptr
	size    int64
	mode    Mode
	path    string
}

// Open opens or creates the file at path and maps at least requestedBytes,
// rounded up to PageSize.
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
		size = alignUp(size, PageSize)
	}

	r := &Region{file: f, mode: mode, path: path}
	if err := r.mapView(size); err != nil {
		_ = f.Close()
		return nil, err
	}

	return r, nil
}

func (r *Region) mapView(size int64) error {
	protect := uint32(windows.PAGE_READONLY)
	access := uint32(windows.FILE_MAP_READ)
	if r.mode == ReadWrite {
		protect = windows.PAGE_READWRITE
		access = windows.FILE_MAP_WRITE
	}

	high := uint32(size >> 32)
	low := uint32(size & 0xFFFFFFFF)

	h, err := windows.CreateFileMapping(windows.Handle(r.file.Fd()), nil, protect, high, low, nil)
	if err != nil {
		return fmt.Errorf("mmio: CreateFileMapping %q: %w", r.path, err)
	}

	addr, err := windows.MapViewOfFile(h, access, 0, 0, uintptr(size))
	if err != nil {
		_ = windows.CloseHandle(h)
		return fmt.Errorf("mmio: MapViewOfFile %q: %w", r.path, err)
	}

	r.mapping = h
	r.addr = addr
	r.size = size

	return nil
}

func (r *Region) unmapView() error {
	var err error

	if r.addr != 0 {
		if uerr := windows.UnmapViewOfFile(r.addr); uerr != nil && err == nil {
			err = uerr
		}
		r.addr = 0
	}

	if r.mapping != 0 {
		if cerr := windows.CloseHandle(r.mapping); cerr != nil && err == nil {
			err = cerr
		}
		r.mapping = 0
	}

	return err
}

// Remap disposes the current view and creates a fresh one over
// newByteCapacity, matching the unix implementation's shrink-downgrade
// rule (spec.md §4.1).
func (r *Region) Remap(newByteCapacity int64, otherProcessHoldsFile bool) error {
	want := alignUp(newByteCapacity, PageSize)

	info, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("mmio: stat %q: %w", r.path, err)
	}

	cur := info.Size()

	if err := r.unmapView(); err != nil {
		return fmt.Errorf("mmio: unmap %q: %w", r.path, err)
	}

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

	return r.mapView(want)
}

// Close releases the view, the mapping object, then the file handle.
func (r *Region) Close() error {
	err := r.unmapView()

	if cerr := r.file.Close(); cerr != nil && err == nil {
		err = cerr
	}

	return err
}

// Sync flushes the mapped pages to disk.
func (r *Region) Sync() error {
	return windows.FlushViewOfFile(r.addr, uintptr(r.size))
}

// Base returns the current mapped view as a byte slice. The slice is only
// valid until the next call to Remap or Close.
func (r *Region) Base() []byte {
	if r.addr == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(r.addr)), r.size)
}

// Fd returns the underlying file handle.
func (r *Region) Fd() uintptr { return r.file.Fd() }

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
