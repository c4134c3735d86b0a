//go:build windows

package fsx

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// windowsLocker implements [Locker] (spec.md §4.4 "Platform A") by taking a
// native exclusive, non-blocking byte-range lock directly on the data file
// itself — no sidecar lock file is needed on this platform, matching
// spec.md's "native exclusive-share" description.
//
// The "path" passed to TryLock here is the data file path (not path+".lock");
// mmlist obtains it from LockTargetPath, which returns the data path
// unchanged on this platform.
type windowsLocker struct{}

// NewLocker returns the platform writer [Locker] for the current GOOS.
func NewLocker() Locker { return windowsLocker{} }

// LockTargetPath returns the path a caller should pass to [Locker.TryLock]
// for dataPath's writer lock. On this platform that is dataPath itself
// (spec.md §4.4 Platform A, native exclusive share-mode on the data file);
// on unix it is a sidecar file.
func LockTargetPath(dataPath string) string { return dataPath }

func (windowsLocker) TryLock(path string) (Lock, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("fsx: path %q: %w", path, err)
	}

	handle, err := windows.CreateFile(
		p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, // no sharing: exclusive open enforces single writer
		nil,
		windows.OPEN_ALWAYS,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		if errors.Is(err, windows.ERROR_SHARING_VIOLATION) {
			return nil, ErrWouldBlock
		}

		return nil, fmt.Errorf("fsx: CreateFile %q: %w", path, err)
	}

	var overlapped windows.Overlapped

	const lockFlags = windows.LOCKFILE_EXCLUSIVE_LOCK | windows.LOCKFILE_FAIL_IMMEDIATELY

	err = windows.LockFileEx(handle, lockFlags, 0, 1, 0, &overlapped)
	if err != nil {
		_ = windows.CloseHandle(handle)

		if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			return nil, ErrWouldBlock
		}

		return nil, fmt.Errorf("fsx: LockFileEx %q: %w", path, err)
	}

	return &windowsLock{handle: handle}, nil
}

type windowsLock struct {
	handle windows.Handle
}

func (l *windowsLock) Close() error {
	if l == nil || l.handle == 0 {
		return nil
	}

	var overlapped windows.Overlapped

	_ = windows.UnlockFileEx(l.handle, 0, 1, 0, &overlapped)

	return windows.CloseHandle(l.handle)
}
