//go:build windows

package fsx

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// AcquirePresence opens (creating if absent) the presence sidecar file for
// path, shared for reading and writing across processes, and takes a
// shared byte-range lock on it (LockFileEx without LOCKFILE_EXCLUSIVE_LOCK),
// mirroring presence_unix.go's flock-based approach.
func AcquirePresence(path string) (Presence, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("fsx: path %q: %w", path, err)
	}

	handle, err := windows.CreateFile(
		p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_ALWAYS,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("fsx: CreateFile %q: %w", path, err)
	}

	var overlapped windows.Overlapped

	if err := windows.LockFileEx(handle, windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, &overlapped); err != nil {
		_ = windows.CloseHandle(handle)
		return nil, fmt.Errorf("fsx: LockFileEx %q: %w", path, err)
	}

	return &windowsPresence{handle: handle}, nil
}

type windowsPresence struct {
	handle windows.Handle
}

func (p *windowsPresence) OtherHolders() (bool, error) {
	const exFlags = windows.LOCKFILE_EXCLUSIVE_LOCK | windows.LOCKFILE_FAIL_IMMEDIATELY

	// An exclusive lock may not overlap any existing lock, this handle's own
	// shared one included, so release that before trying the upgrade.
	var releaseOverlapped windows.Overlapped
	if err := windows.UnlockFileEx(p.handle, 0, 1, 0, &releaseOverlapped); err != nil {
		return false, fmt.Errorf("fsx: UnlockFileEx: %w", err)
	}

	var lockOverlapped windows.Overlapped

	err := windows.LockFileEx(p.handle, exFlags, 0, 1, 0, &lockOverlapped)
	if err != nil {
		if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			var restoreOverlapped windows.Overlapped
			if err := windows.LockFileEx(p.handle, windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, &restoreOverlapped); err != nil {
				return true, fmt.Errorf("fsx: LockFileEx restore: %w", err)
			}

			return true, nil
		}

		return false, fmt.Errorf("fsx: LockFileEx upgrade: %w", err)
	}

	var unlockOverlapped windows.Overlapped
	if err := windows.UnlockFileEx(p.handle, 0, 1, 0, &unlockOverlapped); err != nil {
		return false, fmt.Errorf("fsx: UnlockFileEx: %w", err)
	}

	var downgradeOverlapped windows.Overlapped
	if err := windows.LockFileEx(p.handle, windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, &downgradeOverlapped); err != nil {
		return false, fmt.Errorf("fsx: LockFileEx re-downgrade: %w", err)
	}

	return false, nil
}

func (p *windowsPresence) Close() error {
	var overlapped windows.Overlapped
	_ = windows.UnlockFileEx(p.handle, 0, 1, 0, &overlapped)

	return windows.CloseHandle(p.handle)
}

var _ Presence = (*windowsPresence)(nil)
