//go:build !windows

package fsx

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// AcquirePresence opens (creating if absent) the presence sidecar file for
// path and takes a shared flock on it, held for the handle's lifetime.
//
// Grounded on the teacher's pkg/slotcache/lock.go sidecar-flock pattern,
// reused here in LOCK_SH mode rather than LOCK_EX: any number of holders
// may hold the shared lock at once, and OtherHolders detects contention by
// attempting a non-blocking upgrade on this handle's own descriptor rather
// than consulting any registry — flock's own conflict rule against other
// open file descriptions is exactly the "does anyone else hold the file"
// signal spec.md §4.1 needs.
func AcquirePresence(path string) (Presence, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("fsx: open presence file %q: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("fsx: flock %q: %w", path, err)
	}

	return &unixPresence{f: f}, nil
}

type unixPresence struct {
	f *os.File
}

func (p *unixPresence) OtherHolders() (bool, error) {
	err := unix.Flock(int(p.f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			// A failed flock conversion has already dropped this
			// descriptor's shared lock; take it back so the token stays held.
			if err := unix.Flock(int(p.f.Fd()), unix.LOCK_SH); err != nil {
				return true, fmt.Errorf("fsx: flock restore %q: %w", p.f.Name(), err)
			}

			return true, nil
		}

		return false, fmt.Errorf("fsx: flock upgrade %q: %w", p.f.Name(), err)
	}

	// Downgrade back to shared immediately so concurrent holders aren't
	// blocked by this check.
	if err := unix.Flock(int(p.f.Fd()), unix.LOCK_SH); err != nil {
		return false, fmt.Errorf("fsx: flock downgrade %q: %w", p.f.Name(), err)
	}

	return false, nil
}

func (p *unixPresence) Close() error {
	_ = unix.Flock(int(p.f.Fd()), unix.LOCK_UN)
	return p.f.Close()
}

var _ Presence = (*unixPresence)(nil)
