//go:build !windows

package fsx

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// unixLocker implements [Locker] (spec.md §4.4 "Platform B") using a sidecar
// lock file at path+".lock" and an exclusive, non-blocking flock on its file
// descriptor.
//
// Grounded on the teacher's pkg/slotcache/writer_lock.go: open-or-create the
// sidecar, LOCK_EX|LOCK_NB, map EWOULDBLOCK/EAGAIN to contention. We use
// golang.org/x/sys/unix instead of the syscall package for a maintained,
// documented surface.
type unixLocker struct{}

// NewLocker returns the platform writer [Locker] for the current GOOS.
func NewLocker() Locker { return unixLocker{} }

// LockTargetPath returns the path a caller should pass to [Locker.TryLock]
// for dataPath's writer lock. On this platform that is the sidecar file
// (spec.md §4.4 Platform B); on windows it is dataPath itself.
func LockTargetPath(dataPath string) string { return dataPath + ".lock" }

func (unixLocker) TryLock(path string) (Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("fsx: open lock file %q: %w", path, err)
	}

	err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = f.Close()

		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return nil, ErrWouldBlock
		}

		return nil, fmt.Errorf("fsx: flock %q: %w", path, err)
	}

	return &unixLock{f: f}, nil
}

// unixLock holds an open, flocked sidecar file descriptor.
//
// The sidecar file is intentionally never deleted on release: its mere
// existence carries no meaning (the advisory lock is what matters), and a
// lingering file lets the next writer reacquire the same flock without a
// create race. A lock file left behind after a crash is reclaimed
// automatically by the next TryLock, because flock locks do not survive
// process exit — the OS releases them, so a fresh TryLock on the same path
// always succeeds once the crashed holder's process table entry is gone.
type unixLock struct {
	f *os.File
}

func (l *unixLock) Close() error {
	if l == nil || l.f == nil {
		return nil
	}

	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)

	return l.f.Close()
}
