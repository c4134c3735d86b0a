package fsx

import "errors"

// ErrWouldBlock indicates a lock is already held by another writer.
var ErrWouldBlock = errors.New("fsx: lock would block")

// Lock is a held writer-exclusivity token. Release it with [Lock.Close].
type Lock interface {
	Close() error
}

// Locker acquires the cross-process single-writer token described in
// mmlist's design: at most one process may hold the lock for a given data
// path at any instant.
//
// Two strategies satisfy this interface, selected at build time by GOOS:
//   - unixLocker (lock_unix.go): a sidecar file at path+".lock", exclusive
//     non-blocking flock via golang.org/x/sys/unix.
//   - windowsLocker (lock_windows.go): a native exclusive, non-blocking
//     region lock taken directly on the data file via
//     golang.org/x/sys/windows.LockFileEx — no sidecar file needed.
type Locker interface {
	// TryLock attempts to acquire the writer lock for path without blocking.
	// Returns ErrWouldBlock if another process already holds it.
	TryLock(path string) (Lock, error)
}
