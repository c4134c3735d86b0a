package fsx

// PresencePath returns the sidecar file a List handle locks in shared mode
// for as long as it holds a mapped view of dataPath, so a writer can tell
// whether shrinking the file would invalidate another holder's larger view
// (spec.md §4.1: "if ... any other process still holds the file, the
// shrink is downgraded to a no-op").
func PresencePath(dataPath string) string { return dataPath + ".presence" }

// Presence is a held shared-presence token for one open List handle.
type Presence interface {
	// OtherHolders reports whether any handle besides this one — in this
	// process or another — currently holds a presence token for the same
	// file. Implementations detect this by attempting a non-blocking
	// upgrade of their own token to exclusive and immediately releasing it
	// back to shared: the upgrade only fails when some other open file
	// description also holds the shared lock.
	OtherHolders() (bool, error)
	Close() error
}
