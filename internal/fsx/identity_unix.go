//go:build !windows

package fsx

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Identity uniquely identifies an open file by device and inode, used to key
// the in-process file registry (mmlist §5) so multiple List handles on the
// same file within one process share a single coordination entry.
type Identity struct {
	Dev uint64
	Ino uint64
}

// IdentityOf returns the [Identity] for an open file descriptor.
func IdentityOf(fd uintptr) (Identity, error) {
	var stat unix.Stat_t

	err := unix.Fstat(int(fd), &stat)
	if err != nil {
		return Identity{}, fmt.Errorf("fsx: fstat: %w", err)
	}

	return Identity{Dev: uint64(stat.Dev), Ino: stat.Ino}, nil
}
