//go:build windows

package fsx

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Identity uniquely identifies an open file, used to key the in-process file
// registry (mmlist §5). On windows this is the volume serial number plus the
// 64-bit file index, the native analogue of (device, inode).
type Identity struct {
	Dev uint64
	Ino uint64
}

// IdentityOf returns the [Identity] for an open file handle.
func IdentityOf(fd uintptr) (Identity, error) {
	var info windows.ByHandleFileInformation

	err := windows.GetFileInformationByHandle(windows.Handle(fd), &info)
	if err != nil {
		return Identity{}, fmt.Errorf("fsx: GetFileInformationByHandle: %w", err)
	}

	return Identity{
		Dev: uint64(info.VolumeSerialNumber),
		Ino: uint64(info.FileIndexHigh)<<32 | uint64(info.FileIndexLow),
	}, nil
}
