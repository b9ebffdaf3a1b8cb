//go:build windows

package system

import (
	"errors"

	"golang.org/x/sys/windows"
)

// FreeSpace returns the bytes available to the caller on the volume holding
// root.
func FreeSpace(root string) (uint64, error) {
	free, _, err := diskSpace(root)
	return free, err
}

func diskSpace(root string) (free, total uint64, err error) {
	p, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return 0, 0, err
	}
	var totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(p, &free, &total, &totalFree); err != nil {
		return 0, 0, err
	}
	return free, total, nil
}

func isDiskFullErrno(err error) bool {
	return errors.Is(err, windows.ERROR_DISK_FULL) || errors.Is(err, windows.ERROR_HANDLE_DISK_FULL)
}
