//go:build !linux && !darwin && !freebsd && !windows

package system

import (
	"errors"
	"fmt"
	"runtime"
	"syscall"
)

// FreeSpace is not supported on this platform.
func FreeSpace(root string) (uint64, error) {
	return 0, fmt.Errorf("free space query not supported on %s", runtime.GOOS)
}

func isDiskFullErrno(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}
