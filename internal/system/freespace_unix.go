//go:build linux || darwin || freebsd

package system

import (
	"errors"

	"golang.org/x/sys/unix"
)

// FreeSpace returns the bytes available to unprivileged writers on the
// filesystem holding root.
func FreeSpace(root string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(root, &st); err != nil {
		return 0, err
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil
}

func isDiskFullErrno(err error) bool {
	return errors.Is(err, unix.ENOSPC) || errors.Is(err, unix.EDQUOT)
}
