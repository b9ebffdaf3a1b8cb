package system

import "strings"

// IsDiskFull reports whether err means the target filesystem ran out of
// space. Free-space overwrites treat this as normal completion.
func IsDiskFull(err error) bool {
	if err == nil {
		return false
	}
	if isDiskFullErrno(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "not enough space") ||
		strings.Contains(msg, "no space left")
}
