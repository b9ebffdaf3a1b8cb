//go:build !unix && !windows

package security

// IsAdmin always reports false on platforms without a privilege model.
func IsAdmin() bool { return false }
