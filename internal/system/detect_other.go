//go:build !linux && !windows

package system

import "secureformat/internal/shell"

// DefaultDetectors returns no detectors on unsupported platforms.
func DefaultDetectors(runner shell.Runner) []Detector {
	return nil
}
