//go:build linux

package system

import (
	"context"
	"os"
	"time"

	"secureformat/internal/shell"
)

const lsblkTimeout = 10 * time.Second

// DefaultDetectors returns lsblk with a /proc/partitions fallback.
func DefaultDetectors(runner shell.Runner) []Detector {
	return []Detector{
		FirstOf("linux",
			DetectorFunc{Label: "lsblk", Fn: func(ctx context.Context) ([]Drive, error) {
				res, err := runner.Run(ctx, shell.Command{Name: "lsblk", Args: LsblkArgs, Timeout: lsblkTimeout})
				if err != nil {
					return nil, err
				}
				return ParseLsblk([]byte(res.Output))
			}},
			DetectorFunc{Label: "proc-partitions", Fn: func(ctx context.Context) ([]Drive, error) {
				data, err := os.ReadFile("/proc/partitions")
				if err != nil {
					return nil, err
				}
				return ParseProcPartitions(data), nil
			}},
		),
	}
}
