package system

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = map[byte]float64{
	'B': 1,
	'K': 1024,
	'M': 1024 * 1024,
	'G': 1024 * 1024 * 1024,
	'T': 1024 * 1024 * 1024 * 1024,
}

// ParseSize converts lsblk-style human sizes ("500G", "1.5T", "512", "931.5GiB")
// to bytes using 1024-based units.
func ParseSize(s string) (uint64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	s = strings.TrimSuffix(s, "IB")
	if len(s) > 1 && s[len(s)-1] == 'B' {
		if _, ok := sizeUnits[s[len(s)-2]]; ok {
			s = s[:len(s)-1]
		}
	}

	mult := 1.0
	if m, ok := sizeUnits[s[len(s)-1]]; ok {
		mult = m
		s = strings.TrimSpace(s[:len(s)-1])
	}

	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative size %q", s)
	}
	return uint64(n * mult), nil
}
