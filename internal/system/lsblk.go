package system

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LsblkArgs are the arguments passed to lsblk.
var LsblkArgs = []string{"-J", "-b", "-o", "NAME,SIZE,TYPE,MOUNTPOINT,MODEL"}

type lsblkOutput struct {
	BlockDevices []lsblkDevice `json:"blockdevices"`
}

type lsblkDevice struct {
	Name       string        `json:"name"`
	Size       lsblkSize     `json:"size"`
	Type       string        `json:"type"`
	Mountpoint *string       `json:"mountpoint"`
	Model      *string       `json:"model"`
	Children   []lsblkDevice `json:"children"`
}

// lsblkSize accepts both the numeric form printed with -b and the human
// form ("500G") printed by older lsblk builds.
type lsblkSize uint64

func (s *lsblkSize) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" || raw == `""` {
		*s = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		str, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		n, err := ParseSize(str)
		if err != nil {
			return err
		}
		*s = lsblkSize(n)
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid lsblk size %s: %w", raw, err)
	}
	*s = lsblkSize(n)
	return nil
}

// ParseLsblk turns `lsblk -J` output into descriptors: disks become physical
// drives and their partitions logical drives.
func ParseLsblk(data []byte) ([]Drive, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty lsblk output")
	}

	var out lsblkOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse lsblk output: %w", err)
	}

	var drives []Drive
	for _, dev := range out.BlockDevices {
		if dev.Type != "disk" {
			continue
		}

		disk := Drive{
			ID:        "physical-/dev/" + dev.Name,
			Kind:      KindPhysical,
			Device:    "/dev/" + dev.Name,
			Model:     "Unknown Device",
			SizeGB:    int64Ptr(gib(uint64(dev.Size))),
			SizeBytes: uint64(dev.Size),
		}
		if dev.Model != nil && strings.TrimSpace(*dev.Model) != "" {
			disk.Model = strings.TrimSpace(*dev.Model)
		}
		if hasRootMount(dev) {
			disk.System = true
		}

		var parts []Drive
		for _, child := range dev.Children {
			if child.Type != "part" {
				continue
			}
			part := Drive{
				ID:             "logical-/dev/" + child.Name,
				Kind:           KindLogical,
				Device:         "/dev/" + child.Name,
				ParentPhysical: disk.Device,
				SizeGB:         int64Ptr(gib(uint64(child.Size))),
				SizeBytes:      uint64(child.Size),
			}
			if child.Mountpoint != nil && strings.HasPrefix(*child.Mountpoint, "/") {
				part.Mountpoint = *child.Mountpoint
			}
			if hasRootMount(child) {
				part.System = true
				disk.System = true
			}
			part.Display = part.Label()
			parts = append(parts, part)
		}

		disk.Display = disk.Label()
		drives = append(drives, disk)
		drives = append(drives, parts...)
	}

	return drives, nil
}

func isRootMount(mp *string) bool {
	return mp != nil && *mp == "/"
}

// hasRootMount reports whether dev or anything stacked on it (LVM volumes,
// dm-crypt mappings, md arrays) is mounted at "/".
func hasRootMount(dev lsblkDevice) bool {
	if isRootMount(dev.Mountpoint) {
		return true
	}
	for _, child := range dev.Children {
		if hasRootMount(child) {
			return true
		}
	}
	return false
}

var wholeDiskName = regexp.MustCompile(`^(nvme\d+n\d+|mmcblk\d+|[a-z]+)$`)

// ParseProcPartitions lists whole disks from /proc/partitions. Sizes there
// are in 1 KiB blocks.
func ParseProcPartitions(data []byte) []Drive {
	var drives []Drive
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "major" {
			continue
		}
		name := fields[3]
		if !wholeDiskName.MatchString(name) || strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") {
			continue
		}
		blocks, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			continue
		}
		size := blocks * 1024
		d := Drive{
			ID:        "physical-/dev/" + name,
			Kind:      KindPhysical,
			Device:    "/dev/" + name,
			Model:     "Physical Drive",
			SizeGB:    int64Ptr(gib(size)),
			SizeBytes: size,
		}
		d.Display = d.Label()
		drives = append(drives, d)
	}
	return drives
}
