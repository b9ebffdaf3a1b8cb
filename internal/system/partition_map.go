package system

import (
	"regexp"
	"strconv"
)

// DiskPartitionLink is one Win32_LogicalDiskToPartition association. Both
// fields are WMI object paths.
type DiskPartitionLink struct {
	Antecedent string
	Dependent  string
}

var (
	partitionDiskRe = regexp.MustCompile(`Disk #(\d+), Partition #\d+`)
	logicalDiskRe   = regexp.MustCompile(`DeviceID="([A-Za-z]:)"`)
)

// LetterDiskIndexes maps drive letters ("C:") to the index of the physical
// disk holding them. Links that cannot be parsed are ignored.
func LetterDiskIndexes(links []DiskPartitionLink) map[string]int {
	out := make(map[string]int, len(links))
	for _, l := range links {
		disk := partitionDiskRe.FindStringSubmatch(l.Antecedent)
		letter := logicalDiskRe.FindStringSubmatch(l.Dependent)
		if disk == nil || letter == nil {
			continue
		}
		idx, err := strconv.Atoi(disk[1])
		if err != nil {
			continue
		}
		out[DriveLetter(letter[1])] = idx
	}
	return out
}
