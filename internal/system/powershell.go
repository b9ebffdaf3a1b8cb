package system

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PhysicalDiskQuery is the PowerShell query used for physical disks.
const PhysicalDiskQuery = "Get-PhysicalDisk | ConvertTo-Json -Depth 2"

type psPhysicalDisk struct {
	FriendlyName string          `json:"FriendlyName"`
	DeviceID     json.RawMessage `json:"DeviceId"`
	Size         uint64          `json:"Size"`
}

// ParsePhysicalDisks turns `Get-PhysicalDisk | ConvertTo-Json` output into
// physical descriptors. PowerShell emits a bare object for a single disk.
func ParsePhysicalDisks(data []byte) ([]Drive, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty Get-PhysicalDisk output")
	}

	var disks []psPhysicalDisk
	if data[0] == '{' {
		var one psPhysicalDisk
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("failed to parse Get-PhysicalDisk output: %w", err)
		}
		disks = []psPhysicalDisk{one}
	} else if err := json.Unmarshal(data, &disks); err != nil {
		return nil, fmt.Errorf("failed to parse Get-PhysicalDisk output: %w", err)
	}

	drives := make([]Drive, 0, len(disks))
	for _, disk := range disks {
		idx, err := parseDeviceID(disk.DeviceID)
		if err != nil {
			continue
		}
		model := strings.TrimSpace(disk.FriendlyName)
		if model == "" {
			model = "Unknown Drive"
		}
		d := Drive{
			ID:        fmt.Sprintf("physical-%d", idx),
			Kind:      KindPhysical,
			Device:    PhysicalDrivePath(idx),
			Model:     model,
			Index:     intPtr(idx),
			SizeGB:    int64Ptr(gib(disk.Size)),
			SizeBytes: disk.Size,
		}
		d.Display = d.Label()
		drives = append(drives, d)
	}
	return drives, nil
}

func parseDeviceID(raw json.RawMessage) (int, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, fmt.Errorf("missing DeviceId")
	}
	return strconv.Atoi(s)
}
