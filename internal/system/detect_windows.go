//go:build windows

package system

import (
	"context"
	"fmt"
	"time"

	"github.com/yusufpapurcu/wmi"
	"golang.org/x/sys/windows"

	"secureformat/internal/shell"
)

const (
	powershellTimeout = 15 * time.Second
	maxRawProbe       = 32
)

// DefaultDetectors returns PowerShell with a WMI fallback, raw
// \\.\PhysicalDriveN probing and logical drive letters.
func DefaultDetectors(runner shell.Runner) []Detector {
	return []Detector{
		FirstOf("physical",
			DetectorFunc{Label: "powershell", Fn: func(ctx context.Context) ([]Drive, error) {
				res, err := runner.Run(ctx, shell.Command{
					Name:    "powershell",
					Args:    []string{"-NoProfile", "-Command", PhysicalDiskQuery},
					Timeout: powershellTimeout,
				})
				if err != nil {
					return nil, err
				}
				return ParsePhysicalDisks([]byte(res.Output))
			}},
			DetectorFunc{Label: "wmi", Fn: detectWMI},
		),
		DetectorFunc{Label: "raw-probe", Fn: detectRaw},
		DetectorFunc{Label: "logical", Fn: detectLogical},
	}
}

// Win32_DiskDrive
type win32DiskDrive struct {
	DeviceID string
	Index    uint32
	Model    string
	Caption  string
	Size     *uint64
}

func detectWMI(ctx context.Context) ([]Drive, error) {
	var disks []win32DiskDrive
	q := wmi.CreateQuery(&disks, "", "Win32_DiskDrive")
	if err := wmi.Query(q, &disks); err != nil {
		return nil, fmt.Errorf("wmi query failed: %w", err)
	}

	drives := make([]Drive, 0, len(disks))
	for _, disk := range disks {
		model := disk.Caption
		if model == "" {
			model = disk.Model
		}
		if model == "" {
			model = "Physical Disk"
		}
		idx := int(disk.Index)
		d := Drive{
			ID:     fmt.Sprintf("physical-%d", idx),
			Kind:   KindPhysical,
			Device: disk.DeviceID,
			Model:  model,
			Index:  intPtr(idx),
		}
		if d.Device == "" {
			d.Device = PhysicalDrivePath(idx)
		}
		if disk.Size != nil {
			d.SizeBytes = *disk.Size
			d.SizeGB = int64Ptr(gib(*disk.Size))
		}
		d.Display = d.Label()
		drives = append(drives, d)
	}
	return drives, nil
}

func detectRaw(ctx context.Context) ([]Drive, error) {
	var drives []Drive
	for i := 0; i < maxRawProbe; i++ {
		select {
		case <-ctx.Done():
			return drives, ctx.Err()
		default:
		}

		path := PhysicalDrivePath(i)
		p, err := windows.UTF16PtrFromString(path)
		if err != nil {
			continue
		}
		h, err := windows.CreateFile(p, 0, windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE, nil, windows.OPEN_EXISTING, 0, 0)
		if err != nil {
			continue
		}
		windows.CloseHandle(h)

		d := Drive{
			ID:     fmt.Sprintf("raw-%d", i),
			Kind:   KindRaw,
			Device: path,
			Index:  intPtr(i),
		}
		d.Display = d.Label()
		drives = append(drives, d)
	}
	return drives, nil
}

// letterDisks maps drive letters to physical disk indexes through WMI. A
// failed query yields an empty map.
func letterDisks() map[string]int {
	var links []DiskPartitionLink
	q := wmi.CreateQuery(&links, "", "Win32_LogicalDiskToPartition")
	if err := wmi.Query(q, &links); err != nil {
		return map[string]int{}
	}
	return LetterDiskIndexes(links)
}

func detectLogical(ctx context.Context) ([]Drive, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("GetLogicalDrives failed: %w", err)
	}

	systemDrive := SystemDrive()
	disks := letterDisks()
	var drives []Drive
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		letter := string(rune('A'+i)) + ":"
		root := letter + `\`
		var typeName string
		switch windows.GetDriveType(windows.StringToUTF16Ptr(root)) {
		case windows.DRIVE_FIXED:
			typeName = "Fixed Drive"
		case windows.DRIVE_REMOVABLE:
			typeName = "Removable Drive"
		default:
			continue
		}

		d := Drive{
			ID:     "logical-" + root,
			Kind:   KindLogical,
			Device: root,
			Model:  typeName,
			System: letter == systemDrive,
		}
		if idx, ok := disks[letter]; ok {
			d.ParentPhysical = PhysicalDrivePath(idx)
		}
		if _, total, err := diskSpace(root); err == nil && total > 0 {
			d.SizeBytes = total
			d.SizeGB = int64Ptr(gib(total))
		}
		d.Display = d.Label()
		drives = append(drives, d)
	}
	return drives, nil
}
