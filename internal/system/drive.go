package system

import (
	"fmt"
	"strings"
)

// Kind classifies a drive descriptor.
type Kind string

const (
	KindPhysical Kind = "physical"
	KindLogical  Kind = "logical"
	KindRaw      Kind = "raw"
)

// Drive describes one wipeable target. Descriptors are built fresh on every
// enumeration and never persisted.
type Drive struct {
	ID             string `json:"id"`
	Kind           Kind   `json:"kind"`
	Device         string `json:"device"`
	Display        string `json:"display,omitempty"`
	Model          string `json:"model,omitempty"`
	SizeGB         *int64 `json:"size_gb,omitempty"`
	Index          *int   `json:"index,omitempty"`
	Mountpoint     string `json:"mountpoint,omitempty"`
	ParentPhysical string `json:"parent_physical,omitempty"`
	SizeBytes      uint64 `json:"size_bytes,omitempty"`
	System         bool   `json:"system,omitempty"`
}

// Validate reports whether the descriptor can be acted on.
func (d Drive) Validate() error {
	switch d.Kind {
	case KindPhysical, KindLogical, KindRaw:
	case "":
		return fmt.Errorf("drive %q: missing kind", d.Device)
	default:
		return fmt.Errorf("drive %q: unknown kind %q", d.Device, d.Kind)
	}
	if strings.TrimSpace(d.Device) == "" {
		return fmt.Errorf("drive %q: missing device", d.ID)
	}
	return nil
}

// Label returns the display label, deriving one when Display is empty.
func (d Drive) Label() string {
	if d.Display != "" {
		return d.Display
	}

	size := ""
	if d.SizeGB != nil && *d.SizeGB > 0 {
		size = fmt.Sprintf(" (%d GB)", *d.SizeGB)
	}

	switch d.Kind {
	case KindRaw:
		if d.Index != nil {
			return fmt.Sprintf("PhysicalDrive%d - (raw/unpartitioned)", *d.Index)
		}
		return d.Device + " - (raw/unpartitioned)"
	case KindPhysical:
		model := d.Model
		if model == "" {
			model = "Physical Drive"
		}
		if d.Index != nil {
			return fmt.Sprintf("PhysicalDrive%d - %s%s", *d.Index, model, size)
		}
		return fmt.Sprintf("%s - %s%s", d.Device, model, size)
	case KindLogical:
		if d.Mountpoint != "" {
			return fmt.Sprintf("%s - Partition%s - %s", d.Device, size, d.Mountpoint)
		}
		if d.Model != "" {
			return fmt.Sprintf("%s - %s%s", d.Device, d.Model, size)
		}
		return d.Device + " - Logical Drive"
	}
	if d.Device != "" {
		return d.Device
	}
	return d.ID
}

// Root returns the filesystem root used by file-level steps, or "" when the
// descriptor has no mounted filesystem.
func (d Drive) Root() string {
	if d.Kind != KindLogical {
		return ""
	}
	if d.Mountpoint != "" {
		return d.Mountpoint
	}
	if letter := DriveLetter(d.Device); letter != "" {
		return letter + `\`
	}
	return ""
}

// DiskLevel reports whether the descriptor addresses a whole disk.
func (d Drive) DiskLevel() bool {
	return d.Kind == KindPhysical || d.Kind == KindRaw
}

// DriveLetter extracts "E:" from "E:", "E:\" or "e:/"; it returns "" for
// anything else.
func DriveLetter(device string) string {
	dev := strings.TrimRight(device, `\/`)
	if len(dev) != 2 || dev[1] != ':' {
		return ""
	}
	c := dev[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return ""
	}
	return string([]byte{c, ':'})
}

// PhysicalDrivePath returns the Windows device path of disk index.
func PhysicalDrivePath(index int) string {
	return fmt.Sprintf(`\\.\PhysicalDrive%d`, index)
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func gib(bytes uint64) int64 {
	return int64(bytes / (1024 * 1024 * 1024))
}
