package system

import (
	"os"
	"strings"
)

// SystemDrive returns the drive letter hosting Windows ("C:"), derived from
// %SystemDrive% or %WINDIR%.
func SystemDrive() string {
	if sd := DriveLetter(os.Getenv("SystemDrive")); sd != "" {
		return sd
	}
	windir := os.Getenv("WINDIR")
	if len(windir) >= 2 {
		if sd := DriveLetter(windir[:2]); sd != "" {
			return sd
		}
	}
	return "C:"
}

// MarkSystem flags descriptors that host the running OS: the partition
// mounted at "/", the Windows system letter, and the disk behind either.
func MarkSystem(drives []Drive, windowsSystemDrive string) {
	parents := make(map[string]bool)
	for i := range drives {
		d := &drives[i]
		if d.Mountpoint == "/" {
			d.System = true
		}
		if d.Kind == KindLogical && windowsSystemDrive != "" && strings.EqualFold(DriveLetter(d.Device), windowsSystemDrive) {
			d.System = true
		}
		if d.System && d.ParentPhysical != "" {
			parents[strings.ToLower(d.ParentPhysical)] = true
		}
	}
	for i := range drives {
		if parents[strings.ToLower(drives[i].Device)] {
			drives[i].System = true
		}
	}
}
