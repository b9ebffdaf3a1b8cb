package wipe

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"secureformat/internal/shell"
	"secureformat/internal/system"
)

// ScriptPath is replaced in command arguments by the path of the file
// holding Plan.Script.
const ScriptPath = "{script}"

const ddNoSpace = "No space left on device"

// Plan is the ordered list of OS commands for one step.
type Plan struct {
	Commands []shell.Command
	Script   string
}

// Empty reports whether the plan has nothing to run.
func (p Plan) Empty() bool { return len(p.Commands) == 0 }

// CommandPlan returns the commands that implement step for target on the
// configured platform. Steps without OS work return an empty plan.
func (o Options) CommandPlan(target system.Drive, passes int, step StepID) (Plan, error) {
	if step != StepLowLevelClean && step != StepFormat {
		return Plan{}, nil
	}

	switch o.goos() {
	case "windows":
		return o.windowsPlan(target, step)
	case "linux":
		return o.linuxPlan(target, passes, step), nil
	default:
		return Plan{}, fmt.Errorf("no %s command plan for %s", step, o.goos())
	}
}

// DiskpartScript is the diskpart script that cleans and reformats disk index.
func DiskpartScript(index int) string {
	return fmt.Sprintf("select disk %d\nclean\ncreate partition primary\nformat fs=ntfs quick\nassign\nexit\n", index)
}

func (o Options) windowsPlan(target system.Drive, step StepID) (Plan, error) {
	if target.DiskLevel() {
		if step != StepLowLevelClean {
			// diskpart already created and formatted the partition
			return Plan{}, nil
		}
		if target.Index == nil {
			return Plan{}, fmt.Errorf("disk index unknown for %s, diskpart skipped", target.Device)
		}
		return Plan{
			Script: DiskpartScript(*target.Index),
			Commands: []shell.Command{{
				Name:    "diskpart",
				Args:    []string{"/s", ScriptPath},
				Timeout: o.DiskCleanTimeout,
			}},
		}, nil
	}

	if step != StepFormat {
		return Plan{}, nil
	}
	vol := system.DriveLetter(target.Device)
	if vol == "" {
		return Plan{}, fmt.Errorf("cannot format %s: not a drive letter", target.Device)
	}
	return Plan{Commands: []shell.Command{{
		Name:    "format",
		Args:    []string{vol, "/FS:NTFS", "/Q", "/Y"},
		Timeout: o.CommandTimeout,
	}}}, nil
}

func (o Options) linuxPlan(target system.Drive, passes int, step StepID) Plan {
	dev := target.Device
	umount := shell.Command{Name: "umount", Args: []string{dev}, AllowFailure: true, Timeout: o.CommandTimeout}

	if !target.DiskLevel() {
		if step != StepFormat {
			return Plan{}
		}
		return Plan{Commands: []shell.Command{
			umount,
			{Name: "mkfs.ext4", Args: []string{"-F", dev}, Timeout: o.CommandTimeout},
		}}
	}

	if step == StepLowLevelClean {
		cmds := []shell.Command{
			umount,
			{Name: "wipefs", Args: []string{"-a", dev}, Timeout: o.CommandTimeout},
		}
		for p := 0; p < passes; p++ {
			cmds = append(cmds, o.dd("/dev/urandom", target), o.dd("/dev/zero", target))
		}
		return Plan{Commands: cmds}
	}

	return Plan{Commands: []shell.Command{
		{Name: "parted", Args: []string{dev, "--script", "mklabel", "gpt"}, Timeout: o.CommandTimeout},
		{Name: "parted", Args: []string{dev, "--script", "mkpart", "primary", "ext4", "0%", "100%"}, Timeout: o.CommandTimeout},
		{Name: "mkfs.ext4", Args: []string{"-F", PartitionPath(dev, 1)}, Timeout: o.CommandTimeout},
	}}
}

func (o Options) dd(source string, target system.Drive) shell.Command {
	args := []string{"if=" + source, "of=" + target.Device, "bs=1M"}
	if target.SizeBytes > 0 {
		const mib = 1024 * 1024
		count := (target.SizeBytes + mib - 1) / mib
		args = append(args, "count="+strconv.FormatUint(count, 10))
	}
	return shell.Command{
		Name:     "dd",
		Args:     args,
		Timeout:  o.CommandTimeout,
		OKOutput: []string{ddNoSpace},
	}
}

// PartitionPath returns the device node of partition n on dev:
// /dev/sdb -> /dev/sdb1, /dev/nvme0n1 -> /dev/nvme0n1p1.
func PartitionPath(dev string, n int) string {
	if dev == "" {
		return ""
	}
	last := rune(dev[len(dev)-1])
	if unicode.IsDigit(last) {
		return dev + "p" + strconv.Itoa(n)
	}
	return dev + strconv.Itoa(n)
}

func describePlan(p Plan) string {
	lines := make([]string, len(p.Commands))
	for i, c := range p.Commands {
		lines[i] = c.String()
	}
	return strings.Join(lines, "; ")
}
