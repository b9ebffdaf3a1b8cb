package main

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"secureformat/internal/config"
	"secureformat/internal/system"
	"secureformat/internal/wipe"
)

func testDrives() []system.Drive {
	return []system.Drive{
		{ID: "physical-/dev/sda", Kind: system.KindPhysical, Device: "/dev/sda", Model: "Root Disk", System: true},
		{ID: "physical-/dev/sdb", Kind: system.KindPhysical, Device: "/dev/sdb", Model: "USB Stick"},
		{ID: `logical-E:\`, Kind: system.KindLogical, Device: `E:\`},
	}
}

func TestFindDrive(t *testing.T) {
	drives := testDrives()
	tests := []struct {
		name   string
		device string
		want   string
	}{
		{"device path", "/dev/sdb", "/dev/sdb"},
		{"id", "physical-/dev/sda", "/dev/sda"},
		{"letter", "e:", `E:\`},
		{"letter with slash", "E:/", `E:\`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := findDrive(drives, tt.device)
			if err != nil {
				t.Fatalf("findDrive(%q) error = %v", tt.device, err)
			}
			if d.Device != tt.want {
				t.Errorf("findDrive(%q) = %q, want %q", tt.device, d.Device, tt.want)
			}
		})
	}

	if _, err := findDrive(drives, "/dev/nope"); err == nil {
		t.Error("expected error for unknown drive")
	}
}

func TestEligibleDrives(t *testing.T) {
	cfg = config.Default()
	cfg.Security.ExcludedDevices = []string{"E:"}
	defer func() { cfg = nil }()

	got := eligibleDrives(testDrives(), false)
	if len(got) != 1 || got[0].Device != "/dev/sdb" {
		t.Fatalf("eligibleDrives() = %+v", got)
	}

	got = eligibleDrives(testDrives(), true)
	if len(got) != 2 {
		t.Fatalf("eligibleDrives(allowSystem) returned %d drives, want 2", len(got))
	}
}

func TestSelectDrive(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("abc\n9\n2\n"))

	d, err := selectDrive(in, &out, testDrives())
	if err != nil {
		t.Fatalf("selectDrive() error = %v", err)
	}
	if d.Device != "/dev/sdb" {
		t.Errorf("selected %q, want /dev/sdb", d.Device)
	}
	if strings.Count(out.String(), "Please enter a number between 1 and 3") != 2 {
		t.Errorf("expected two re-prompts, got output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), " 2. /dev/sdb - USB Stick") {
		t.Errorf("drive list missing label:\n%s", out.String())
	}
}

func TestSelectDriveQuit(t *testing.T) {
	for _, input := range []string{"q\n", ""} {
		in := bufio.NewReader(strings.NewReader(input))
		_, err := selectDrive(in, &bytes.Buffer{}, testDrives())
		if !errors.Is(err, errCancelled) {
			t.Errorf("input %q: error = %v, want errCancelled", input, err)
		}
	}
}

func TestSelectPasses(t *testing.T) {
	tests := map[string]int{"1\n": 1, "2\n": 3, "3": 7}
	for input, want := range tests {
		got, err := selectPasses(bufio.NewReader(strings.NewReader(input)), &bytes.Buffer{})
		if err != nil {
			t.Fatalf("selectPasses(%q) error = %v", input, err)
		}
		if got != want {
			t.Errorf("selectPasses(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestApplyWipeFlags(t *testing.T) {
	c := config.Default()
	wipeCmd.Flags().Set("passes", "7")
	wipeCmd.Flags().Set("method", "dod5220")
	wipeCmd.Flags().Set("fail-fast", "true")
	defer func() {
		wipeCmd.Flags().Set("passes", "0")
		wipeCmd.Flags().Set("method", "")
		wipeCmd.Flags().Set("fail-fast", "false")
		for _, name := range []string{"passes", "method", "fail-fast"} {
			wipeCmd.Flags().Lookup(name).Changed = false
		}
	}()

	if err := applyWipeFlags(wipeCmd, c); err != nil {
		t.Fatalf("applyWipeFlags() error = %v", err)
	}
	if c.Wipe.Passes != 7 || c.Wipe.Method != config.MethodDOD5220 || c.Wipe.OnError != config.OnErrorAbort {
		t.Errorf("wipe settings = %+v", c.Wipe)
	}
}

func TestApplyWipeFlagsRejectsPasses(t *testing.T) {
	c := config.Default()
	wipeCmd.Flags().Set("passes", "2")
	defer func() {
		wipeCmd.Flags().Set("passes", "0")
		wipeCmd.Flags().Lookup("passes").Changed = false
	}()

	if err := applyWipeFlags(wipeCmd, c); err == nil {
		t.Error("expected error for 2 passes")
	}
	if c.Wipe.Passes != 3 {
		t.Errorf("passes changed to %d on error", c.Wipe.Passes)
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		width, percent int
		want           string
	}{
		{80, 0, "Progress: |" + strings.Repeat("-", 50) + "|   0%"},
		{80, 50, "Progress: |" + strings.Repeat("#", 25) + strings.Repeat("-", 25) + "|  50%"},
		{80, 120, "Progress: |" + strings.Repeat("#", 50) + "| 100%"},
		{5, 100, "Progress: |" + strings.Repeat("#", 10) + "| 100%"},
	}
	for _, tt := range tests {
		if got := renderBar(tt.width, tt.percent); got != tt.want {
			t.Errorf("renderBar(%d, %d) = %q, want %q", tt.width, tt.percent, got, tt.want)
		}
	}
}

func TestProgressConsumeNonTTY(t *testing.T) {
	var out bytes.Buffer
	events := make(chan wipe.Event, 4)
	events <- wipe.Event{Kind: wipe.EventStatus, Message: "Preparing target"}
	events <- wipe.Event{Kind: wipe.EventProgress, Percent: 3}
	events <- wipe.Event{Kind: wipe.EventStatus, Message: "Final formatting"}
	close(events)

	newProgress(&out).Consume(events)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out.String())
	}
	if !strings.HasSuffix(lines[1], "Final formatting") {
		t.Errorf("unexpected line %q", lines[1])
	}
}

func TestChooseTarget(t *testing.T) {
	cfg = config.Default()
	defer func() { cfg = nil }()

	t.Run("menu with passes", func(t *testing.T) {
		in := bufio.NewReader(strings.NewReader("1\n3\n"))
		d, err := chooseTarget(in, &bytes.Buffer{}, testDrives(), nil, true)
		if err != nil {
			t.Fatalf("chooseTarget() error = %v", err)
		}
		// the system disk is not offered, so entry 1 is the USB stick
		if d == nil || d.Device != "/dev/sdb" {
			t.Fatalf("chooseTarget() = %+v", d)
		}
		if cfg.Wipe.Passes != 7 {
			t.Errorf("Passes = %d, want 7", cfg.Wipe.Passes)
		}
	})

	t.Run("named system drive refused", func(t *testing.T) {
		_, err := chooseTarget(bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}, testDrives(), []string{"/dev/sda"}, false)
		if err == nil || !strings.Contains(err.Error(), "system drive") {
			t.Errorf("chooseTarget() error = %v", err)
		}
	})

	t.Run("nothing to choose", func(t *testing.T) {
		d, err := chooseTarget(bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}, testDrives()[:1], nil, false)
		if d != nil || err != nil {
			t.Errorf("chooseTarget() = %+v, %v; want nil, nil", d, err)
		}
	})
}

func TestExecuteClosesLoggerOnError(t *testing.T) {
	dir := t.TempDir()
	c := config.Default()
	c.Logging.File = filepath.Join(dir, "run.log")
	cfgFile := filepath.Join(dir, "secureformat.yaml")
	if err := config.Save(c, cfgFile); err != nil {
		t.Fatal(err)
	}
	defer func() {
		configPath = ""
		cfg = nil
		wipeCmd.Flags().Set("passes", "0")
		wipeCmd.Flags().Lookup("passes").Changed = false
	}()

	code := execute([]string{"wipe", "--config", cfgFile, "--passes", "2"})

	if code != EXIT_ERROR {
		t.Errorf("execute() = %d, want %d", code, EXIT_ERROR)
	}
	if logger != nil {
		t.Error("logger left open after a failed run")
	}
	if _, err := os.Stat(c.Logging.File); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}
