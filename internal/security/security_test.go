package security

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"secureformat/internal/config"
	"secureformat/internal/system"
)

func TestChecksWithoutAdminRequirement(t *testing.T) {
	cfg := config.Default()
	cfg.Security.RequireAdmin = false
	if err := Checks(cfg); err != nil {
		t.Fatalf("Checks() error = %v", err)
	}
}

func TestChecksRequireAdmin(t *testing.T) {
	cfg := config.Default()
	cfg.Security.RequireAdmin = true
	err := Checks(cfg)
	if IsAdmin() && err != nil {
		t.Fatalf("Checks() as admin error = %v", err)
	}
	if !IsAdmin() && err == nil {
		t.Fatal("Checks() without admin should fail")
	}
}

func TestShouldSkipDrive(t *testing.T) {
	cfg := config.Default()
	cfg.Security.ExcludedDevices = []string{"/dev/sdb", "e:"}

	tests := []struct {
		name        string
		drive       system.Drive
		allowSystem bool
		skip        bool
		reason      string
	}{
		{"plain", system.Drive{ID: "sdc", Kind: system.KindPhysical, Device: "/dev/sdc"}, false, false, ""},
		{"excluded device", system.Drive{ID: "sdb", Kind: system.KindPhysical, Device: "/dev/sdb"}, false, true, "excluded by configuration"},
		{"excluded letter", system.Drive{ID: "E:", Kind: system.KindLogical, Device: `E:\`}, false, true, "excluded by configuration"},
		{"system", system.Drive{ID: "sda", Kind: system.KindPhysical, Device: "/dev/sda", System: true}, false, true, "system drive"},
		{"system allowed", system.Drive{ID: "sda", Kind: system.KindPhysical, Device: "/dev/sda", System: true}, true, false, ""},
		{"excluded beats allow", system.Drive{ID: "sdb", Kind: system.KindPhysical, Device: "/dev/sdb", System: true}, true, true, "excluded by configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, reason := ShouldSkipDrive(cfg, tt.drive, tt.allowSystem)
			if skip != tt.skip || reason != tt.reason {
				t.Errorf("ShouldSkipDrive() = %v, %q; want %v, %q", skip, reason, tt.skip, tt.reason)
			}
		})
	}
}

func TestShouldSkipDriveNilConfig(t *testing.T) {
	skip, _ := ShouldSkipDrive(nil, system.Drive{ID: "x", Kind: system.KindRaw, Device: "x"}, false)
	if skip {
		t.Error("nil config should not exclude a non-system drive")
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"confirmed", "ERASE\ny\n", true},
		{"confirmed without trailing newline", "ERASE\nY", true},
		{"wrong word", "erase\ny\n", false},
		{"declined", "ERASE\nn\n", false},
		{"empty", "", false},
		{"word only", "ERASE\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Confirm(strings.NewReader(tt.input), &out, "/dev/sdz")
			if tt.ok && err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrNotConfirmed) {
				t.Fatalf("Confirm() error = %v, want ErrNotConfirmed", err)
			}
			if !strings.Contains(out.String(), "/dev/sdz") {
				t.Errorf("prompt does not name the target: %q", out.String())
			}
		})
	}
}
