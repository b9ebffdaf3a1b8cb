package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Wipe.OnError != OnErrorContinue {
		t.Errorf("default on_error = %q, want %q", cfg.Wipe.OnError, OnErrorContinue)
	}
	if cfg.StepTick() != 50*time.Millisecond {
		t.Errorf("StepTick() = %v, want 50ms", cfg.StepTick())
	}
	if cfg.DiskCleanTimeout() != 10*time.Minute {
		t.Errorf("DiskCleanTimeout() = %v, want 10m", cfg.DiskCleanTimeout())
	}
	if cfg.CommandTimeout() != 0 {
		t.Errorf("CommandTimeout() = %v, want 0", cfg.CommandTimeout())
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Wipe.Passes != Default().Wipe.Passes {
		t.Errorf("Passes = %d, want default", cfg.Wipe.Passes)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "wipe:\n  passes: 7\n  on_error: abort\nbranding:\n  company_name: Acme\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Wipe.Passes != 7 {
		t.Errorf("Passes = %d, want 7", cfg.Wipe.Passes)
	}
	if cfg.Wipe.OnError != OnErrorAbort {
		t.Errorf("OnError = %q, want abort", cfg.Wipe.OnError)
	}
	if cfg.Branding.CompanyName != "Acme" {
		t.Errorf("CompanyName = %q, want Acme", cfg.Branding.CompanyName)
	}
	if cfg.Wipe.Method != MethodRandom {
		t.Errorf("Method = %q, want default %q", cfg.Wipe.Method, MethodRandom)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("wipe:\n  passes: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for passes=2")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"passes", func(c *Config) { c.Wipe.Passes = 4 }, "passes"},
		{"method", func(c *Config) { c.Wipe.Method = "gutmann" }, "wipe method"},
		{"on_error", func(c *Config) { c.Wipe.OnError = "retry" }, "on_error"},
		{"chunk", func(c *Config) { c.Wipe.ChunkSize = 0 }, "chunk size"},
		{"speed", func(c *Config) { c.Wipe.MaxSpeedMBps = -1 }, "max speed"},
		{"timeout", func(c *Config) { c.Wipe.CommandTimeout = "soon" }, "command_timeout"},
		{"junk", func(c *Config) { c.Wipe.JunkFiles = 99 }, "junk files"},
		{"level", func(c *Config) { c.Logging.Level = "TRACE" }, "log level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
		{"company", func(c *Config) { c.Branding.CompanyName = " " }, "company"},
		{"excluded", func(c *Config) { c.Security.ExcludedDevices = []string{""} }, "excluded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q does not mention %q", err, tt.errSub)
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Wipe.Passes = 1
	cfg.Security.ExcludedDevices = []string{"/dev/sda"}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Wipe.Passes != 1 || len(loaded.Security.ExcludedDevices) != 1 {
		t.Errorf("loaded config does not match saved: %+v", loaded)
	}
}

func TestApplyProfile(t *testing.T) {
	tests := []struct {
		profile string
		passes  int
		method  string
		onError string
	}{
		{"quick", 1, MethodZero, OnErrorContinue},
		{"standard", 3, MethodRandom, OnErrorContinue},
		{"paranoid", 7, MethodDOD5220, OnErrorAbort},
	}

	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			cfg := Default()
			if err := ApplyProfile(cfg, tt.profile); err != nil {
				t.Fatalf("ApplyProfile() error = %v", err)
			}
			if cfg.Wipe.Passes != tt.passes || cfg.Wipe.Method != tt.method || cfg.Wipe.OnError != tt.onError {
				t.Errorf("got passes=%d method=%s on_error=%s", cfg.Wipe.Passes, cfg.Wipe.Method, cfg.Wipe.OnError)
			}
			if err := Validate(cfg); err != nil {
				t.Errorf("profile produced invalid config: %v", err)
			}
		})
	}

	if err := ApplyProfile(Default(), "turbo"); err == nil {
		t.Error("expected error for unknown profile")
	}
	if got := Profiles(); len(got) != 3 || got[0] != "paranoid" {
		t.Errorf("Profiles() = %v", got)
	}
}
