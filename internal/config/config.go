package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Branding holds the immutable presentation values used on certificates
// and in CLI headers.
type Branding struct {
	AppTitle    string `yaml:"app_title"`
	CompanyName string `yaml:"company_name"`
	LogoFile    string `yaml:"logo_file"`
	CertDir     string `yaml:"cert_dir"`
	FallbackDir string `yaml:"fallback_dir"`
}

// WipeSettings controls the wipe pipeline.
type WipeSettings struct {
	Passes           int     `yaml:"passes"`
	Method           string  `yaml:"method"`
	OnError          string  `yaml:"on_error"`
	StepTickMs       int     `yaml:"step_tick_ms"`
	ChunkSize        int64   `yaml:"chunk_size"`
	MaxSpeedMBps     float64 `yaml:"max_speed_mbps"`
	CommandTimeout   string  `yaml:"command_timeout"`
	DiskCleanTimeout string  `yaml:"disk_clean_timeout"`
	KillOnCancel     bool    `yaml:"kill_on_cancel"`
	JunkFiles        int     `yaml:"junk_files"`
	JunkFileSize     int64   `yaml:"junk_file_size"`
}

// SecuritySettings holds the guard rails applied before a destructive run.
type SecuritySettings struct {
	RequireAdmin        bool     `yaml:"require_admin"`
	RequireConfirmation bool     `yaml:"require_confirmation"`
	ExcludedDevices     []string `yaml:"excluded_devices"`
}

// LoggingSettings configures the logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// ReportingSettings configures JSON run reports.
type ReportingSettings struct {
	Enabled   bool   `yaml:"enabled"`
	LocalPath string `yaml:"local_path"`
}

// Config is the full tool configuration.
type Config struct {
	Branding  Branding          `yaml:"branding"`
	Wipe      WipeSettings      `yaml:"wipe"`
	Security  SecuritySettings  `yaml:"security"`
	Logging   LoggingSettings   `yaml:"logging"`
	Reporting ReportingSettings `yaml:"reporting"`
}

// Wipe method and failure policy names accepted in configuration.
const (
	MethodRandom  = "random"
	MethodZero    = "zero"
	MethodDOD5220 = "dod5220"

	OnErrorContinue = "continue"
	OnErrorAbort    = "abort"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Branding: Branding{
			AppTitle:    "Code Monk — Secure Formatter",
			CompanyName: "Code Monk",
			LogoFile:    "CODE MONK LOGO.png",
			CertDir:     ".",
			FallbackDir: "",
		},
		Wipe: WipeSettings{
			Passes:           3,
			Method:           MethodRandom,
			OnError:          OnErrorContinue,
			StepTickMs:       50,
			ChunkSize:        4 * 1024 * 1024, // 4MB
			MaxSpeedMBps:     0,               // unlimited
			CommandTimeout:   "",
			DiskCleanTimeout: "10m",
			KillOnCancel:     false,
			JunkFiles:        3,
			JunkFileSize:     2 * 1024 * 1024, // 2MB
		},
		Security: SecuritySettings{
			RequireAdmin:        true,
			RequireConfirmation: true,
			ExcludedDevices:     []string{},
		},
		Logging: LoggingSettings{
			Level:  "INFO",
			File:   "",
			Format: "text",
		},
		Reporting: ReportingSettings{
			Enabled:   true,
			LocalPath: "./reports",
		},
	}
}

// Load reads the configuration from path. Fields missing from the file keep
// their default values; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil configuration")
	}

	switch cfg.Wipe.Passes {
	case 1, 3, 7:
	default:
		return fmt.Errorf("passes must be 1, 3 or 7, got %d", cfg.Wipe.Passes)
	}

	validMethods := map[string]bool{
		MethodRandom:  true,
		MethodZero:    true,
		MethodDOD5220: true,
	}
	if !validMethods[cfg.Wipe.Method] {
		return fmt.Errorf("invalid wipe method: %s", cfg.Wipe.Method)
	}

	if cfg.Wipe.OnError != OnErrorContinue && cfg.Wipe.OnError != OnErrorAbort {
		return fmt.Errorf("on_error must be %q or %q, got %q", OnErrorContinue, OnErrorAbort, cfg.Wipe.OnError)
	}

	if cfg.Wipe.StepTickMs < 0 || cfg.Wipe.StepTickMs > 1000 {
		return fmt.Errorf("step tick must be between 0 and 1000ms, got %d", cfg.Wipe.StepTickMs)
	}

	if cfg.Wipe.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", cfg.Wipe.ChunkSize)
	}
	if cfg.Wipe.ChunkSize > 100*1024*1024 { // 100MB max
		return fmt.Errorf("chunk size too large (max 100MB), got %d", cfg.Wipe.ChunkSize)
	}

	if cfg.Wipe.MaxSpeedMBps < 0 {
		return fmt.Errorf("max speed cannot be negative, got %f", cfg.Wipe.MaxSpeedMBps)
	}
	if cfg.Wipe.MaxSpeedMBps > 1000 {
		return fmt.Errorf("max speed too high (max 1000MB/s), got %f", cfg.Wipe.MaxSpeedMBps)
	}

	for name, value := range map[string]string{
		"command_timeout":    cfg.Wipe.CommandTimeout,
		"disk_clean_timeout": cfg.Wipe.DiskCleanTimeout,
	} {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			return fmt.Errorf("invalid %s: %s", name, value)
		}
	}

	if cfg.Wipe.JunkFiles < 0 || cfg.Wipe.JunkFiles > 16 {
		return fmt.Errorf("junk files must be between 0 and 16, got %d", cfg.Wipe.JunkFiles)
	}
	if cfg.Wipe.JunkFileSize < 0 || cfg.Wipe.JunkFileSize > 64*1024*1024 {
		return fmt.Errorf("junk file size must be between 0 and 64MB, got %d", cfg.Wipe.JunkFileSize)
	}

	validLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	}
	if !validLevels[strings.ToUpper(cfg.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "" && cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s", cfg.Logging.Format)
	}

	if strings.TrimSpace(cfg.Branding.CompanyName) == "" {
		return fmt.Errorf("branding company name is empty")
	}

	for _, dev := range cfg.Security.ExcludedDevices {
		if strings.TrimSpace(dev) == "" {
			return fmt.Errorf("empty excluded device")
		}
	}

	return nil
}

// Save writes the configuration to path.
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// StepTick returns the cosmetic delay between progress ticks.
func (cfg *Config) StepTick() time.Duration {
	return time.Duration(cfg.Wipe.StepTickMs) * time.Millisecond
}

// CommandTimeout returns the timeout applied to external commands (0 = none).
func (cfg *Config) CommandTimeout() time.Duration {
	return parseDurationOr(cfg.Wipe.CommandTimeout, 0)
}

// DiskCleanTimeout returns the timeout applied to the disk-level clean
// command.
func (cfg *Config) DiskCleanTimeout() time.Duration {
	return parseDurationOr(cfg.Wipe.DiskCleanTimeout, 10*time.Minute)
}

// CertificateFallbackDir returns the directory used when the certificate
// directory is not writable.
func (cfg *Config) CertificateFallbackDir() string {
	if cfg.Branding.FallbackDir != "" {
		return cfg.Branding.FallbackDir
	}
	return os.TempDir()
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
