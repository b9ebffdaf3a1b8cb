package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"secureformat/internal/config"
	"secureformat/internal/system"
	"secureformat/internal/wipe"
)

// Report is the JSON record of one wipe run.
type Report struct {
	RunID       string            `json:"run_id"`
	Version     string            `json:"version"`
	Timestamp   time.Time         `json:"timestamp"`
	Profile     string            `json:"profile,omitempty"`
	Simulate    bool              `json:"simulate"`
	Target      TargetReport      `json:"target"`
	Passes      int               `json:"passes"`
	Method      string            `json:"method"`
	OnError     string            `json:"on_error"`
	Status      string            `json:"status"`
	Steps       []wipe.StepResult `json:"steps"`
	Errors      []ErrorReport     `json:"errors,omitempty"`
	Certificate string            `json:"certificate,omitempty"`
	Stats       wipe.Stats        `json:"stats"`
	Duration    string            `json:"duration"`
	ExitCode    int               `json:"exit_code"`
}

// TargetReport describes the wiped drive.
type TargetReport struct {
	Label  string      `json:"label"`
	Kind   system.Kind `json:"kind"`
	Device string      `json:"device"`
	SizeGB *int64      `json:"size_gb,omitempty"`
}

// ErrorReport is one recorded step error.
type ErrorReport struct {
	Kind    string `json:"kind"`
	Step    string `json:"step,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Meta carries run parameters that are not part of the outcome.
type Meta struct {
	Version  string
	Profile  string
	Simulate bool
	ExitCode int
}

// GenerateReport builds the report of one run.
func GenerateReport(job wipe.Job, outcome *wipe.Outcome, cfg *config.Config, meta Meta) (*Report, error) {
	if outcome == nil {
		return nil, fmt.Errorf("no outcome to report")
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Version:   meta.Version,
		Timestamp: outcome.Started,
		Profile:   meta.Profile,
		Simulate:  meta.Simulate,
		Target: TargetReport{
			Label:  job.Target.Label(),
			Kind:   job.Target.Kind,
			Device: job.Target.Device,
			SizeGB: job.Target.SizeGB,
		},
		Passes:      job.Passes,
		Method:      outcome.Method,
		Status:      string(outcome.Status),
		Steps:       outcome.Steps,
		Certificate: outcome.Certificate,
		Stats:       outcome.Stats,
		Duration:    outcome.Duration().String(),
		ExitCode:    meta.ExitCode,
	}
	if cfg != nil {
		report.OnError = cfg.Wipe.OnError
	}

	for _, e := range outcome.Errors {
		report.Errors = append(report.Errors, ErrorReport{
			Kind:    string(e.Kind),
			Step:    string(e.Step),
			Path:    e.Path,
			Message: e.Error(),
		})
	}
	if len(outcome.Errors) == 0 && outcome.Err != nil {
		report.Errors = append(report.Errors, ErrorReport{
			Kind:    "run",
			Message: outcome.Err.Error(),
		})
	}

	return report, nil
}

// FileName returns the report file name for ts.
func FileName(ts time.Time) string {
	return fmt.Sprintf("secureformat_report_%s.json", ts.Format("20060102_150405"))
}

// SaveReport writes the report to the configured directory and returns its
// path. It does nothing when reporting is disabled.
func SaveReport(report *Report, cfg *config.Config) (string, error) {
	if !cfg.Reporting.Enabled {
		return "", nil
	}

	if err := os.MkdirAll(cfg.Reporting.LocalPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(cfg.Reporting.LocalPath, FileName(report.Timestamp))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
