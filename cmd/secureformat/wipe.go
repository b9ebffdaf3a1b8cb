package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"secureformat/internal/certificate"
	"secureformat/internal/config"
	"secureformat/internal/reporting"
	"secureformat/internal/security"
	"secureformat/internal/shell"
	"secureformat/internal/system"
	"secureformat/internal/wipe"
)

func runWipe(cmd *cobra.Command, args []string) error {
	simulate, _ := cmd.Flags().GetBool("simulate")
	force, _ := cmd.Flags().GetBool("force")

	if err := applyWipeFlags(cmd, cfg); err != nil {
		return err
	}

	if !simulate {
		if err := security.Checks(cfg); err != nil {
			return err
		}
	}

	logger.Log("INFO", "Starting "+AppName, "version", Version, "simulate", simulate, "profile", profile)

	drives, err := enumerate(context.Background())
	if err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)
	askPasses := !cmd.Flags().Changed("passes") && profile == ""
	target, err := chooseTarget(in, os.Stdout, drives, args, askPasses)
	if err != nil {
		return err
	}
	if target == nil {
		logger.Log("WARN", "No drives available")
		fmt.Println("No drives available.")
		return nil
	}

	job, err := wipe.NewJob(*target, cfg.Wipe.Passes)
	if err != nil {
		return err
	}

	if !force && !simulate && cfg.Security.RequireConfirmation {
		if err := security.Confirm(in, os.Stdout, target.Label()); err != nil {
			if errors.Is(err, security.ErrNotConfirmed) {
				logger.Log("INFO", "Operation cancelled by user")
				fmt.Println("Operation cancelled.")
				return nil
			}
			return err
		}
	}

	// installed only once the prompts are done so Ctrl-C at a prompt exits
	ctx, cancel := signalContext()
	defer cancel()

	opts := wipe.OptionsFromConfig(cfg)
	opts.Simulate = simulate
	runner := &shell.ExecRunner{KillOnCancel: cfg.Wipe.KillOnCancel}
	certs := certificate.NewGenerator(cfg.Branding, cfg.CertificateFallbackDir(), logger)
	orch := wipe.NewOrchestrator(opts, runner, certs, logger)

	logger.Log("INFO", "Wipe started", "target", target.Label(), "passes", job.Passes, "method", string(opts.Method), "on_error", cfg.Wipe.OnError)

	events := make(chan wipe.Event, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		newProgress(os.Stdout).Consume(events)
	}()

	outcome := orch.Run(ctx, job, events)
	close(events)
	<-done

	exitCode := EXIT_SUCCESS
	switch outcome.Status {
	case wipe.StatusFailed:
		exitCode = EXIT_ERROR
	case wipe.StatusCancelled:
		exitCode = EXIT_WARNING
	}

	printOutcome(outcome)
	saveReport(job, outcome, simulate, exitCode)

	switch outcome.Status {
	case wipe.StatusCancelled:
		logger.Log("WARN", "Wipe cancelled", "target", target.Label())
		return fmt.Errorf("%w: %s", errCancelled, target.Label())
	case wipe.StatusFailed:
		logger.Log("ERROR", "Wipe failed", "target", target.Label(), "errors", len(outcome.Errors), "error", outcome.Err)
		return fmt.Errorf("wipe of %s failed: %w", target.Label(), outcome.Err)
	}

	logger.Log("INFO", "Wipe completed", "target", target.Label(), "certificate", outcome.Certificate, "duration", outcome.Duration().String())
	return nil
}

// chooseTarget resolves the drive to wipe: the named device when args is
// set, otherwise the operator's menu choice, in which case the pass count
// is also asked when askPasses is true. A nil drive with a nil error means
// there was nothing to choose from.
func chooseTarget(in *bufio.Reader, out io.Writer, drives []system.Drive, args []string, askPasses bool) (*system.Drive, error) {
	if len(args) > 0 {
		target, err := findDrive(drives, args[0])
		if err != nil {
			return nil, err
		}
		if skip, reason := security.ShouldSkipDrive(cfg, target, allowSystemDisk); skip {
			return nil, fmt.Errorf("refusing to wipe %s: %s", target.Label(), reason)
		}
		return &target, nil
	}

	candidates := eligibleDrives(drives, allowSystemDisk)
	if len(candidates) == 0 {
		return nil, nil
	}
	target, err := selectDrive(in, out, candidates)
	if err != nil {
		return nil, err
	}
	if askPasses {
		passes, err := selectPasses(in, out)
		if err != nil {
			return nil, err
		}
		cfg.Wipe.Passes = passes
	}
	return &target, nil
}

// applyWipeFlags overrides the wipe section with command-line flags.
func applyWipeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("passes") {
		passes, _ := flags.GetInt("passes")
		if !wipe.ValidPasses(passes) {
			return fmt.Errorf("passes must be 1, 3 or 7, got %d", passes)
		}
		cfg.Wipe.Passes = passes
	}
	if flags.Changed("method") {
		method, _ := flags.GetString("method")
		if _, err := wipe.ParseMethod(method); err != nil {
			return err
		}
		cfg.Wipe.Method = method
	}
	if failFast, _ := flags.GetBool("fail-fast"); failFast {
		cfg.Wipe.OnError = config.OnErrorAbort
	}
	return config.Validate(cfg)
}

// eligibleDrives filters out excluded drives and, unless allowed, system
// drives.
func eligibleDrives(drives []system.Drive, allowSystem bool) []system.Drive {
	out := make([]system.Drive, 0, len(drives))
	for _, d := range drives {
		if skip, reason := security.ShouldSkipDrive(cfg, d, allowSystem); skip {
			logger.Log("DEBUG", "Drive skipped", "drive", d.Label(), "reason", reason)
			continue
		}
		out = append(out, d)
	}
	return out
}

// findDrive resolves a command-line device name against the enumerated
// drives. Device paths, IDs and drive letters are accepted.
func findDrive(drives []system.Drive, name string) (system.Drive, error) {
	letter := system.DriveLetter(name)
	for _, d := range drives {
		if strings.EqualFold(d.Device, name) || strings.EqualFold(d.ID, name) {
			return d, nil
		}
		if letter != "" && d.Kind == system.KindLogical && system.DriveLetter(d.Device) == letter {
			return d, nil
		}
	}
	return system.Drive{}, fmt.Errorf("drive %q not found", name)
}

func printOutcome(outcome *wipe.Outcome) {
	fmt.Println()
	fmt.Println("Results:")
	fmt.Println("========")
	for _, s := range outcome.Steps {
		mark := "✓"
		switch s.Status {
		case "FAILED":
			mark = color.RedString("✗")
		case "CANCELLED", "SKIPPED":
			mark = color.YellowString("-")
		}
		fmt.Printf("%s %-45s %s\n", mark, s.Label, s.Status)
	}
	for _, e := range outcome.Errors {
		color.Red("  %v", e)
	}

	switch outcome.Status {
	case wipe.StatusSucceeded:
		color.Green("Operation completed successfully.")
		if outcome.Certificate != "" {
			fmt.Printf("Certificate saved: %s\n", outcome.Certificate)
		}
	case wipe.StatusCancelled:
		color.Yellow("Operation cancelled.")
	default:
		color.Red("Operation failed with %d error(s); no certificate was issued.", len(outcome.Errors))
	}
}

func saveReport(job wipe.Job, outcome *wipe.Outcome, simulate bool, exitCode int) {
	report, err := reporting.GenerateReport(job, outcome, cfg, reporting.Meta{
		Version:  Version,
		Profile:  profile,
		Simulate: simulate,
		ExitCode: exitCode,
	})
	if err != nil {
		logger.Log("WARN", "Failed to build report", "error", err)
		return
	}

	path, err := reporting.SaveReport(report, cfg)
	if err != nil {
		logger.Log("WARN", "Failed to save report", "error", err)
		return
	}
	if path != "" {
		logger.Log("INFO", "Report saved", "run_id", report.RunID, "file", path)
	}
}
