package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"secureformat/internal/config"
	"secureformat/internal/logging"
	"secureformat/internal/shell"
	"secureformat/internal/system"
)

const (
	Version = "1.0.0"
	AppName = "Secure Formatter"

	// Exit codes
	EXIT_SUCCESS = 0
	EXIT_ERROR   = 1
	EXIT_WARNING = 2
)

var (
	cfg             *config.Config
	logger          *logging.Logger
	verbose         bool
	configPath      string
	profile         string
	allowSystemDisk bool
)

// errCancelled marks runs stopped by the operator; it maps to EXIT_WARNING.
var errCancelled = errors.New("operation cancelled")

var rootCmd = &cobra.Command{
	Use:               "secureformat",
	Short:             "Code Monk Secure Formatter",
	Long:              "Securely wipes a drive and issues a PDF certificate of completion",
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List detected drives",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var wipeCmd = &cobra.Command{
	Use:   "wipe [device]",
	Short: "Securely wipe a drive",
	Long:  "Overwrites, deletes and reformats the selected drive, then issues a certificate",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWipe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Wipe profile (quick/standard/paranoid)")

	listCmd.Flags().Bool("json", false, "Print drives as JSON")
	listCmd.Flags().Bool("all", false, "Include system and excluded drives")

	wipeCmd.Flags().IntP("passes", "p", 0, "Number of passes (1, 3 or 7)")
	wipeCmd.Flags().StringP("method", "m", "", "Overwrite method (random/zero/dod5220)")
	wipeCmd.Flags().Bool("simulate", false, "Walk through the steps without touching the drive")
	wipeCmd.Flags().BoolP("force", "f", false, "Skip the confirmation prompt")
	wipeCmd.Flags().Bool("fail-fast", false, "Stop at the first failed step")
	wipeCmd.Flags().BoolVar(&allowSystemDisk, "allow-system-disk", false, "Allow wiping the system drive (DANGEROUS)")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(listCmd, wipeCmd, configCmd)
}

// setup loads the configuration, applies the profile and opens the logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if profile != "" {
		if err := config.ApplyProfile(cfg, profile); err != nil {
			return err
		}
	}

	logger, err = logging.NewLogger(cfg, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Log("WARN", "Signal received, cancelling", "signal", sig.String())
			color.New(color.FgYellow).Fprintf(os.Stderr, "\n[INFO] %s received, stopping after the current step...\n", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func enumerate(ctx context.Context) ([]system.Drive, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	enum := system.NewEnumerator(&shell.ExecRunner{}, logger)
	drives, err := enum.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate drives: %w", err)
	}
	return drives, nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	drives, err := enumerate(ctx)
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	if !all {
		drives = eligibleDrives(drives, true)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		data, err := json.MarshalIndent(drives, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal drives: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(drives) == 0 {
		fmt.Println("No drives detected.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKIND\tDEVICE\tSIZE\tLABEL")
	for i, d := range drives {
		size := "-"
		if d.SizeGB != nil {
			size = fmt.Sprintf("%d GB", *d.SizeGB)
		}
		label := d.Label()
		if d.System {
			label += " [system]"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, d.Kind, d.Device, size, label)
	}
	return tw.Flush()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		path = "secureformat.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

// execute runs the command line and returns the process exit code. The
// logger is closed on every path, failed runs included.
func execute(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	closeLogger()

	if err == nil {
		return EXIT_SUCCESS
	}
	if errors.Is(err, errCancelled) {
		color.New(color.FgYellow).Fprintln(os.Stderr, "Cancelled:", err)
		return EXIT_WARNING
	}
	color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
	return EXIT_ERROR
}

func closeLogger() {
	if logger != nil {
		logger.Close()
		logger = nil
	}
}

func main() {
	os.Exit(execute(os.Args[1:]))
}
