package security

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"secureformat/internal/config"
	"secureformat/internal/system"
)

// ConfirmWord must be typed verbatim before a destructive run.
const ConfirmWord = "ERASE"

// ErrNotConfirmed is returned when the operator declines a run.
var ErrNotConfirmed = errors.New("operation not confirmed")

// Checks runs the pre-flight checks required by cfg.
func Checks(cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}

	if cfg.Security.RequireAdmin && !IsAdmin() {
		return fmt.Errorf("administrator privileges are required")
	}

	return nil
}

// ShouldSkipDrive reports whether drive must not be offered or wiped, and
// why.
func ShouldSkipDrive(cfg *config.Config, drive system.Drive, allowSystem bool) (bool, string) {
	if cfg != nil {
		for _, excluded := range cfg.Security.ExcludedDevices {
			if matchesDevice(drive, excluded) {
				return true, "excluded by configuration"
			}
		}
	}

	if drive.System && !allowSystem {
		return true, "system drive"
	}

	return false, ""
}

func matchesDevice(drive system.Drive, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if strings.EqualFold(drive.Device, name) || strings.EqualFold(drive.ID, name) {
		return true
	}
	if letter := system.DriveLetter(name); letter != "" {
		return letter == system.DriveLetter(drive.Device)
	}
	return false
}

// Confirm asks the operator to type ConfirmWord and then answer y.
func Confirm(in io.Reader, out io.Writer, label string) error {
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "WARNING: all data on %s will be destroyed.\n", label)
	fmt.Fprintf(out, "Type %s to continue: ", ConfirmWord)
	word, err := readLine(reader)
	if err != nil {
		return err
	}
	if word != ConfirmWord {
		return ErrNotConfirmed
	}

	fmt.Fprint(out, "Are you sure? (y/N): ")
	answer, err := readLine(reader)
	if err != nil {
		return err
	}
	if strings.ToLower(answer) != "y" {
		return ErrNotConfirmed
	}
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNotConfirmed
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
