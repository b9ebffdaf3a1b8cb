package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"secureformat/internal/system"
)

// errQuit is returned when the operator leaves a menu.
var errQuit = fmt.Errorf("%w: no selection made", errCancelled)

var passChoices = []struct {
	label  string
	passes int
}{
	{"Quick (1 pass)", 1},
	{"Secure (3 passes)", 3},
	{"Ultra (7 passes)", 7},
}

// selectDrive prints the numbered drive list and reads the operator's
// choice.
func selectDrive(in *bufio.Reader, out io.Writer, drives []system.Drive) (system.Drive, error) {
	fmt.Fprintln(out, "Available drives:")
	fmt.Fprintln(out, strings.Repeat("-", 50))
	for i, d := range drives {
		fmt.Fprintf(out, "%2d. %s\n", i+1, d.Label())
	}
	fmt.Fprintln(out)

	choice, err := readChoice(in, out, "Select drive to wipe (or 'q' to quit): ", len(drives))
	if err != nil {
		return system.Drive{}, err
	}
	return drives[choice], nil
}

// selectPasses asks for the security level.
func selectPasses(in *bufio.Reader, out io.Writer) (int, error) {
	fmt.Fprintln(out, "Security levels:")
	for i, c := range passChoices {
		fmt.Fprintf(out, "%d. %s\n", i+1, c.label)
	}
	fmt.Fprintln(out)

	choice, err := readChoice(in, out, fmt.Sprintf("Select security level (1-%d): ", len(passChoices)), len(passChoices))
	if err != nil {
		return 0, err
	}
	return passChoices[choice].passes, nil
}

// readChoice reads a 1-based number up to max and returns it 0-based.
// Invalid input is re-prompted; q or end of input quits.
func readChoice(in *bufio.Reader, out io.Writer, prompt string, max int) (int, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("failed to read input: %w", err)
		}
		answer := strings.TrimSpace(line)

		switch strings.ToLower(answer) {
		case "q", "quit", "exit":
			return 0, errQuit
		}

		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= max {
			return n - 1, nil
		}

		if err != nil {
			return 0, errQuit
		}
		fmt.Fprintf(out, "Please enter a number between 1 and %d\n", max)
	}
}
