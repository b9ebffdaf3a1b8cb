// Package shell runs the external OS tools used for detection, low-level
// cleaning and formatting.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Command describes one external invocation.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration // 0 = no timeout
	// AllowFailure makes a non-zero exit non-fatal for the caller.
	AllowFailure bool
	// OKOutput lists output fragments that turn a failure into success,
	// e.g. "No space left on device" for dd on a raw device.
	OKOutput []string
	// Stdin is fed to the process when set.
	Stdin io.Reader
}

// String renders the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a finished command.
type Result struct {
	Command  Command
	Output   string
	ExitCode int
	Duration time.Duration
	// Tolerated is set when the command failed but the failure was accepted
	// through AllowFailure or OKOutput.
	Tolerated bool
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ErrTimeout is returned when a command exceeds its timeout.
var ErrTimeout = errors.New("command timed out")

// ExecRunner runs commands through os/exec.
type ExecRunner struct {
	// KillOnCancel lets cancellation of the caller's context kill the
	// process. When false, a started command runs to completion and only
	// its own timeout applies.
	KillOnCancel bool
}

// Run executes cmd and returns its combined output.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	res := Result{Command: cmd}

	if !r.KillOnCancel {
		ctx = context.WithoutCancel(ctx)
	}
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}
	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out

	start := time.Now()
	err := c.Run()
	res.Duration = time.Since(start)
	res.Output = out.String()
	if c.ProcessState != nil {
		res.ExitCode = c.ProcessState.ExitCode()
	}

	if err == nil {
		return res, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%s: %w after %s", cmd.Name, ErrTimeout, cmd.Timeout)
	}

	return Check(res, fmt.Errorf("%s failed: %w: %s", cmd.Name, err, strings.TrimSpace(res.Output)))
}

// Check applies the tolerance rules of res.Command to a failed run.
func Check(res Result, err error) (Result, error) {
	if err == nil {
		return res, nil
	}
	for _, frag := range res.Command.OKOutput {
		if strings.Contains(res.Output, frag) {
			res.Tolerated = true
			return res, nil
		}
	}
	if res.Command.AllowFailure {
		res.Tolerated = true
		return res, nil
	}
	return res, err
}
