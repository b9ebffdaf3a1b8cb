package wipe

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures recorded during a run.
type ErrorKind string

const (
	KindDetection   ErrorKind = "detection"
	KindOperational ErrorKind = "operational"
	KindCancelled   ErrorKind = "cancelled"
	KindValidation  ErrorKind = "validation"
)

// ErrCancelled is wrapped by the outcome error of a cancelled run.
var ErrCancelled = errors.New("operation cancelled")

// StepError is one recorded failure. Path is set for per-file failures.
type StepError struct {
	Kind ErrorKind
	Step StepID
	Path string
	Err  error
}

func (e *StepError) Error() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %v", e.Step, e.Path, e.Err)
	case e.Step != "":
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *StepError) Unwrap() error { return e.Err }
