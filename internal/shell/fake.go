package shell

import (
	"context"
	"fmt"
	"sync"
)

// Recorder is a Runner that records commands instead of running them.
// Responses are looked up by command name; unknown commands succeed with
// empty output.
type Recorder struct {
	mu        sync.Mutex
	Commands  []Command
	Responses map[string]Response
}

// Response is a canned result for Recorder.
type Response struct {
	Output   string
	ExitCode int
	Err      error
}

// Run records cmd and returns the canned response for its name.
func (r *Recorder) Run(ctx context.Context, cmd Command) (Result, error) {
	r.mu.Lock()
	r.Commands = append(r.Commands, cmd)
	resp, ok := r.Responses[cmd.Name]
	r.mu.Unlock()

	res := Result{Command: cmd}
	if !ok {
		return res, nil
	}
	res.Output = resp.Output
	res.ExitCode = resp.ExitCode
	if resp.Err == nil && resp.ExitCode == 0 {
		return res, nil
	}
	err := resp.Err
	if err == nil {
		err = fmt.Errorf("%s exited with code %d", cmd.Name, resp.ExitCode)
	}
	return Check(res, err)
}

// Names returns the recorded command lines.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		names[i] = c.String()
	}
	return names
}
