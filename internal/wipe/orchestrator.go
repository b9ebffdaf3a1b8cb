package wipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"secureformat/internal/certificate"
	"secureformat/internal/logging"
	"secureformat/internal/shell"
	"secureformat/internal/system"
)

// Certifier issues the completion certificate.
type Certifier interface {
	Generate(rec certificate.Record) (string, error)
}

type writeFile interface {
	io.Writer
	Sync() error
	Close() error
}

// Orchestrator runs wipe jobs step by step.
type Orchestrator struct {
	opts   Options
	runner shell.Runner
	certs  Certifier
	logger *logging.Logger

	freeSpace func(root string) (uint64, error)
	create    func(path string) (writeFile, error)
	now       func() time.Time
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(opts Options, runner shell.Runner, certs Certifier, logger *logging.Logger) *Orchestrator {
	if opts.Method == "" {
		opts.Method = MethodRandom
	}
	return &Orchestrator{
		opts:      opts,
		runner:    runner,
		certs:     certs,
		logger:    logger,
		freeSpace: system.FreeSpace,
		create: func(path string) (writeFile, error) {
			return os.Create(path)
		},
		now: time.Now,
	}
}

// run holds the state of one Run call.
type run struct {
	o      *Orchestrator
	ctx    context.Context
	job    Job
	events chan<- Event
	out    *Outcome

	acc   int
	total int
	step  StepID
}

// Run executes job and reports progress and status on events, which may be
// nil. Run never closes events. The context is checked at every step
// boundary, between files and between free-space chunks.
func (o *Orchestrator) Run(ctx context.Context, job Job, events chan<- Event) *Outcome {
	method := o.opts.Method.Describe(job.Passes)
	if o.opts.Simulate {
		method += " (simulation)"
	}
	out := &Outcome{Started: o.now(), Method: method}

	r := &run{o: o, ctx: ctx, job: job, events: events, out: out, total: job.TotalWeight()}

	if err := validateJob(job); err != nil {
		out.Status = StatusFailed
		out.Err = err
		out.Finished = o.now()
		o.logger.Log("ERROR", "wipe job rejected", "error", err)
		return out
	}

	o.logger.Log("INFO", "wipe started",
		"target", job.Target.Label(), "device", job.Target.Device, "kind", job.Target.Kind,
		"passes", job.Passes, "method", o.opts.Method, "simulate", o.opts.Simulate)

	var cancelledAt StepID
	for i, step := range job.Steps {
		if ctx.Err() != nil {
			cancelledAt = step.ID
			r.skipRemaining(job.Steps[i:], "CANCELLED")
			break
		}
		if r.halted() {
			o.logger.Log("WARN", "aborting after first failure", "next_step", step.ID)
			r.skipRemaining(job.Steps[i:], "SKIPPED")
			break
		}

		started := time.Now()
		r.step = step.ID
		label := step.Label
		if o.opts.Simulate {
			label = "Simulation: " + label
		}
		r.status("%s...", label)
		r.tick(step.Weight)

		if ctx.Err() != nil {
			cancelledAt = step.ID
			r.skipRemaining(job.Steps[i:], "CANCELLED")
			break
		}

		before := len(out.Errors)
		o.logger.Log("DEBUG", "step started", "step", step.ID)
		r.exec(step)

		res := StepResult{
			ID:       step.ID,
			Label:    step.Label,
			Status:   "COMPLETED",
			Errors:   len(out.Errors) - before,
			Duration: time.Since(started),
		}
		// a certificate already on disk stands even if cancel arrives late
		switch {
		case res.Errors > 0:
			res.Status = "FAILED"
		case ctx.Err() != nil && step.ID != StepCertify:
			res.Status = "CANCELLED"
			cancelledAt = step.ID
		}
		out.Steps = append(out.Steps, res)
		o.logger.Log("INFO", "step finished", "step", step.ID, "status", res.Status, "errors", res.Errors, "duration", res.Duration)

		if cancelledAt != "" {
			r.skipRemaining(job.Steps[i+1:], "CANCELLED")
			break
		}
	}

	out.Finished = o.now()
	switch {
	case cancelledAt != "":
		out.Status = StatusCancelled
		out.Certificate = ""
		out.Err = &StepError{Kind: KindCancelled, Step: cancelledAt, Err: ErrCancelled}
	case len(out.Errors) > 0:
		out.Status = StatusFailed
		out.Certificate = ""
		errs := make([]error, len(out.Errors))
		for i, e := range out.Errors {
			errs[i] = e
		}
		out.Err = fmt.Errorf("wipe completed with %d error(s): %w", len(out.Errors), errors.Join(errs...))
	default:
		out.Status = StatusSucceeded
	}

	o.logger.Log("INFO", "wipe finished", "status", out.Status, "errors", len(out.Errors),
		"certificate", out.Certificate, "duration", out.Duration())
	return out
}

func validateJob(job Job) error {
	if !ValidPasses(job.Passes) {
		return &StepError{Kind: KindValidation, Err: fmt.Errorf("passes must be 1, 3 or 7, got %d", job.Passes)}
	}
	if err := job.Target.Validate(); err != nil {
		return &StepError{Kind: KindValidation, Err: err}
	}
	if len(job.Steps) == 0 {
		return &StepError{Kind: KindValidation, Err: errors.New("job has no steps")}
	}
	return nil
}

func (r *run) exec(step Step) {
	if r.o.opts.Simulate {
		if step.ID == StepCertify {
			r.certify()
		}
		return
	}

	root := r.job.Target.Root()
	switch step.ID {
	case StepPrepare:
		r.prepare(root)
	case StepOverwriteFiles:
		if root != "" {
			r.o.overwriteFiles(r, root)
		}
	case StepDelete:
		if root != "" {
			r.o.deleteTree(r, root)
		}
	case StepLowLevelClean, StepFormat:
		r.o.runPlan(r, step.ID)
	case StepOverwriteFree:
		if root != "" {
			r.o.overwriteFree(r, root)
		}
	case StepJunk:
		r.o.createJunk(r)
	case StepCertify:
		r.certify()
	}
}

func (r *run) prepare(root string) {
	t := r.job.Target
	if root == "" {
		if !t.DiskLevel() {
			r.status("No mounted filesystem on %s, file-level steps skipped", t.Device)
		}
		return
	}
	fi, err := os.Stat(root)
	if err != nil {
		r.fail(KindOperational, root, fmt.Errorf("target not accessible: %w", err))
		return
	}
	if !fi.IsDir() {
		r.fail(KindOperational, root, errors.New("target root is not a directory"))
	}
}

func (r *run) certify() {
	if len(r.out.Errors) > 0 {
		r.status("Wipe completed with %d error(s), certificate withheld", len(r.out.Errors))
		return
	}
	if r.o.certs == nil {
		r.fail(KindOperational, "", errors.New("no certificate generator configured"))
		return
	}
	path, err := r.o.certs.Generate(certificate.Record{
		Target:    r.job.Target.Label(),
		Method:    r.out.Method,
		Timestamp: r.o.now(),
	})
	if err != nil {
		r.fail(KindOperational, "", fmt.Errorf("certificate generation failed: %w", err))
		return
	}
	r.out.Certificate = path
	r.status("Certificate saved: %s", path)
}

func (o *Orchestrator) runPlan(r *run, step StepID) {
	plan, err := o.opts.CommandPlan(r.job.Target, r.job.Passes, step)
	if err != nil {
		r.fail(KindOperational, "", err)
		return
	}
	if plan.Empty() {
		return
	}

	scriptPath := ""
	if plan.Script != "" {
		f, err := os.CreateTemp(o.opts.TempDir, "cm_diskpart_*.txt")
		if err != nil {
			r.fail(KindOperational, "", fmt.Errorf("cannot write command script: %w", err))
			return
		}
		scriptPath = f.Name()
		defer os.Remove(scriptPath)
		_, werr := f.WriteString(plan.Script)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			r.fail(KindOperational, scriptPath, fmt.Errorf("cannot write command script: %w", werr))
			return
		}
	}

	o.logger.Log("INFO", "running command plan", "step", step, "plan", describePlan(plan))
	for _, cmd := range plan.Commands {
		if r.ctx.Err() != nil {
			return
		}
		if scriptPath != "" {
			args := make([]string, len(cmd.Args))
			for i, a := range cmd.Args {
				args[i] = strings.ReplaceAll(a, ScriptPath, scriptPath)
			}
			cmd.Args = args
		}

		r.status("Running: %s", cmd)
		res, err := o.runner.Run(r.ctx, cmd)
		r.out.Stats.CommandsRun++
		if err != nil {
			r.fail(KindOperational, "", fmt.Errorf("%s: %w", cmd, err))
			return
		}
		if res.Tolerated {
			o.logger.Log("WARN", "command failure tolerated", "command", cmd.String(), "output", strings.TrimSpace(res.Output))
		}
	}
}

func (r *run) skipRemaining(steps []Step, status string) {
	for _, s := range steps {
		r.out.Steps = append(r.out.Steps, StepResult{ID: s.ID, Label: s.Label, Status: status})
	}
}

// halted reports whether the abort policy stops further work.
func (r *run) halted() bool {
	return r.o.opts.AbortOnError && len(r.out.Errors) > 0
}

// stopped reports whether loops inside a step must end early.
func (r *run) stopped() bool {
	return r.ctx.Err() != nil || r.halted()
}

func (r *run) fail(kind ErrorKind, path string, err error) {
	se := &StepError{Kind: kind, Step: r.step, Path: path, Err: err}
	r.out.Errors = append(r.out.Errors, se)
	r.o.logger.Log("ERROR", "step error", "step", r.step, "path", path, "error", err)
	r.status("Error: %v", se)
}

func (r *run) status(format string, args ...interface{}) {
	r.send(Event{Kind: EventStatus, Step: r.step, Message: fmt.Sprintf(format, args...)})
}

func (r *run) send(ev Event) {
	if r.events == nil {
		return
	}
	select {
	case r.events <- ev:
	case <-r.ctx.Done():
		// drop the event if nobody is reading any more
		select {
		case r.events <- ev:
		default:
		}
	}
}

// tick advances progress by weight units, one event per unit.
func (r *run) tick(weight int) {
	for i := 0; i < weight; i++ {
		r.acc++
		if d := r.o.opts.StepTick; d > 0 && r.ctx.Err() == nil {
			t := time.NewTimer(d)
			select {
			case <-t.C:
			case <-r.ctx.Done():
				t.Stop()
			}
		}
		pct := 0
		if r.total > 0 {
			pct = r.acc * 100 / r.total
		}
		r.send(Event{Kind: EventProgress, Step: r.step, Percent: pct})
	}
}
