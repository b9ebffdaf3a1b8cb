package wipe

import (
	"time"

	"secureformat/internal/system"
)

// StepID names a pipeline stage.
type StepID string

const (
	StepPrepare        StepID = "prepare"
	StepOverwriteFiles StepID = "overwrite_files"
	StepDelete         StepID = "delete"
	StepLowLevelClean  StepID = "low_level_clean"
	StepOverwriteFree  StepID = "overwrite_free"
	StepJunk           StepID = "junk"
	StepFormat         StepID = "format"
	StepCertify        StepID = "certify"
)

// Step is one weighted stage of a job.
type Step struct {
	ID     StepID
	Label  string
	Weight int
}

// Job is a validated wipe request.
type Job struct {
	Target system.Drive
	Passes int
	Steps  []Step
}

// TotalWeight is the denominator used for progress.
func (j Job) TotalWeight() int {
	total := 0
	for _, s := range j.Steps {
		total += s.Weight
	}
	return total
}

// Status is the final state of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// EventKind distinguishes progress from status messages.
type EventKind int

const (
	EventStatus EventKind = iota
	EventProgress
)

// Event is sent to the caller while a job runs.
type Event struct {
	Kind    EventKind
	Step    StepID
	Message string
	Percent int
}

// Stats counts the work performed.
type Stats struct {
	FilesOverwritten    int    `json:"files_overwritten"`
	FileOverwritePasses int    `json:"file_overwrite_passes"`
	FilesDeleted        int    `json:"files_deleted"`
	DirsDeleted         int    `json:"dirs_deleted"`
	FreeSpacePasses     int    `json:"free_space_passes"`
	BytesWritten        uint64 `json:"bytes_written"`
	CommandsRun         int    `json:"commands_run"`
}

// StepResult records how one step ended.
type StepResult struct {
	ID       StepID        `json:"id"`
	Label    string        `json:"label"`
	Status   string        `json:"status"` // COMPLETED, FAILED, SKIPPED, CANCELLED
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration"`
}

// Outcome is the result of Orchestrator.Run. Certificate is set only when
// Status is StatusSucceeded.
type Outcome struct {
	Status      Status
	Certificate string
	Errors      []*StepError
	Err         error
	Stats       Stats
	Steps       []StepResult
	Method      string
	Started     time.Time
	Finished    time.Time
}

// Duration of the run.
func (o *Outcome) Duration() time.Duration {
	return o.Finished.Sub(o.Started)
}
