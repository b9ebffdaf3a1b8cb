package wipe

import (
	"fmt"

	"secureformat/internal/system"
)

var stepTable = []Step{
	{StepPrepare, "Preparing target", 3},
	{StepOverwriteFiles, "Overwriting files with random data", 20},
	{StepDelete, "Deleting files & partitions", 20},
	{StepLowLevelClean, "Attempting low-level clean", 2},
	{StepOverwriteFree, "Overwriting free space with random data", 30},
	{StepJunk, "Creating compressed junk", 10},
	{StepFormat, "Final formatting", 15},
	{StepCertify, "Generating certificate", 2},
}

// ValidPasses reports whether n is a supported pass count.
func ValidPasses(n int) bool {
	return n == 1 || n == 3 || n == 7
}

// NewJob validates the request and builds the step list for target. The
// low-level clean step is only included for whole-disk targets.
func NewJob(target system.Drive, passes int) (Job, error) {
	if !ValidPasses(passes) {
		return Job{}, &StepError{Kind: KindValidation, Err: fmt.Errorf("passes must be 1, 3 or 7, got %d", passes)}
	}
	if err := target.Validate(); err != nil {
		return Job{}, &StepError{Kind: KindValidation, Err: err}
	}

	steps := make([]Step, 0, len(stepTable))
	for _, s := range stepTable {
		if s.ID == StepLowLevelClean && !target.DiskLevel() {
			continue
		}
		steps = append(steps, s)
	}
	return Job{Target: target, Passes: passes, Steps: steps}, nil
}
