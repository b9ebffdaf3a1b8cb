package system

import (
	"context"
	"runtime"
	"sort"

	"secureformat/internal/logging"
	"secureformat/internal/shell"
)

// Detector discovers drives through one OS mechanism.
type Detector interface {
	Name() string
	Detect(ctx context.Context) ([]Drive, error)
}

// Enumerator merges the results of several detectors into one drive list.
type Enumerator struct {
	Detectors []Detector
	logger    *logging.Logger
}

// NewEnumerator returns an enumerator with the platform detectors.
func NewEnumerator(runner shell.Runner, logger *logging.Logger) *Enumerator {
	return &Enumerator{
		Detectors: DefaultDetectors(runner),
		logger:    logger,
	}
}

// List runs every detector and returns the merged list. Detector failures
// are logged and skipped. An empty result is an empty, non-nil slice with a
// nil error; only cancellation is reported as an error.
func (e *Enumerator) List(ctx context.Context) ([]Drive, error) {
	var found []Drive
	for _, det := range e.Detectors {
		select {
		case <-ctx.Done():
			return Merge(found), ctx.Err()
		default:
		}

		drives, err := det.Detect(ctx)
		if err != nil {
			e.logger.Log("DEBUG", "drive detector failed", "detector", det.Name(), "error", err)
			continue
		}
		e.logger.Log("DEBUG", "drive detector finished", "detector", det.Name(), "found", len(drives))
		found = append(found, drives...)
	}

	drives := Merge(found)
	sysLetter := ""
	if runtime.GOOS == "windows" {
		sysLetter = SystemDrive()
	}
	MarkSystem(drives, sysLetter)
	e.logger.Log("INFO", "drive enumeration complete", "drives", len(drives))
	return drives, nil
}

var kindOrder = map[Kind]int{KindPhysical: 0, KindLogical: 1, KindRaw: 2}

// Merge drops invalid descriptors, removes duplicate IDs and raw entries for
// already known disk indexes, then orders physical, logical, raw.
func Merge(drives []Drive) []Drive {
	merged := make([]Drive, 0, len(drives))
	seen := make(map[string]bool)
	knownIndex := make(map[int]bool)

	for _, d := range drives {
		if d.Kind != KindRaw && d.Index != nil {
			knownIndex[*d.Index] = true
		}
	}

	for _, d := range drives {
		if d.Validate() != nil {
			continue
		}
		if d.Kind == KindRaw && d.Index != nil && knownIndex[*d.Index] {
			continue
		}
		if d.ID == "" {
			d.ID = string(d.Kind) + "-" + d.Device
		}
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		if d.Display == "" {
			d.Display = d.Label()
		}
		merged = append(merged, d)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return kindOrder[merged[i].Kind] < kindOrder[merged[j].Kind]
	})
	return merged
}

// FirstOf returns the drives of the first detector that finds any.
func FirstOf(name string, detectors ...Detector) Detector {
	return &firstOf{name: name, detectors: detectors}
}

type firstOf struct {
	name      string
	detectors []Detector
}

func (f *firstOf) Name() string { return f.name }

func (f *firstOf) Detect(ctx context.Context) ([]Drive, error) {
	var lastErr error
	for _, det := range f.detectors {
		drives, err := det.Detect(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if len(drives) > 0 {
			return drives, nil
		}
	}
	return nil, lastErr
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc struct {
	Label string
	Fn    func(ctx context.Context) ([]Drive, error)
}

func (d DetectorFunc) Name() string { return d.Label }

func (d DetectorFunc) Detect(ctx context.Context) ([]Drive, error) { return d.Fn(ctx) }
