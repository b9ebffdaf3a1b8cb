package wipe

import (
	"io"
	"sync"
	"time"
)

// syncWriter is the file surface used by overwrite passes.
type syncWriter interface {
	io.Writer
	Sync() error
}

// ThrottledWriter caps write throughput at maxSpeedMBps (0 = unlimited).
type ThrottledWriter struct {
	mu           sync.Mutex
	w            syncWriter
	maxSpeedMBps float64
	lastWrite    time.Time
	sleep        func(time.Duration)
}

// NewThrottledWriter wraps w.
func NewThrottledWriter(w syncWriter, maxSpeedMBps float64) *ThrottledWriter {
	return &ThrottledWriter{
		w:            w,
		maxSpeedMBps: maxSpeedMBps,
		lastWrite:    time.Now(),
		sleep:        time.Sleep,
	}
}

// Write writes data, sleeping first when the previous write finished too
// recently for the configured rate.
func (tw *ThrottledWriter) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.maxSpeedMBps > 0 {
		bytesPerSec := tw.maxSpeedMBps * 1024 * 1024
		expected := time.Duration(float64(len(data)) / bytesPerSec * float64(time.Second))
		if actual := time.Since(tw.lastWrite); actual < expected {
			tw.sleep(expected - actual)
		}
	}

	n, err := tw.w.Write(data)
	tw.lastWrite = time.Now()
	return n, err
}

// Sync flushes the underlying file.
func (tw *ThrottledWriter) Sync() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.w.Sync()
}
