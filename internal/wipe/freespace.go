package wipe

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"secureformat/internal/system"
)

// FreeSpaceFileName is the fill file written at the volume root for pass p.
func FreeSpaceFileName(p int) string {
	return fmt.Sprintf("__cm_trash_pass%d.bin", p)
}

// overwriteFree fills the free space of the volume at root once per pass.
// Running out of space ends a pass normally.
func (o *Orchestrator) overwriteFree(r *run, root string) {
	buf := GetBuffer(o.opts.chunkSize())
	defer PutBuffer(buf)

	for p := 1; p <= r.job.Passes; p++ {
		if r.stopped() {
			return
		}
		name := filepath.Join(root, FreeSpaceFileName(p))
		written, err := o.fillFreeSpace(r, name, p, buf)
		r.out.Stats.BytesWritten += written
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return
			}
			r.fail(KindOperational, name, fmt.Errorf("free space overwrite failed: %w", err))
			continue
		}
		r.out.Stats.FreeSpacePasses++
		r.status("Free space pass %d/%d complete (%d MB written)", p, r.job.Passes, written/(1024*1024))
	}
}

func (o *Orchestrator) fillFreeSpace(r *run, name string, pass int, buf []byte) (written uint64, err error) {
	limit := uint64(math.MaxUint64)
	if free, ferr := o.freeSpace(filepath.Dir(name)); ferr == nil {
		limit = free
	} else {
		o.logger.Log("DEBUG", "free space unknown, writing until disk full", "root", filepath.Dir(name), "error", ferr)
	}

	f, err := o.create(name)
	if err != nil {
		if system.IsDiskFull(err) {
			return 0, nil
		}
		return 0, err
	}
	defer func() {
		f.Close()
		if rmErr := os.Remove(name); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = fmt.Errorf("cannot remove %s: %w", name, rmErr)
		}
	}()

	tw := NewThrottledWriter(f, o.opts.MaxSpeedMBps)
	for written < limit {
		select {
		case <-r.ctx.Done():
			return written, ErrCancelled
		default:
		}

		chunk := buf
		if rem := limit - written; rem < uint64(len(chunk)) {
			chunk = chunk[:rem]
		}
		if err := o.opts.Method.Fill(chunk, pass); err != nil {
			return written, err
		}
		n, werr := tw.Write(chunk)
		written += uint64(n)
		if werr != nil {
			if system.IsDiskFull(werr) {
				break
			}
			return written, werr
		}
	}

	if err := tw.Sync(); err != nil && !system.IsDiskFull(err) {
		return written, err
	}
	return written, nil
}
