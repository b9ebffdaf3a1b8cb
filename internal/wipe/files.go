package wipe

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Entries at the root of a volume that the OS recreates or refuses to
// release. They are left in place.
var protectedEntries = map[string]bool{
	"system volume information": true,
	"$recycle.bin":              true,
	"lost+found":                true,
}

type tree struct {
	files []string
	// symlinks, FIFOs, sockets and device nodes; removed but never opened
	special []string
	dirs    []string
}

type walkError struct {
	path string
	err  error
}

// scanTree lists the entries below root in walk order. Symlinks are not
// followed.
func scanTree(root string) (tree, []walkError) {
	var t tree
	var errs []walkError

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, walkError{path: path, err: err})
			return nil
		}
		if path == root {
			return nil
		}
		if filepath.Dir(path) == filepath.Clean(root) && protectedEntries[strings.ToLower(d.Name())] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case d.IsDir():
			t.dirs = append(t.dirs, path)
		case d.Type().IsRegular():
			t.files = append(t.files, path)
		default:
			t.special = append(t.special, path)
		}
		return nil
	})

	return t, errs
}

// overwriteFiles overwrites every regular file below root with exactly
// Passes passes, deepest entries first.
func (o *Orchestrator) overwriteFiles(r *run, root string) {
	t, errs := scanTree(root)
	for _, we := range errs {
		r.fail(KindOperational, we.path, we.err)
	}

	buf := GetBuffer(o.opts.chunkSize())
	defer PutBuffer(buf)

	for i := len(t.files) - 1; i >= 0; i-- {
		if r.stopped() {
			return
		}
		path := t.files[i]
		if err := o.overwriteFile(r, path, buf); err != nil {
			r.fail(KindOperational, path, fmt.Errorf("overwrite failed: %w", err))
			continue
		}
		r.out.Stats.FilesOverwritten++
		r.status("Overwritten: %s", path)
	}
}

func (o *Orchestrator) overwriteFile(r *run, path string, buf []byte) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	size := fi.Size()

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	tw := NewThrottledWriter(f, o.opts.MaxSpeedMBps)
	for pass := 1; pass <= r.job.Passes; pass++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		var written int64
		for written < size {
			chunk := buf
			if rem := size - written; rem < int64(len(chunk)) {
				chunk = chunk[:rem]
			}
			if err := o.opts.Method.Fill(chunk, pass); err != nil {
				return err
			}
			n, err := tw.Write(chunk)
			written += int64(n)
			if err != nil {
				return err
			}
		}
		if err := tw.Sync(); err != nil {
			return err
		}
		r.out.Stats.FileOverwritePasses++
		r.out.Stats.BytesWritten += uint64(written)
	}
	return nil
}

// deleteTree removes every file and special entry, then every directory
// below root. The root itself is kept.
func (o *Orchestrator) deleteTree(r *run, root string) {
	t, errs := scanTree(root)
	for _, we := range errs {
		r.fail(KindOperational, we.path, we.err)
	}

	entries := append(append([]string{}, t.files...), t.special...)
	for i := len(entries) - 1; i >= 0; i-- {
		if r.stopped() {
			return
		}
		path := entries[i]
		if err := os.Remove(path); err != nil {
			r.fail(KindOperational, path, fmt.Errorf("delete failed: %w", err))
			continue
		}
		r.out.Stats.FilesDeleted++
		r.status("Deleted: %s", path)
	}

	// reverse walk order removes children before parents
	for i := len(t.dirs) - 1; i >= 0; i-- {
		if r.stopped() {
			return
		}
		path := t.dirs[i]
		if err := os.Remove(path); err != nil {
			r.fail(KindOperational, path, fmt.Errorf("delete directory failed: %w", err))
			continue
		}
		r.out.Stats.DirsDeleted++
		r.status("Deleted directory: %s", path)
	}
}
