package wipe

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// createJunk writes random files to a temporary directory, compresses them
// into an archive and removes both.
func (o *Orchestrator) createJunk(r *run) {
	count := o.opts.JunkFiles
	size := o.opts.JunkFileSize
	if count <= 0 || size <= 0 {
		return
	}

	dir, err := os.MkdirTemp(o.opts.TempDir, "cm_junk_")
	if err != nil {
		r.fail(KindOperational, "", fmt.Errorf("junk directory: %w", err))
		return
	}
	defer os.RemoveAll(dir)

	buf := GetBuffer(int(size))
	defer PutBuffer(buf)

	files := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if err := FillRandom(buf); err != nil {
			r.fail(KindOperational, "", err)
			return
		}
		path := filepath.Join(dir, fmt.Sprintf("junk_%d.bin", i))
		if err := os.WriteFile(path, buf, 0600); err != nil {
			r.fail(KindOperational, path, fmt.Errorf("junk file: %w", err))
			return
		}
		files = append(files, path)
		r.out.Stats.BytesWritten += uint64(size)
	}

	archive := dir + ".zip"
	if err := zipFiles(archive, files); err != nil {
		os.Remove(archive)
		r.fail(KindOperational, archive, fmt.Errorf("junk archive: %w", err))
		return
	}
	if err := os.Remove(archive); err != nil {
		r.fail(KindOperational, archive, fmt.Errorf("junk archive cleanup: %w", err))
		return
	}
	r.status("Junk archive of %d files created and removed", count)
}

func zipFiles(dest string, files []string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	for _, path := range files {
		if err := addToZip(zw, path); err != nil {
			zw.Close()
			out.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func addToZip(zw *zip.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: filepath.Base(path), Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
