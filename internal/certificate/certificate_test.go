package certificate

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"secureformat/internal/config"
	"secureformat/internal/logging"
)

func testBranding(dir string) config.Branding {
	b := config.Default().Branding
	b.CertDir = dir
	b.LogoFile = ""
	return b
}

func TestGenerateWritesPDF(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(testBranding(dir), "", logging.Discard())
	g.compress = false

	ts := time.Date(2026, 10, 18, 14, 30, 5, 0, time.Local)
	path, err := g.Generate(Record{
		Target:    "/dev/sdb - USB Disk",
		Method:    "Scramble -> Delete -> Overwrite -> Junk -> Quick Format",
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if filepath.Base(path) != "CodeMonk_SecureCertificate_20261018_143005.pdf" {
		t.Errorf("file name = %s", filepath.Base(path))
	}
	absDir, _ := filepath.Abs(dir)
	if filepath.Dir(path) != absDir {
		t.Errorf("certificate written to %s, want %s", filepath.Dir(path), absDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a PDF: %q", data[:16])
	}
	for _, want := range []string{
		"SECURE FORMAT CERTIFICATE",
		"Target    : /dev/sdb - USB Disk",
		"Date      : 18-10-2026 14:30:05",
		"Issued by : Code Monk",
	} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("PDF does not contain %q", want)
		}
	}
}

func TestGenerateFallsBackWhenCertDirUnwritable(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	fallback := filepath.Join(base, "fallback")

	g := NewGenerator(testBranding(filepath.Join(blocker, "certs")), fallback, logging.Discard())
	path, err := g.Generate(Record{Target: "E: - Logical Drive", Method: "m", Timestamp: time.Now()})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(path, fallback) {
		absFallback, _ := filepath.Abs(fallback)
		if !strings.HasPrefix(path, absFallback) {
			t.Errorf("path %s not in fallback dir %s", path, fallback)
		}
	}
}

func TestGenerateFailsWithoutWritableDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	g := NewGenerator(testBranding(filepath.Join(blocker, "a")), filepath.Join(blocker, "b"), logging.Discard())
	if _, err := g.Generate(Record{Target: "t", Method: "m"}); err == nil {
		t.Fatal("expected error when no directory is writable")
	}
}

func TestGenerateWithLogo(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	f, err := os.Create(logo)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	b := testBranding(dir)
	b.LogoFile = logo
	g := NewGenerator(b, "", logging.Discard())
	path, err := g.Generate(Record{Target: "t", Method: "m", Timestamp: time.Now()})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("certificate missing or empty: %v", err)
	}
}

func TestGenerateIgnoresBrokenLogo(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(logo, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	b := testBranding(dir)
	b.LogoFile = logo
	g := NewGenerator(b, "", logging.Discard())
	if _, err := g.Generate(Record{Target: "t", Method: "m", Timestamp: time.Now()}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestFileToken(t *testing.T) {
	for in, want := range map[string]string{
		"Code Monk":     "CodeMonk",
		"Acme/Inc.":     "AcmeInc",
		"Ünïcode Corp!": "ncodeCorp",
		"":              "Secure",
	} {
		if got := fileToken(in); got != want {
			t.Errorf("fileToken(%q) = %q, want %q", in, got, want)
		}
	}
}
