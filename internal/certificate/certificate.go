// Package certificate renders the PDF certificate issued after a
// successful wipe.
package certificate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"

	"secureformat/internal/config"
	"secureformat/internal/logging"
)

// DateLayout is the date format printed on certificates.
const DateLayout = "02-01-2006 15:04:05"

const logoWidth = 200.0

// Record is the data attested by one certificate.
type Record struct {
	Target       string
	Method       string
	Timestamp    time.Time
	SaveLocation string
	Issuer       string
}

// Generator writes certificates using the configured branding.
type Generator struct {
	branding    config.Branding
	fallbackDir string
	logger      *logging.Logger
	compress    bool
}

// NewGenerator returns a generator. Certificates go to branding.CertDir, or
// to fallbackDir when that directory cannot be written.
func NewGenerator(branding config.Branding, fallbackDir string, logger *logging.Logger) *Generator {
	return &Generator{
		branding:    branding,
		fallbackDir: fallbackDir,
		logger:      logger,
		compress:    true,
	}
}

// FileName returns the certificate file name for the given time.
func (g *Generator) FileName(ts time.Time) string {
	return fmt.Sprintf("%s_SecureCertificate_%s.pdf", fileToken(g.branding.CompanyName), ts.Format("20060102_150405"))
}

// Generate renders rec and returns the path of the written PDF.
func (g *Generator) Generate(rec Record) (string, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Issuer == "" {
		rec.Issuer = g.branding.CompanyName
	}

	dirs := []string{g.branding.CertDir}
	if g.fallbackDir != "" && g.fallbackDir != g.branding.CertDir {
		dirs = append(dirs, g.fallbackDir)
	}

	var lastErr error
	for _, dir := range dirs {
		if dir == "" {
			dir = "."
		}
		path, err := g.writeTo(dir, rec)
		if err == nil {
			g.logger.Log("INFO", "certificate written", "path", path, "target", rec.Target)
			return path, nil
		}
		g.logger.Log("WARN", "cannot write certificate", "dir", dir, "error", err)
		lastErr = err
	}
	return "", fmt.Errorf("certificate not written: %w", lastErr)
}

func (g *Generator) writeTo(dir string, rec Record) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	rec.SaveLocation = abs
	path := filepath.Join(abs, g.FileName(rec.Timestamp))

	pdf := g.render(rec)
	if err := pdf.OutputFileAndClose(path); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (g *Generator) render(rec Record) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(g.compress)
	pdf.SetCreationDate(rec.Timestamp)
	pdf.SetModificationDate(rec.Timestamp)
	pdf.SetTitle("Secure Format Certificate", true)
	pdf.SetSubject(rec.Target, true)
	pdf.SetAuthor(rec.Issuer, true)
	pdf.SetCreator(g.branding.AppTitle, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	y := 50.0

	if g.branding.LogoFile != "" {
		if _, err := os.Stat(g.branding.LogoFile); err == nil {
			opts := fpdf.ImageOptions{ReadDpi: true}
			info := pdf.RegisterImageOptions(g.branding.LogoFile, opts)
			if pdf.Ok() && info != nil && info.Width() > 0 {
				h := logoWidth * info.Height() / info.Width()
				pdf.ImageOptions(g.branding.LogoFile, (pageW-logoWidth)/2, y, logoWidth, h, false, opts, 0, "")
				y += h + 20
			}
			if !pdf.Ok() {
				// the logo is optional
				g.logger.Log("WARN", "logo skipped", "file", g.branding.LogoFile, "error", pdf.Error())
				pdf.ClearError()
			}
		}
	}

	pdf.SetXY(0, y)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(pageW, 30, "SECURE FORMAT CERTIFICATE", "", 1, "C", false, 0, "")
	if g.branding.AppTitle != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(pageW, 16, tr(g.branding.AppTitle), "", 1, "C", false, 0, "")
	}

	y = pdf.GetY() + 30
	pdf.SetFont("Courier", "", 11)
	lines := []string{
		"Issued by : " + rec.Issuer,
		"Target    : " + rec.Target,
		"Method    : " + rec.Method,
		"Date      : " + rec.Timestamp.Format(DateLayout),
		"Saved to  : " + rec.SaveLocation,
	}
	for _, line := range lines {
		pdf.SetXY(80, y)
		pdf.MultiCell(pageW-160, 14, tr(line), "", "L", false)
		y = pdf.GetY() + 8
	}

	y += 60
	pdf.SetLineWidth(0.8)
	pdf.Line(80, y, 280, y)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(80, y+14, "Authorized signature")

	return pdf
}

// fileToken strips a company name down to letters and digits.
func fileToken(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Secure"
	}
	return b.String()
}
