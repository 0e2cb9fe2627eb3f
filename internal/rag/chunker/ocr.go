package chunker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"medibot/internal/rag/interfaces"
)

// TesseractOCR renders a single PDF page to an image with poppler's
// pdftoppm and recognizes it with the tesseract CLI. Both tools must be on
// PATH, or pdftoppm can be pointed at with an explicit directory.
type TesseractOCR struct {
	// PopplerPath optionally holds the directory containing pdftoppm.
	PopplerPath string
	// DPI is the render resolution for the page image.
	DPI int
}

// NewTesseractOCR creates a TesseractOCR engine.
func NewTesseractOCR(popplerPath string, dpi int) *TesseractOCR {
	if dpi <= 0 {
		dpi = 200
	}
	return &TesseractOCR{PopplerPath: popplerPath, DPI: dpi}
}

// Recognize renders the given page and returns the recognized text.
func (t *TesseractOCR) Recognize(ctx context.Context, pdfPath string, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "medibot-ocr-")
	if err != nil {
		return "", fmt.Errorf("failed to create ocr temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	pdftoppm := "pdftoppm"
	if t.PopplerPath != "" {
		pdftoppm = filepath.Join(t.PopplerPath, "pdftoppm")
	}

	render := exec.CommandContext(ctx, pdftoppm,
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-r", strconv.Itoa(t.DPI),
		"-png", pdfPath, prefix,
	)
	if out, err := render.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm failed for page %d: %w (%s)", page, err, string(out))
	}

	images, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", page)
	}

	recognize := exec.CommandContext(ctx, "tesseract", images[0], "stdout")
	out, err := recognize.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed for page %d: %w", page, err)
	}
	return string(out), nil
}

var _ interfaces.OCR = (*TesseractOCR)(nil)
