package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TextExtractor is Stage 1: raw document bytes -> ordered per-page texts.
type TextExtractor interface {
	ExtractPages(ctx context.Context, fileBytes []byte) ([]string, error)
}

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for pages with no text layer, default 200
}

// Extractor extracts per-page text from PDF bytes, running an OCR pass for
// pages whose text layer is empty. The output slice is 1:1 with physical
// pages; a page with nothing recoverable yields "".
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// ExtractPages writes the bytes to a temp file, extracts the text layer page
// by page, and OCRs any page that comes back whitespace-only. Only a
// malformed/corrupt PDF returns an error.
func (e *Extractor) ExtractPages(ctx context.Context, fileBytes []byte) ([]string, error) {
	start := time.Now()

	tmpDir, err := os.MkdirTemp("", "doc-extract-*")
	if err != nil {
		return nil, err
	}
	defer func(path string) {
		if rmErr := os.RemoveAll(path); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "path", path, "error", rmErr)
		}
	}(tmpDir)

	pdfPath := filepath.Join(tmpDir, "source.pdf")
	if err := os.WriteFile(pdfPath, fileBytes, 0o600); err != nil {
		return nil, err
	}

	pages, err := e.pdfToText(ctx, pdfPath)
	if err != nil {
		e.logger.Error("extract.pdf_text.failed", "error", err)
		return nil, fmt.Errorf("read pdf text layer: %w", err)
	}

	ocrCount := 0
	for i := range pages {
		pages[i] = strings.TrimSpace(pages[i])
		if pages[i] != "" {
			continue
		}
		txt, ocrErr := e.ocrPage(ctx, pdfPath, tmpDir, i+1)
		if ocrErr != nil {
			// best-effort: the page stays empty rather than being omitted
			e.logger.Warn("extract.ocr_page.failed", "page", i+1, "error", ocrErr)
			continue
		}
		pages[i] = strings.TrimSpace(txt)
		ocrCount++
	}

	e.logger.Info("extract.pages.ok",
		"pages", len(pages),
		"ocr_pages", ocrCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) ([]string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 1<<10))
	}
	// A form-feed \f terminates each page.
	parts := strings.Split(string(out), "\f")
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts, nil
}

// ocrPage rasterizes a single page and runs tesseract over the image.
func (e *Extractor) ocrPage(ctx context.Context, pdfPath, tmpDir string, pageNum int) (string, error) {
	prefix := filepath.Join(tmpDir, fmt.Sprintf("page-%d", pageNum))
	// pdftoppm -r <dpi> -png -f N -l N <in.pdf> <prefix>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png",
		"-f", fmt.Sprintf("%d", pageNum), "-l", fmt.Sprintf("%d", pageNum),
		pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 1<<10))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", pageNum)
	}

	// tesseract <img> stdout -l eng
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, matches[0], "stdout", "-l", e.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 1<<10))
	}
	return string(out), nil
}
