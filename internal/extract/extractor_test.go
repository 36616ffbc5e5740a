package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stubRunner fakes pdftotext/pdftoppm/tesseract. The pdftoppm stub writes the
// expected PNG so the glob in ocrPage finds it.
type stubRunner struct {
	textOut  string
	textErr  error
	ocrTexts map[int]string // page number -> tesseract output
	calls    []string
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name)
	switch {
	case strings.Contains(name, "pdftotext"):
		if s.textErr != nil {
			return nil, []byte("syntax error"), s.textErr
		}
		return []byte(s.textOut), nil, nil
	case strings.Contains(name, "pdftoppm"):
		prefix := args[len(args)-1]
		page := args[len(args)-4] // value of -f
		if err := os.WriteFile(prefix+"-"+page+".png", []byte("png"), 0o600); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	case strings.Contains(name, "tesseract"):
		img := filepath.Base(args[0]) // page-N-N.png
		var page int
		fmt.Sscanf(img, "page-%d", &page)
		return []byte(s.ocrTexts[page]), nil, nil
	}
	return nil, nil, errors.New("unexpected command: " + name)
}

func newTestExtractor(r Runner) *Extractor {
	e := NewExtractor(Config{}, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	e.runner = r
	return e
}

func TestExtractPagesTextLayer(t *testing.T) {
	r := &stubRunner{textOut: "page one text\fpage two text\f"}
	e := newTestExtractor(r)

	pages, err := e.ExtractPages(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0] != "page one text" || pages[1] != "page two text" {
		t.Errorf("unexpected pages: %q", pages)
	}
	for _, c := range r.calls {
		if strings.Contains(c, "tesseract") {
			t.Error("OCR ran for pages with a text layer")
		}
	}
}

func TestExtractPagesOCRFallback(t *testing.T) {
	r := &stubRunner{
		textOut:  "first page\f   \fthird page\f",
		ocrTexts: map[int]string{2: "  scanned content  "},
	}
	e := newTestExtractor(r)

	pages, err := e.ExtractPages(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	want := []string{"first page", "scanned content", "third page"}
	if len(pages) != len(want) {
		t.Fatalf("got %d pages, want %d", len(pages), len(want))
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("page %d = %q, want %q", i+1, pages[i], want[i])
		}
	}
}

func TestExtractPagesOCRYieldsNothing(t *testing.T) {
	// A page where both the text layer and OCR come back empty still occupies
	// its slot as "".
	r := &stubRunner{
		textOut:  "has text\f\f",
		ocrTexts: map[int]string{2: "   "},
	}
	e := newTestExtractor(r)

	pages, err := e.ExtractPages(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[1] != "" {
		t.Errorf("page 2 = %q, want empty string", pages[1])
	}
}

func TestExtractPagesMalformedPDF(t *testing.T) {
	r := &stubRunner{textErr: errors.New("exit status 1")}
	e := newTestExtractor(r)

	if _, err := e.ExtractPages(context.Background(), []byte("not a pdf")); err == nil {
		t.Fatal("expected hard failure for malformed input")
	}
}

func TestExtractPagesDeterministic(t *testing.T) {
	mk := func() *stubRunner {
		return &stubRunner{
			textOut:  "alpha\f\fgamma\f",
			ocrTexts: map[int]string{2: "beta"},
		}
	}
	first, err := newTestExtractor(mk()).ExtractPages(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := newTestExtractor(mk()).ExtractPages(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("page counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("page %d differs: %q vs %q", i+1, first[i], second[i])
		}
	}
}
