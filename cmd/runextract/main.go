package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/riannazhu/doc/internal/classify"
	"github.com/riannazhu/doc/internal/extract"
)

// runextract runs the page extraction and classification stages on a local
// PDF without touching the database or object storage. Useful for checking
// the poppler/tesseract toolchain on a new machine.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <path-to-pdf>")
		os.Exit(2)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("read file", "path", os.Args[1], "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	extractor := extract.NewExtractor(extract.Config{}, logger)

	start := time.Now()
	pages, err := extractor.ExtractPages(ctx, data)
	if err != nil {
		logger.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	nonEmpty := 0
	for _, p := range pages {
		if p != "" {
			nonEmpty++
		}
	}
	docType, confidence := classify.DetectDocType(pages)

	logger.Info("extraction OK",
		"pages", len(pages),
		"non_empty_pages", nonEmpty,
		"doc_type", docType,
		"confidence", confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
