package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/riannazhu/doc/internal/common"
	"github.com/riannazhu/doc/internal/embedding"
	"github.com/riannazhu/doc/internal/export"
	"github.com/riannazhu/doc/internal/extract"
	"github.com/riannazhu/doc/internal/facts"
	"github.com/riannazhu/doc/internal/llm/openai"
	"github.com/riannazhu/doc/internal/pipeline"
	"github.com/riannazhu/doc/internal/qa"
	"github.com/riannazhu/doc/internal/repository"
	"github.com/riannazhu/doc/internal/server"
	"github.com/riannazhu/doc/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := repository.EnsureSchema(ctx, pool, cfg.Embedding.Dimension, logger); err != nil {
		logger.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	blobs, err := storage.NewGCSStore(ctx, cfg.Storage.Bucket, logger)
	if err != nil {
		logger.Error("failed to init object storage", "error", err, "bucket", cfg.Storage.Bucket)
		os.Exit(1)
	}
	defer blobs.Close()

	docsRepo := repository.NewDocumentRepository(pool, logger)
	pagesRepo := repository.NewPageRepository(pool, logger)
	factsRepo := repository.NewFactRepository(pool, logger)
	obligationsRepo := repository.NewObligationRepository(pool, logger)

	extractor := extract.NewExtractor(extract.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Pdftoppm:      cfg.Extract.Pdftoppm,
		Tesseract:     cfg.Extract.Tesseract,
		TesseractLang: cfg.Extract.Lang,
		DPI:           cfg.Extract.DPI,
	}, logger)

	embedder := embedding.NewClient(embedding.Config{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   cfg.Embedding.Timeout,
	}, logger)

	chatClient := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	factsStage := facts.NewExtractor(chatClient, cfg.LLM.FactPageLimit, logger)

	ingestor := pipeline.NewIngestor(
		blobs, docsRepo, pagesRepo, factsRepo, obligationsRepo,
		extractor, embedder, factsStage, logger,
	)
	qaSvc := qa.NewService(pagesRepo, embedder, chatClient, logger)
	exportSvc := export.NewService(obligationsRepo, docsRepo, logger)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.New(ingestor, docsRepo, qaSvc, exportSvc, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("doc-manager listening", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
