package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/riannazhu/doc/constants"
	"github.com/riannazhu/doc/internal/classify"
	"github.com/riannazhu/doc/internal/embedding"
	"github.com/riannazhu/doc/internal/entity"
	"github.com/riannazhu/doc/internal/extract"
	"github.com/riannazhu/doc/internal/llm"
	"github.com/riannazhu/doc/internal/obligations"
	"github.com/riannazhu/doc/internal/repository"
	"github.com/riannazhu/doc/internal/storage"
)

// FactsExtractor lets tests substitute the LLM-backed fact extraction stage.
type FactsExtractor interface {
	Extract(ctx context.Context, pages []string) llm.FactsResult
}

// Ingestor sequences the ingestion stages for one document and manages its
// status transitions. One call is one sequential flow; independent documents
// may ingest concurrently sharing only the pooled clients underneath.
type Ingestor struct {
	Blobs       storage.BlobStore
	Docs        repository.DocumentRepository
	Pages       repository.PageRepository
	Facts       repository.FactRepository
	Obligations repository.ObligationRepository
	Extractor   extract.TextExtractor
	Embedder    embedding.Embedder
	FactsStage  FactsExtractor
	Logger      *slog.Logger
}

func NewIngestor(
	blobs storage.BlobStore,
	docs repository.DocumentRepository,
	pages repository.PageRepository,
	factsRepo repository.FactRepository,
	obs repository.ObligationRepository,
	tx extract.TextExtractor,
	emb embedding.Embedder,
	factsStage FactsExtractor,
	logger *slog.Logger,
) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		Blobs:       blobs,
		Docs:        docs,
		Pages:       pages,
		Facts:       factsRepo,
		Obligations: obs,
		Extractor:   tx,
		Embedder:    emb,
		FactsStage:  factsStage,
		Logger:      logger,
	}
}

// Ingest runs the full pipeline: upload -> document row (received) ->
// page extraction -> embeddings -> classification (extracting) -> facts ->
// obligations (processed). Storage, database and embedding failures abort
// the flow and leave the document at its last durably written status;
// a degraded fact extraction never aborts.
func (p *Ingestor) Ingest(ctx context.Context, userID uuid.UUID, fileName, contentType string, fileBytes []byte) (uuid.UUID, error) {
	start := time.Now()

	// Identity first: the storage path derives from it, so upload and row
	// insert can be retried on the same path without collision.
	documentID := uuid.New()
	objectPath := storage.ObjectPath(userID, documentID)

	p.Logger.Info("pipeline.ingest.start",
		"document_id", documentID,
		"user_id", userID,
		"file_name", fileName,
		"bytes", len(fileBytes),
	)

	if err := p.Blobs.Upload(ctx, objectPath, contentType, fileBytes); err != nil {
		p.Logger.Error("pipeline.upload.failed", "document_id", documentID, "error", err)
		return uuid.Nil, err
	}

	doc := &entity.Document{
		ID:          documentID,
		UserID:      userID,
		FileName:    fileName,
		StoragePath: objectPath,
		Status:      constants.StatusReceived,
	}
	if err := p.Docs.Insert(ctx, doc); err != nil {
		p.Logger.Error("pipeline.document_insert.failed", "document_id", documentID, "error", err)
		return uuid.Nil, err
	}

	pages, err := p.Extractor.ExtractPages(ctx, fileBytes)
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "document_id", documentID, "error", err)
		return documentID, err
	}

	vectors, err := p.Embedder.EmbedBatch(ctx, pages)
	if err != nil {
		// Silently substituting placeholder vectors would corrupt retrieval,
		// so an embedding failure aborts the flow.
		p.Logger.Error("pipeline.embed.failed", "document_id", documentID, "pages", len(pages), "error", err)
		return documentID, err
	}

	if err := p.Pages.InsertPagesAndEmbeddings(ctx, documentID, pages, vectors); err != nil {
		p.Logger.Error("pipeline.persist_pages.failed", "document_id", documentID, "error", err)
		return documentID, err
	}

	docType, typeConf := classify.DetectDocType(pages)
	if err := p.Docs.UpdateTypeAndStatus(ctx, documentID, docType, constants.StatusExtracting); err != nil {
		return documentID, err
	}
	p.Logger.Info("pipeline.classified",
		"document_id", documentID,
		"doc_type", docType,
		"confidence", typeConf,
		"pages", len(pages),
	)

	res := p.FactsStage.Extract(ctx, pages)
	if res.Degraded {
		p.Logger.Warn("pipeline.facts.degraded", "document_id", documentID, "reason", res.FailureReason)
	}
	if err := p.Facts.InsertFacts(ctx, documentID, res.Facts); err != nil {
		return documentID, err
	}

	obs := obligations.Synthesize(res.Facts)
	if err := p.Obligations.Insert(ctx, documentID, obs); err != nil {
		return documentID, err
	}

	if err := p.Docs.UpdateTypeAndStatus(ctx, documentID, docType, constants.StatusProcessed); err != nil {
		return documentID, err
	}

	p.Logger.Info("pipeline.ingest.ok",
		"document_id", documentID,
		"doc_type", docType,
		"pages", len(pages),
		"obligations", len(obs),
		"facts_degraded", res.Degraded,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return documentID, nil
}
