package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/riannazhu/doc/constants"
	"github.com/riannazhu/doc/internal/entity"
	"github.com/riannazhu/doc/internal/llm"
	"github.com/riannazhu/doc/internal/repository"
)

type fakeBlobs struct {
	paths []string
	err   error
}

func (f *fakeBlobs) Upload(_ context.Context, objectPath, _ string, _ []byte) error {
	if f.err != nil {
		return f.err
	}
	f.paths = append(f.paths, objectPath)
	return nil
}

type fakeDocs struct {
	inserted *entity.Document
	statuses []constants.DocumentStatus
	docType  constants.DocType
}

func (f *fakeDocs) Insert(_ context.Context, doc *entity.Document) error {
	f.inserted = doc
	f.statuses = append(f.statuses, doc.Status)
	return nil
}

func (f *fakeDocs) GetByID(_ context.Context, _ uuid.UUID) (*entity.Document, error) {
	return f.inserted, nil
}

func (f *fakeDocs) UpdateTypeAndStatus(_ context.Context, _ uuid.UUID, docType constants.DocType, status constants.DocumentStatus) error {
	f.docType = docType
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeDocs) ListByUser(_ context.Context, _ uuid.UUID) ([]*entity.Document, error) {
	return nil, nil
}

type fakePages struct {
	pages   []string
	vectors [][]float32
}

func (f *fakePages) InsertPagesAndEmbeddings(_ context.Context, _ uuid.UUID, pages []string, vectors [][]float32) error {
	f.pages = pages
	f.vectors = vectors
	return nil
}

func (f *fakePages) SearchPages(_ context.Context, _ uuid.UUID, _ []float32, _ int) ([]repository.RetrievedPage, error) {
	return nil, nil
}

func (f *fakePages) ListPages(_ context.Context, _ uuid.UUID) ([]entity.Page, error) {
	return nil, nil
}

type fakeFactsRepo struct {
	stored *llm.DocumentFacts
}

func (f *fakeFactsRepo) InsertFacts(_ context.Context, _ uuid.UUID, facts llm.DocumentFacts) error {
	f.stored = &facts
	return nil
}

func (f *fakeFactsRepo) ListByDocument(_ context.Context, _ uuid.UUID) ([]entity.Fact, error) {
	return nil, nil
}

type fakeObsRepo struct {
	stored []entity.Obligation
}

func (f *fakeObsRepo) Insert(_ context.Context, _ uuid.UUID, obs []entity.Obligation) error {
	f.stored = obs
	return nil
}

func (f *fakeObsRepo) ListByDocument(_ context.Context, _ uuid.UUID) ([]entity.Obligation, error) {
	return f.stored, nil
}

type fakeExtractor struct {
	pages []string
	err   error
}

func (f *fakeExtractor) ExtractPages(_ context.Context, _ []byte) ([]string, error) {
	return f.pages, f.err
}

type fakeEmbedder struct {
	dim int
	err error
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

type fakeFactsStage struct {
	result llm.FactsResult
}

func (f *fakeFactsStage) Extract(_ context.Context, _ []string) llm.FactsResult {
	return f.result
}

func i64(v int64) *int64 { return &v }
func str(v string) *string { return &v }

func newTestIngestor(docs *fakeDocs, blobs *fakeBlobs, pages *fakePages, factsRepo *fakeFactsRepo, obsRepo *fakeObsRepo, ex *fakeExtractor, emb *fakeEmbedder, fs *fakeFactsStage) *Ingestor {
	return NewIngestor(blobs, docs, pages, factsRepo, obsRepo, ex, emb, fs,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIngestHappyPath(t *testing.T) {
	docs := &fakeDocs{}
	blobs := &fakeBlobs{}
	pages := &fakePages{}
	factsRepo := &fakeFactsRepo{}
	obsRepo := &fakeObsRepo{}
	ex := &fakeExtractor{pages: []string{"Account statement. Amount due: $120.00", "Remit by March 1."}}
	emb := &fakeEmbedder{dim: 4}
	fs := &fakeFactsStage{result: llm.FactsResult{
		Facts: llm.DocumentFacts{
			AmountDueCents:   i64(12000),
			DueDateISO:       str("2025-03-01"),
			CounterpartyName: str("Acme Utilities"),
			Citations:        []llm.Citation{},
		},
	}}

	userID := uuid.New()
	p := newTestIngestor(docs, blobs, pages, factsRepo, obsRepo, ex, emb, fs)
	docID, err := p.Ingest(context.Background(), userID, "bill.pdf", "application/pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if docID == uuid.Nil {
		t.Fatal("got nil document id")
	}

	wantPath := "user_" + userID.String() + "/" + docID.String() + "/" + constants.SourceObjectName
	if len(blobs.paths) != 1 || blobs.paths[0] != wantPath {
		t.Errorf("uploaded paths = %v, want [%s]", blobs.paths, wantPath)
	}

	wantStatuses := []constants.DocumentStatus{
		constants.StatusReceived,
		constants.StatusExtracting,
		constants.StatusProcessed,
	}
	if len(docs.statuses) != len(wantStatuses) {
		t.Fatalf("statuses = %v, want %v", docs.statuses, wantStatuses)
	}
	for i, s := range wantStatuses {
		if docs.statuses[i] != s {
			t.Errorf("status[%d] = %s, want %s", i, docs.statuses[i], s)
		}
	}

	if docs.docType != constants.DocTypeBill {
		t.Errorf("doc_type = %s, want bill", docs.docType)
	}
	if len(pages.pages) != 2 || len(pages.vectors) != 2 {
		t.Errorf("persisted %d pages / %d vectors, want 2/2", len(pages.pages), len(pages.vectors))
	}
	if factsRepo.stored == nil || factsRepo.stored.AmountDueCents == nil {
		t.Fatal("facts were not persisted")
	}
	if len(obsRepo.stored) != 1 || obsRepo.stored[0].Type != entity.ObligationPayment {
		t.Errorf("obligations = %+v, want one payment", obsRepo.stored)
	}
}

func TestIngestEmbeddingFailureAborts(t *testing.T) {
	docs := &fakeDocs{}
	pages := &fakePages{}
	ex := &fakeExtractor{pages: []string{"lease agreement"}}
	emb := &fakeEmbedder{err: errors.New("embedding service unavailable")}
	p := newTestIngestor(docs, &fakeBlobs{}, pages, &fakeFactsRepo{}, &fakeObsRepo{}, ex, emb, &fakeFactsStage{})

	_, err := p.Ingest(context.Background(), uuid.New(), "a.pdf", "application/pdf", []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	// Flow stops before any pages are written; the document row keeps the
	// last status it actually reached.
	if pages.pages != nil {
		t.Errorf("pages persisted despite embedding failure: %v", pages.pages)
	}
	if got := docs.statuses; len(got) != 1 || got[0] != constants.StatusReceived {
		t.Errorf("statuses = %v, want [received]", got)
	}
}

func TestIngestExtractFailureAborts(t *testing.T) {
	docs := &fakeDocs{}
	ex := &fakeExtractor{err: errors.New("pdftotext: malformed file")}
	p := newTestIngestor(docs, &fakeBlobs{}, &fakePages{}, &fakeFactsRepo{}, &fakeObsRepo{}, ex, &fakeEmbedder{dim: 4}, &fakeFactsStage{})

	docID, err := p.Ingest(context.Background(), uuid.New(), "a.pdf", "application/pdf", []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if docID == uuid.Nil {
		t.Error("expected the created document id even on failure")
	}
	if got := docs.statuses; len(got) != 1 || got[0] != constants.StatusReceived {
		t.Errorf("statuses = %v, want [received]", got)
	}
}

func TestIngestDegradedFactsStillProcessed(t *testing.T) {
	docs := &fakeDocs{}
	factsRepo := &fakeFactsRepo{}
	obsRepo := &fakeObsRepo{}
	ex := &fakeExtractor{pages: []string{"unreadable scan"}}
	fs := &fakeFactsStage{result: llm.FactsResult{
		Facts:         llm.EmptyFacts(),
		Degraded:      true,
		FailureReason: "invalid JSON",
	}}
	p := newTestIngestor(docs, &fakeBlobs{}, &fakePages{}, factsRepo, obsRepo, ex, &fakeEmbedder{dim: 4}, fs)

	_, err := p.Ingest(context.Background(), uuid.New(), "scan.pdf", "application/pdf", []byte("x"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got := docs.statuses[len(docs.statuses)-1]; got != constants.StatusProcessed {
		t.Errorf("final status = %s, want processed", got)
	}
	if factsRepo.stored == nil {
		t.Fatal("degraded default facts must still be persisted")
	}
	if factsRepo.stored.AmountDueCents != nil {
		t.Error("degraded facts should carry no amount")
	}
	if len(obsRepo.stored) != 0 {
		t.Errorf("obligations = %+v, want none", obsRepo.stored)
	}
}

func TestIngestUploadFailureLeavesNoRow(t *testing.T) {
	docs := &fakeDocs{}
	blobs := &fakeBlobs{err: errors.New("bucket unreachable")}
	p := newTestIngestor(docs, blobs, &fakePages{}, &fakeFactsRepo{}, &fakeObsRepo{}, &fakeExtractor{}, &fakeEmbedder{dim: 4}, &fakeFactsStage{})

	_, err := p.Ingest(context.Background(), uuid.New(), "a.pdf", "application/pdf", []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if docs.inserted != nil {
		t.Error("document row inserted despite upload failure")
	}
}
