package qa

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/riannazhu/doc/internal/common"
	"github.com/riannazhu/doc/internal/entity"
	"github.com/riannazhu/doc/internal/repository"
)

type fakePages struct {
	hits []repository.RetrievedPage
	err  error

	gotK     int
	gotQuery []float32
	gotDoc   uuid.UUID
}

func (f *fakePages) InsertPagesAndEmbeddings(_ context.Context, _ uuid.UUID, _ []string, _ [][]float32) error {
	return nil
}

func (f *fakePages) SearchPages(_ context.Context, documentID uuid.UUID, query []float32, k int) ([]repository.RetrievedPage, error) {
	f.gotDoc = documentID
	f.gotQuery = query
	f.gotK = k
	return f.hits, f.err
}

func (f *fakePages) ListPages(_ context.Context, _ uuid.UUID) ([]entity.Page, error) {
	return nil, nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

type fakeChat struct {
	answer  string
	err     error
	gotUser string
}

func (f *fakeChat) ChatJSON(_ context.Context, _, _ string) ([]byte, error) {
	return nil, errors.New("not used")
}

func (f *fakeChat) ChatText(_ context.Context, _, user string) (string, error) {
	f.gotUser = user
	return f.answer, f.err
}

func newTestService(pages *fakePages, emb *fakeEmbedder, chat *fakeChat) *Service {
	return NewService(pages, emb, chat, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExplainCitesClosestPages(t *testing.T) {
	pages := &fakePages{hits: []repository.RetrievedPage{
		{PageNumber: 2, Text: "Amount due: $120.00", Distance: 0.05},
		{PageNumber: 1, Text: "Account statement for March", Distance: 0.11},
		{PageNumber: 4, Text: "Late fees apply after the 5th", Distance: 0.30},
	}}
	chat := &fakeChat{answer: "The amount due is $120.00 (page 2)."}
	svc := newTestService(pages, &fakeEmbedder{}, chat)

	docID := uuid.New()
	ans, err := svc.Explain(context.Background(), docID, "how much do I owe?")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if ans.Text != chat.answer {
		t.Errorf("answer = %q", ans.Text)
	}
	if len(ans.CitedFrom) != 2 || ans.CitedFrom[0] != 2 || ans.CitedFrom[1] != 1 {
		t.Errorf("cited pages = %v, want [2 1]", ans.CitedFrom)
	}
	if pages.gotK != 3 {
		t.Errorf("k = %d, want 3", pages.gotK)
	}
	if pages.gotDoc != docID {
		t.Errorf("searched document %s, want %s", pages.gotDoc, docID)
	}
}

func TestExplainPromptCarriesSnippets(t *testing.T) {
	pages := &fakePages{hits: []repository.RetrievedPage{
		{PageNumber: 3, Text: "Rent is due on the first of each month.", Distance: 0.02},
	}}
	chat := &fakeChat{answer: "Rent is due on the first."}
	svc := newTestService(pages, &fakeEmbedder{}, chat)

	if _, err := svc.Explain(context.Background(), uuid.New(), "when is rent due?"); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if !strings.Contains(chat.gotUser, "[page 3] Rent is due") {
		t.Errorf("prompt missing snippet marker:\n%s", chat.gotUser)
	}
	if !strings.Contains(chat.gotUser, "when is rent due?") {
		t.Errorf("prompt missing question:\n%s", chat.gotUser)
	}
}

func TestExplainTruncatesLongPages(t *testing.T) {
	long := strings.Repeat("x", 5000)
	pages := &fakePages{hits: []repository.RetrievedPage{
		{PageNumber: 1, Text: long, Distance: 0.1},
	}}
	chat := &fakeChat{answer: "ok"}
	svc := newTestService(pages, &fakeEmbedder{}, chat)

	if _, err := svc.Explain(context.Background(), uuid.New(), "q?"); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if strings.Contains(chat.gotUser, strings.Repeat("x", snippetMaxChars+1)) {
		t.Error("snippet exceeds the per-page cap")
	}
	if !strings.Contains(chat.gotUser, strings.Repeat("x", snippetMaxChars)) {
		t.Error("snippet was over-truncated")
	}
}

func TestExplainSinglePageCitation(t *testing.T) {
	pages := &fakePages{hits: []repository.RetrievedPage{
		{PageNumber: 1, Text: "only page", Distance: 0.1},
	}}
	svc := newTestService(pages, &fakeEmbedder{}, &fakeChat{answer: "a"})

	ans, err := svc.Explain(context.Background(), uuid.New(), "q?")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if len(ans.CitedFrom) != 1 || ans.CitedFrom[0] != 1 {
		t.Errorf("cited pages = %v, want [1]", ans.CitedFrom)
	}
}

func TestExplainEmptyQuestion(t *testing.T) {
	svc := newTestService(&fakePages{}, &fakeEmbedder{}, &fakeChat{})
	_, err := svc.Explain(context.Background(), uuid.New(), "   ")
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestExplainNoIndexedPages(t *testing.T) {
	svc := newTestService(&fakePages{}, &fakeEmbedder{}, &fakeChat{})
	_, err := svc.Explain(context.Background(), uuid.New(), "q?")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestExplainFailuresPropagate(t *testing.T) {
	t.Run("embedding", func(t *testing.T) {
		svc := newTestService(&fakePages{}, &fakeEmbedder{err: errors.New("down")}, &fakeChat{})
		if _, err := svc.Explain(context.Background(), uuid.New(), "q?"); !errors.Is(err, common.ErrRetrieval) {
			t.Fatalf("err = %v, want retrieval", err)
		}
	})
	t.Run("search", func(t *testing.T) {
		svc := newTestService(&fakePages{err: errors.New("db down")}, &fakeEmbedder{}, &fakeChat{})
		if _, err := svc.Explain(context.Background(), uuid.New(), "q?"); !errors.Is(err, common.ErrRetrieval) {
			t.Fatalf("err = %v, want retrieval", err)
		}
	})
	t.Run("chat", func(t *testing.T) {
		pages := &fakePages{hits: []repository.RetrievedPage{{PageNumber: 1, Text: "t", Distance: 0}}}
		svc := newTestService(pages, &fakeEmbedder{}, &fakeChat{err: errors.New("llm down")})
		if _, err := svc.Explain(context.Background(), uuid.New(), "q?"); !errors.Is(err, common.ErrExternalService) {
			t.Fatalf("err = %v, want external service", err)
		}
	})
}
