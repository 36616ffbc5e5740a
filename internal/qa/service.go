package qa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riannazhu/doc/internal/common"
	"github.com/riannazhu/doc/internal/embedding"
	"github.com/riannazhu/doc/internal/llm"
	"github.com/riannazhu/doc/internal/repository"
)

const (
	// topK bounds how many neighbouring pages feed the answer prompt.
	topK = 3
	// snippetMaxChars caps each page excerpt placed in the prompt.
	snippetMaxChars = 1200
	// citedPages is how many of the closest pages become citations.
	citedPages = 2
)

// Answer is the grounded response to one question about one document.
type Answer struct {
	Text      string `json:"answer"`
	CitedFrom []int  `json:"cited_pages"`
}

// Service answers natural-language questions about a single document using
// embedding retrieval over its stored pages.
type Service struct {
	pages    repository.PageRepository
	embedder embedding.Embedder
	chat     llm.ChatClient
	logger   *slog.Logger
}

func NewService(pages repository.PageRepository, embedder embedding.Embedder, chat llm.ChatClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{pages: pages, embedder: embedder, chat: chat, logger: logger}
}

// Explain embeds the question, retrieves the closest pages of the given
// document, and asks the reasoning service to answer from those snippets
// only. Retrieval and reasoning failures are hard errors; this path has no
// degraded mode.
func (s *Service) Explain(ctx context.Context, documentID uuid.UUID, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, common.NewAppError("EMPTY_QUESTION", "question must not be empty", common.ErrInvalidInput)
	}
	start := time.Now()

	vectors, err := s.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, common.WrapError(fmt.Errorf("%w: %v", common.ErrRetrieval, err), "embed question")
	}

	hits, err := s.pages.SearchPages(ctx, documentID, vectors[0], topK)
	if err != nil {
		return nil, common.WrapError(fmt.Errorf("%w: %v", common.ErrRetrieval, err), "search pages")
	}
	if len(hits) == 0 {
		return nil, common.NewAppError("NO_PAGES", "document has no indexed pages", common.ErrNotFound)
	}

	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[page %d] %s", h.PageNumber, truncate(h.Text, snippetMaxChars))
	}

	text, err := s.chat.ChatText(ctx, llm.QASystemPrompt, llm.BuildQAUserPrompt(question, b.String()))
	if err != nil {
		return nil, common.WrapError(fmt.Errorf("%w: %v", common.ErrExternalService, err), "answer question")
	}

	// Hits arrive ordered by distance, so the leading ones are the pages any
	// grounded answer most plausibly came from.
	n := citedPages
	if len(hits) < n {
		n = len(hits)
	}
	cited := make([]int, 0, n)
	for _, h := range hits[:n] {
		cited = append(cited, h.PageNumber)
	}

	s.logger.Info("qa.explain.ok",
		"document_id", documentID,
		"pages_retrieved", len(hits),
		"cited", cited,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Answer{Text: text, CitedFrom: cited}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
