package facts

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/riannazhu/doc/internal/llm"
)

// Extractor pulls structured fields with provenance from a bounded page
// window via the reasoning service.
type Extractor struct {
	chat      llm.ChatClient
	pageLimit int
	logger    *slog.Logger
}

// NewExtractor builds a fact extractor. pageLimit bounds how many leading
// pages are inspected (cost bound); later pages are never read.
func NewExtractor(chat llm.ChatClient, pageLimit int, logger *slog.Logger) *Extractor {
	if pageLimit <= 0 {
		pageLimit = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{chat: chat, pageLimit: pageLimit, logger: logger}
}

// Extract issues one structured request over the first pageLimit pages and
// parses the response. Every failure mode (service error, non-JSON content,
// schema violation) degrades to the all-empty default instead of erroring, so
// ingestion always has an input for the obligations step. The degraded flag
// and reason stay on the result so the caller can observe it.
func (e *Extractor) Extract(ctx context.Context, pages []string) llm.FactsResult {
	start := time.Now()

	window := pages
	if len(window) > e.pageLimit {
		window = window[:e.pageLimit]
	}

	raw, err := e.chat.ChatJSON(ctx, llm.FactsSystemPrompt, llm.BuildFactsUserPrompt(window))
	if err != nil {
		return e.degrade("reasoning service call failed", err, start)
	}

	if err := llm.ValidateJSONAgainstSchema(llm.BuildFactsJSONSchema(), raw); err != nil {
		return e.degrade("schema validation failed", err, start)
	}

	var facts llm.DocumentFacts
	if err := json.Unmarshal(raw, &facts); err != nil {
		return e.degrade("unmarshal facts", err, start)
	}
	if facts.Citations == nil {
		facts.Citations = []llm.Citation{}
	}

	e.logger.Info("facts.extract.ok",
		"pages_inspected", len(window),
		"has_amount", facts.AmountDueCents != nil,
		"has_due_date", facts.DueDateISO != nil,
		"late_fee_present", facts.LateFeeRule.IsPresent,
		"citations", len(facts.Citations),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.FactsResult{Facts: facts}
}

func (e *Extractor) degrade(reason string, err error, start time.Time) llm.FactsResult {
	e.logger.Warn("facts.extract.degraded",
		"reason", reason,
		"error", err,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.FactsResult{
		Facts:         llm.EmptyFacts(),
		Degraded:      true,
		FailureReason: reason + ": " + err.Error(),
	}
}
