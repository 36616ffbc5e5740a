package llm

import "context"

// LateFeeRule describes whether the document imposes a late fee and where.
type LateFeeRule struct {
	IsPresent   bool   `json:"is_present"`
	SourceQuote string `json:"source_quote"`
	PageGuess   *int   `json:"page_guess"`
}

// Citation ties one extracted field back to its source text.
type Citation struct {
	Field       string `json:"field"`
	SourceQuote string `json:"source_quote"`
	PageGuess   *int   `json:"page_guess"`
}

// DocumentFacts is the normalized shape we want from the LLM.
type DocumentFacts struct {
	AmountDueCents   *int64      `json:"amount_due_cents"`
	DueDateISO       *string     `json:"due_date_iso"` // YYYY-MM-DD
	CounterpartyName *string     `json:"counterparty_name"`
	LateFeeRule      LateFeeRule `json:"late_fee_rule"`
	Citations        []Citation  `json:"citations"`
}

// FactsResult is a tagged extraction outcome. Degraded is set when the
// reasoning service failed or returned unusable output; Facts then carries
// the all-empty default so downstream synthesis always has an input.
type FactsResult struct {
	Facts         DocumentFacts
	Degraded      bool
	FailureReason string
}

// EmptyFacts is the degraded-default fact structure.
func EmptyFacts() DocumentFacts {
	return DocumentFacts{
		LateFeeRule: LateFeeRule{IsPresent: false, SourceQuote: ""},
		Citations:   []Citation{},
	}
}

// ChatClient is the reasoning-service interface the pipeline depends on.
// Both calls request deterministic (lowest-variance) decoding.
type ChatClient interface {
	// ChatJSON requests a strict machine-parseable JSON object payload.
	ChatJSON(ctx context.Context, system, user string) ([]byte, error)
	// ChatText requests a free-text completion.
	ChatText(ctx context.Context, system, user string) (string, error)
}
