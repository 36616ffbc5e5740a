package llm

import (
	"fmt"
	"strings"
)

// FactsSystemPrompt constrains the extraction response to the facts schema.
const FactsSystemPrompt = `You extract fields from bills/leases.
Return ONLY valid JSON with these keys:
{
  "amount_due_cents": <int or null>,
  "due_date_iso": "<YYYY-MM-DD or null>",
  "counterparty_name": "<string or null>",
  "late_fee_rule": {
    "is_present": <true|false>,
    "source_quote": "<short quote or ''>",
    "page_guess": <int or null>
  },
  "citations": [
    {"field": "amount_due_cents", "source_quote": "...", "page_guess": 1},
    {"field": "due_date_iso", "source_quote": "...", "page_guess": 1}
  ]
}`

// BuildFactsUserPrompt packages the bounded page window with page markers so
// the model can produce page_guess values.
func BuildFactsUserPrompt(pages []string) string {
	var b strings.Builder
	b.WriteString("Document text (first pages):\n")
	for i, t := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "<<PAGE %d>>\n%s", i+1, t)
	}
	b.WriteString("\n\nReturn JSON only.")
	return b.String()
}

// QASystemPrompt pins the answering path to the retrieved snippets.
const QASystemPrompt = "You answer questions strictly from provided context."

// BuildQAUserPrompt composes the retrieval-augmented question prompt from
// already-truncated page snippets.
func BuildQAUserPrompt(question string, snippets string) string {
	return fmt.Sprintf(`Answer the user question using ONLY the provided snippets.
If unknown, say you cannot find it in this document.
Include 1-2 short citations with page numbers.

Question: %q

Snippets:
%s
`, question, snippets)
}
