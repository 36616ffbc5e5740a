package entity

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Fact is a single extracted, typed, citation-backed data point.
// Facts are append-only; a document may carry many facts of the same type.
type Fact struct {
	ID          uuid.UUID       `json:"fact_id"`
	DocumentID  uuid.UUID       `json:"document_id"`
	FactType    string          `json:"fact_type"`
	FactValue   json.RawMessage `json:"fact_value"`
	Confidence  *float64        `json:"confidence,omitempty"`
	SourcePage  *int            `json:"source_page,omitempty"`
	SourceQuote *string         `json:"source_quote,omitempty"`
}
