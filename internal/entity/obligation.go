package entity

import "github.com/google/uuid"

// ObligationType distinguishes the two kinds of derived action items.
type ObligationType string

const (
	ObligationPayment ObligationType = "payment"
	ObligationDispute ObligationType = "dispute"
)

// Obligation is an actionable item derived from facts via fixed rules.
// Obligations are never edited in place by later stages.
type Obligation struct {
	ID           uuid.UUID      `json:"obligation_id"`
	DocumentID   uuid.UUID      `json:"document_id"`
	Type         ObligationType `json:"obligation_type"`
	Title        string         `json:"title"`
	DueDate      *string        `json:"due_date,omitempty"` // YYYY-MM-DD
	AmountCents  *int           `json:"amount_cents,omitempty"`
	Counterparty *string        `json:"counterparty_name,omitempty"`
	Status       string         `json:"status"`
	Confidence   float64        `json:"confidence"`
}
