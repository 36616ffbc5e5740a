package obligations

import (
	"github.com/riannazhu/doc/internal/entity"
	"github.com/riannazhu/doc/internal/llm"
)

const (
	paymentConfidence = 0.9
	disputeConfidence = 0.7
)

// Synthesize turns one fact-extraction result into zero or more obligations
// via fixed deterministic rules. No external calls, no randomness; at most
// one payment and one dispute obligation per run. The degraded-default fact
// structure naturally yields no obligations.
func Synthesize(facts llm.DocumentFacts) []entity.Obligation {
	var out []entity.Obligation

	if facts.AmountDueCents != nil && facts.DueDateISO != nil {
		counterparty := "counterparty"
		if facts.CounterpartyName != nil && *facts.CounterpartyName != "" {
			counterparty = *facts.CounterpartyName
		}
		amount := int(*facts.AmountDueCents)
		due := *facts.DueDateISO
		out = append(out, entity.Obligation{
			Type:         entity.ObligationPayment,
			Title:        "Pay " + counterparty,
			DueDate:      &due,
			AmountCents:  &amount,
			Counterparty: facts.CounterpartyName,
			Status:       "open",
			Confidence:   paymentConfidence,
		})
	}

	if facts.LateFeeRule.IsPresent {
		out = append(out, entity.Obligation{
			Type:         entity.ObligationDispute,
			Title:        "Request late fee waiver",
			Counterparty: facts.CounterpartyName,
			Status:       "open",
			Confidence:   disputeConfidence,
		})
	}

	return out
}
