package repository

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/riannazhu/doc/internal/common"
	"github.com/riannazhu/doc/internal/entity"
	"github.com/riannazhu/doc/internal/llm"
)

type FactRepository interface {
	// InsertFacts flattens one extraction result into append-only typed rows.
	InsertFacts(ctx context.Context, documentID uuid.UUID, facts llm.DocumentFacts) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]entity.Fact, error)
}

type factRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewFactRepository(pool *pgxpool.Pool, logger *slog.Logger) FactRepository {
	return &factRepository{pool: pool, logger: logger}
}

func (r *factRepository) InsertFacts(ctx context.Context, documentID uuid.UUID, facts llm.DocumentFacts) error {
	ins := func(factType string, value any, page *int, quote *string) error {
		b, err := json.Marshal(value)
		if err != nil {
			return common.WrapError(err, "marshal fact value")
		}
		if _, err := r.pool.Exec(ctx,
			`insert into extracted_fact (document_id, fact_type, fact_value, source_page, source_quote)
			 values ($1, $2, $3, $4, $5)`,
			documentID, factType, b, page, quote); err != nil {
			r.logger.Error("failed to insert fact", "document_id", documentID, "fact_type", factType, "error", err)
			return common.WrapError(err, "insert fact")
		}
		return nil
	}

	count := 0
	if facts.AmountDueCents != nil {
		if err := ins("amount_due_cents", *facts.AmountDueCents, nil, nil); err != nil {
			return err
		}
		count++
	}
	if facts.DueDateISO != nil && *facts.DueDateISO != "" {
		if err := ins("due_date_iso", *facts.DueDateISO, nil, nil); err != nil {
			return err
		}
		count++
	}
	if facts.CounterpartyName != nil && *facts.CounterpartyName != "" {
		if err := ins("counterparty_name", *facts.CounterpartyName, nil, nil); err != nil {
			return err
		}
		count++
	}
	if err := ins("late_fee_rule", facts.LateFeeRule, facts.LateFeeRule.PageGuess, &facts.LateFeeRule.SourceQuote); err != nil {
		return err
	}
	count++
	for _, c := range facts.Citations {
		quote := c.SourceQuote
		if err := ins("citation::"+c.Field, c, c.PageGuess, &quote); err != nil {
			return err
		}
		count++
	}

	r.logger.Info("facts persisted", "document_id", documentID, "facts", count)
	return nil
}

func (r *factRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]entity.Fact, error) {
	rows, err := r.pool.Query(ctx,
		`select fact_id, document_id, fact_type, fact_value, confidence, source_page, source_quote
		 from extracted_fact where document_id = $1`, documentID)
	if err != nil {
		r.logger.Error("failed to list facts", "document_id", documentID, "error", err)
		return nil, common.WrapError(err, "list facts")
	}
	defer rows.Close()

	var out []entity.Fact
	for rows.Next() {
		var f entity.Fact
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.FactType, &f.FactValue, &f.Confidence, &f.SourcePage, &f.SourceQuote); err != nil {
			return nil, common.WrapError(err, "scan fact")
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
