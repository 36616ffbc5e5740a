package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/riannazhu/doc/internal/common"
	"github.com/riannazhu/doc/internal/entity"
)

type ObligationRepository interface {
	Insert(ctx context.Context, documentID uuid.UUID, obs []entity.Obligation) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]entity.Obligation, error)
}

type obligationRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewObligationRepository(pool *pgxpool.Pool, logger *slog.Logger) ObligationRepository {
	return &obligationRepository{pool: pool, logger: logger}
}

func (r *obligationRepository) Insert(ctx context.Context, documentID uuid.UUID, obs []entity.Obligation) error {
	for _, o := range obs {
		if _, err := r.pool.Exec(ctx,
			`insert into obligation (document_id, obligation_type, title, due_date, amount_cents, counterparty_name, status, confidence)
			 values ($1, $2, $3, $4, $5, $6, $7, $8)`,
			documentID, string(o.Type), o.Title, o.DueDate, o.AmountCents, o.Counterparty, o.Status, o.Confidence); err != nil {
			r.logger.Error("failed to insert obligation", "document_id", documentID, "type", o.Type, "error", err)
			return common.WrapError(err, "insert obligation")
		}
	}
	if len(obs) > 0 {
		r.logger.Info("obligations persisted", "document_id", documentID, "count", len(obs))
	}
	return nil
}

func (r *obligationRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]entity.Obligation, error) {
	rows, err := r.pool.Query(ctx,
		`select obligation_id, document_id, obligation_type, title,
		        to_char(due_date, 'YYYY-MM-DD'), amount_cents, counterparty_name, status, confidence
		 from obligation where document_id = $1`, documentID)
	if err != nil {
		r.logger.Error("failed to list obligations", "document_id", documentID, "error", err)
		return nil, common.WrapError(err, "list obligations")
	}
	defer rows.Close()

	var out []entity.Obligation
	for rows.Next() {
		var o entity.Obligation
		var typ string
		if err := rows.Scan(&o.ID, &o.DocumentID, &typ, &o.Title, &o.DueDate, &o.AmountCents, &o.Counterparty, &o.Status, &o.Confidence); err != nil {
			return nil, common.WrapError(err, "scan obligation")
		}
		o.Type = entity.ObligationType(typ)
		out = append(out, o)
	}
	return out, rows.Err()
}
