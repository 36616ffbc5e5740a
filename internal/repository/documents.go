package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/riannazhu/doc/constants"
	"github.com/riannazhu/doc/internal/common"
	"github.com/riannazhu/doc/internal/entity"
)

type DocumentRepository interface {
	Insert(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	UpdateTypeAndStatus(ctx context.Context, id uuid.UUID, docType constants.DocType, status constants.DocumentStatus) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Document, error)
}

type documentRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, logger *slog.Logger) DocumentRepository {
	return &documentRepository{pool: pool, logger: logger}
}

func (r *documentRepository) Insert(ctx context.Context, doc *entity.Document) error {
	_, err := r.pool.Exec(ctx,
		`insert into document (document_id, user_id, file_name, storage_path, status)
		 values ($1, $2, $3, $4, $5)`,
		doc.ID, doc.UserID, doc.FileName, doc.StoragePath, string(doc.Status))
	if err != nil {
		r.logger.Error("failed to insert document", "document_id", doc.ID, "error", err)
		return common.WrapError(err, "insert document")
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx,
		`select document_id, user_id, file_name, storage_path, detected_doc_type, status, created_at
		 from document where document_id = $1`, id)

	var d entity.Document
	var status string
	if err := row.Scan(&d.ID, &d.UserID, &d.FileName, &d.StoragePath, &d.DocType, &status, &d.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get document", "document_id", id, "error", err)
		return nil, common.WrapError(err, "get document")
	}
	d.Status = constants.DocumentStatus(status)
	return &d, nil
}

// UpdateTypeAndStatus advances the lifecycle. Transitions are forward-only;
// the pipeline sequences them and this update refuses a regression.
func (r *documentRepository) UpdateTypeAndStatus(ctx context.Context, id uuid.UUID, docType constants.DocType, status constants.DocumentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`update document set detected_doc_type = $1, status = $2
		 where document_id = $3
		   and case status
		         when 'received' then 0
		         when 'extracting' then 1
		         when 'processed' then 2
		       end < case $2
		         when 'extracting' then 1
		         when 'processed' then 2
		         else 0
		       end`,
		string(docType), string(status), id)
	if err != nil {
		r.logger.Error("failed to update document status", "document_id", id, "status", status, "error", err)
		return common.WrapError(err, "update document status")
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("document status transition rejected", "document_id", id, "to", status)
		return common.NewAppError("STATUS_REGRESSION", "document status may only move forward", common.ErrInvalidInput)
	}
	return nil
}

func (r *documentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Document, error) {
	rows, err := r.pool.Query(ctx,
		`select document_id, user_id, file_name, storage_path, detected_doc_type, status, created_at
		 from document where user_id = $1 order by created_at desc`, userID)
	if err != nil {
		r.logger.Error("failed to list documents", "user_id", userID, "error", err)
		return nil, common.WrapError(err, "list documents")
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		var d entity.Document
		var status string
		if err := rows.Scan(&d.ID, &d.UserID, &d.FileName, &d.StoragePath, &d.DocType, &status, &d.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan document")
		}
		d.Status = constants.DocumentStatus(status)
		out = append(out, &d)
	}
	return out, rows.Err()
}
