package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/riannazhu/doc/internal/common"
	"github.com/riannazhu/doc/internal/entity"
)

// RetrievedPage is one nearest-neighbor hit for the QA path.
type RetrievedPage struct {
	PageNumber int     `json:"page_number"`
	Text       string  `json:"page_text"`
	Distance   float64 `json:"score"`
}

type PageRepository interface {
	// InsertPagesAndEmbeddings persists page texts and their vectors in one
	// transaction. len(pages) must equal len(vectors); page numbers are
	// assigned 1..N in slice order.
	InsertPagesAndEmbeddings(ctx context.Context, documentID uuid.UUID, pages []string, vectors [][]float32) error
	// SearchPages returns the k nearest pages of one document by cosine
	// distance, ascending. Vectors of other documents are never considered.
	SearchPages(ctx context.Context, documentID uuid.UUID, query []float32, k int) ([]RetrievedPage, error)
	ListPages(ctx context.Context, documentID uuid.UUID) ([]entity.Page, error)
}

type pageRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPageRepository(pool *pgxpool.Pool, logger *slog.Logger) PageRepository {
	return &pageRepository{pool: pool, logger: logger}
}

func (r *pageRepository) InsertPagesAndEmbeddings(ctx context.Context, documentID uuid.UUID, pages []string, vectors [][]float32) error {
	if len(pages) != len(vectors) {
		return common.NewAppError("PAGE_VECTOR_MISMATCH", "pages and vectors must have equal length", common.ErrInvalidInput)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return common.WrapError(err, "begin pages tx")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for i, text := range pages {
		if _, err := tx.Exec(ctx,
			`insert into document_page (document_id, page_number, page_text)
			 values ($1, $2, $3)`,
			documentID, i+1, text); err != nil {
			r.logger.Error("failed to insert page", "document_id", documentID, "page", i+1, "error", err)
			return common.WrapError(err, "insert page")
		}
	}
	for i, vec := range vectors {
		if _, err := tx.Exec(ctx,
			`insert into document_embedding (document_id, page_number, embedding)
			 values ($1, $2, $3)`,
			documentID, i+1, pgvector.NewVector(vec)); err != nil {
			r.logger.Error("failed to insert embedding", "document_id", documentID, "page", i+1, "error", err)
			return common.WrapError(err, "insert embedding")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return common.WrapError(err, "commit pages tx")
	}
	r.logger.Info("pages and embeddings persisted", "document_id", documentID, "pages", len(pages))
	return nil
}

func (r *pageRepository) SearchPages(ctx context.Context, documentID uuid.UUID, query []float32, k int) ([]RetrievedPage, error) {
	rows, err := r.pool.Query(ctx,
		`select dp.page_number, dp.page_text,
		        (de.embedding <=> $1) as cosine_distance
		 from document_embedding de
		 join document_page dp using (document_id, page_number)
		 where de.document_id = $2
		 order by de.embedding <=> $1
		 limit $3`,
		pgvector.NewVector(query), documentID, k)
	if err != nil {
		r.logger.Error("page search failed", "document_id", documentID, "error", err)
		return nil, common.WrapError(err, "search pages")
	}
	defer rows.Close()

	var out []RetrievedPage
	for rows.Next() {
		var p RetrievedPage
		if err := rows.Scan(&p.PageNumber, &p.Text, &p.Distance); err != nil {
			return nil, common.WrapError(err, "scan retrieved page")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pageRepository) ListPages(ctx context.Context, documentID uuid.UUID) ([]entity.Page, error) {
	rows, err := r.pool.Query(ctx,
		`select document_id, page_number, page_text
		 from document_page where document_id = $1 order by page_number`, documentID)
	if err != nil {
		r.logger.Error("failed to list pages", "document_id", documentID, "error", err)
		return nil, common.WrapError(err, "list pages")
	}
	defer rows.Close()

	var out []entity.Page
	for rows.Next() {
		var p entity.Page
		if err := rows.Scan(&p.DocumentID, &p.PageNumber, &p.Text); err != nil {
			return nil, common.WrapError(err, "scan page")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
