package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL creates the five core tables. The embedding dimension is fixed at
// index-build time; changing it requires a reindex of every document.
const schemaDDL = `
create extension if not exists vector;

create table if not exists document (
  document_id uuid primary key default gen_random_uuid(),
  user_id uuid not null,
  file_name text not null,
  storage_path text not null,
  detected_doc_type text,
  status text not null default 'received',
  created_at timestamptz not null default now()
);

create table if not exists document_page (
  page_id uuid primary key default gen_random_uuid(),
  document_id uuid not null references document(document_id) on delete cascade,
  page_number int not null,
  page_text text not null,
  unique (document_id, page_number)
);

create table if not exists document_embedding (
  embedding_id uuid primary key default gen_random_uuid(),
  document_id uuid not null references document(document_id) on delete cascade,
  page_number int not null,
  embedding vector(%d) not null,
  unique (document_id, page_number)
);

create index if not exists document_embedding_ivf
  on document_embedding using ivfflat (embedding vector_cosine_ops)
  with (lists = 100);

create table if not exists extracted_fact (
  fact_id uuid primary key default gen_random_uuid(),
  document_id uuid not null references document(document_id) on delete cascade,
  fact_type text not null,
  fact_value jsonb not null,
  confidence numeric,
  source_page int,
  source_quote text
);

create table if not exists obligation (
  obligation_id uuid primary key default gen_random_uuid(),
  document_id uuid not null references document(document_id) on delete cascade,
  obligation_type text not null,
  title text not null,
  due_date date,
  amount_cents int,
  counterparty_name text,
  status text not null default 'open',
  confidence numeric
);
`

// EnsureSchema creates the tables and the ANN index if they don't exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, dimension int, logger *slog.Logger) error {
	if _, err := pool.Exec(ctx, fmt.Sprintf(schemaDDL, dimension)); err != nil {
		logger.Error("schema setup failed", "error", err)
		return err
	}
	logger.Info("schema ensured", "embedding_dimension", dimension)
	return nil
}
