package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/riannazhu/doc/constants"
)

// Document represents one ingested document for data transfer between layers.
type Document struct {
	ID          uuid.UUID                `json:"document_id"`
	UserID      uuid.UUID                `json:"user_id"`
	FileName    string                   `json:"file_name"`
	StoragePath string                   `json:"storage_path"`
	DocType     *string                  `json:"detected_doc_type,omitempty"`
	Status      constants.DocumentStatus `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
}

// Page is one physical page of a document. PageNumber is 1-based and
// contiguous; Text is never null (empty string when nothing was recoverable).
type Page struct {
	DocumentID uuid.UUID `json:"document_id"`
	PageNumber int       `json:"page_number"`
	Text       string    `json:"page_text"`
}
