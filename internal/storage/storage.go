package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/riannazhu/doc/constants"
)

// BlobStore uploads original document bytes to object storage.
// Uploads are idempotent: writing the same path twice overwrites.
type BlobStore interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) error
}

// ObjectPath derives the deterministic blob path for a document's source
// bytes so upload and row insert can be retried independently without
// collision.
func ObjectPath(userID, documentID uuid.UUID) string {
	return fmt.Sprintf("user_%s/%s/%s", userID, documentID, constants.SourceObjectName)
}
