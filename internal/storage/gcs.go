package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	gcs "cloud.google.com/go/storage"

	"github.com/riannazhu/doc/internal/common"
)

// GCSStore stores one blob per document in a Google Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	name   string
	logger *slog.Logger
}

func NewGCSStore(ctx context.Context, bucketName string, logger *slog.Logger) (*GCSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, common.WrapError(err, "create storage client")
	}
	return &GCSStore{
		client: client,
		bucket: client.Bucket(bucketName),
		name:   bucketName,
		logger: logger,
	}, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// Upload writes the object, overwriting any existing blob at the same path.
// The path is derived from (user id, document id), so a retried ingestion
// lands on the same object.
func (s *GCSStore) Upload(ctx context.Context, objectPath, contentType string, data []byte) error {
	start := time.Now()

	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		s.logger.Error("storage.upload.failed", "bucket", s.name, "object", objectPath, "error", err)
		return common.WrapError(fmt.Errorf("%w: %v", common.ErrStorage, err), "write object")
	}
	if err := w.Close(); err != nil {
		s.logger.Error("storage.upload.close_failed", "bucket", s.name, "object", objectPath, "error", err)
		return common.WrapError(fmt.Errorf("%w: %v", common.ErrStorage, err), "finalize object")
	}

	s.logger.Info("storage.upload.ok",
		"bucket", s.name,
		"object", objectPath,
		"bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
