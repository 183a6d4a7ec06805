package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// ObjectWriter is the slice of the GCS client this sink needs.
type ObjectWriter interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// GCSBucket implements ObjectWriter against a Google Cloud Storage bucket.
// Authentication comes from Application Default Credentials.
type GCSBucket struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCSBucket builds the writer and verifies bucket access up front, so a
// misconfigured bucket fails at startup instead of at the first commit.
func NewGCSBucket(ctx context.Context, bucket string, logger *zap.Logger) (*GCSBucket, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("Failed to close GCS client after attrs check", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("check gcs bucket %q: %w", bucket, err)
	}
	return &GCSBucket{client: client, bucket: bucket, logger: logger}, nil
}

// Save uploads data to the named object.
func (b *GCSBucket) Save(ctx context.Context, objectName string, data []byte) error {
	wc := b.client.Bucket(b.bucket).Object(objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			b.logger.Warn("Failed to close GCS writer after write failure", zap.Error(closeErr))
		}
		return fmt.Errorf("write gcs object %s: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("finalize gcs object %s: %w", objectName, err)
	}
	return nil
}

// Close releases the underlying client.
func (b *GCSBucket) Close() error {
	return b.client.Close()
}

// GCS mirrors the snapshot to an object store.
type GCS struct {
	writer ObjectWriter
	object string
}

// NewGCS creates the sink over any object writer.
func NewGCS(writer ObjectWriter, object string) *GCS {
	return &GCS{writer: writer, object: object}
}

// Name identifies the sink in status reports.
func (s *GCS) Name() string { return "gcs" }

// Publish uploads the snapshot as a single JSON object.
func (s *GCS) Publish(ctx context.Context, header []string, rows [][]string) error {
	payload, err := json.Marshal(rowObjects(header, rows))
	if err != nil {
		return fmt.Errorf("marshal gcs snapshot: %w", err)
	}
	if err := s.writer.Save(ctx, s.object, payload); err != nil {
		return err
	}
	return nil
}
