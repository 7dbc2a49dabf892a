package videofiles

import (
	"context"

	"github.com/amankumarsingh77/video-ingest/internal/models"
)

// AWSRepository is the object store. Both operations are idempotent per key.
type AWSRepository interface {
	PutObject(ctx context.Context, input *models.UploadInput) (string, error)
	RemoveObject(ctx context.Context, bucket, key string) error
	PublicURL(bucket, key string) string
}
