package videofiles

import (
	"context"

	"github.com/amankumarsingh77/video-ingest/internal/models"
)

// RedisRepository tracks pipeline job state for polling clients.
type RedisRepository interface {
	UpdateStatus(ctx context.Context, status *models.JobStatus) error
	GetJobStatus(ctx context.Context, jobID string) (*models.JobStatus, error)
}
