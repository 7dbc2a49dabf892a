package videofiles

import (
	"context"
	"errors"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown jobs and videos.
var ErrNotFound = errors.New("not found")

type UseCase interface {
	UploadVideo(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.CatalogEntry, error)
	SubmitVideo(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.JobStatus, error)
	GetJobStatus(ctx context.Context, jobID string) (*models.JobStatus, error)
	GetVideo(ctx context.Context, videoID uuid.UUID) (*models.CatalogEntry, error)
}
