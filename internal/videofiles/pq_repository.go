package videofiles

import (
	"context"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/google/uuid"
)

// Repository is the catalog collaborator.
type Repository interface {
	CreateVideo(ctx context.Context, entry *models.CatalogEntry) (*models.CatalogEntry, error)
	GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.CatalogEntry, error)
}
