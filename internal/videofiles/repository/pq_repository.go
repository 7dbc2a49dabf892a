package repository

import (
	"context"
	"database/sql"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type videoRepo struct {
	db *sqlx.DB
}

func NewVideoRepo(db *sqlx.DB) videofiles.Repository {
	return &videoRepo{
		db: db,
	}
}

func (v *videoRepo) CreateVideo(ctx context.Context, entry *models.CatalogEntry) (*models.CatalogEntry, error) {
	video := &models.CatalogEntry{}
	if err := v.db.QueryRowxContext(
		ctx,
		createVideoQuery,
		entry.Title,
		entry.Description,
		entry.Genre,
		entry.VideoURL,
		entry.ThumbnailURL,
		entry.Views,
	).StructScan(video); err != nil {
		return nil, errors.Wrap(err, "videoRepo.CreateVideo.QueryRowxContext")
	}
	return video, nil
}

func (v *videoRepo) GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.CatalogEntry, error) {
	video := &models.CatalogEntry{}
	if err := v.db.QueryRowxContext(
		ctx,
		getVideoByIDQuery,
		videoID,
	).StructScan(video); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, videofiles.ErrNotFound
		}
		return nil, errors.Wrap(err, "videoRepo.GetVideoByID.QueryRowxContext")
	}
	return video, nil
}
