package worker

import (
	"context"
	"strings"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/pkg/utils"
)

// Receive validates an upload request. It performs no I/O.
func Receive(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.RawUpload, error) {
	if video == nil || video.Open == nil {
		return nil, wrap(ErrValidation, "", "video file is required", nil)
	}
	if thumbnail == nil || thumbnail.Open == nil {
		return nil, wrap(ErrValidation, "", "thumbnail file is required", nil)
	}

	meta.Title = strings.TrimSpace(meta.Title)
	meta.Description = strings.TrimSpace(meta.Description)
	meta.Genre = models.Genre(strings.ToLower(strings.TrimSpace(string(meta.Genre))))
	if meta.Genre == "" {
		meta.Genre = models.GenreUnclassified
	}
	if err := utils.ValidateStruct(ctx, meta); err != nil {
		return nil, wrap(ErrValidation, "", "invalid fields", err)
	}

	return &models.RawUpload{
		VideoMeta: meta,
		Video:     video,
		Thumbnail: thumbnail,
	}, nil
}
