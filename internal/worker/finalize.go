package worker

import (
	"context"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/amankumarsingh77/video-ingest/pkg/utils"
)

type Finalizer struct {
	videoRepo videofiles.Repository
	cleanup   *Cleanup
}

func NewFinalizer(videoRepo videofiles.Repository, cleanup *Cleanup) *Finalizer {
	return &Finalizer{videoRepo: videoRepo, cleanup: cleanup}
}

// Finalize writes the catalog record for a job in finalizing state. If the write fails the
// stored artifacts are compensated before the error is returned.
func (f *Finalizer) Finalize(ctx context.Context, job *models.TranscodeJob, uploaded *UploadResult) (*models.CatalogEntry, error) {
	entry := &models.CatalogEntry{
		Title:        job.Meta.Title,
		Description:  job.Meta.Description,
		Genre:        job.Meta.Genre,
		VideoURL:     uploaded.PlaylistURL,
		ThumbnailURL: uploaded.ThumbnailURL,
		Views:        0,
	}
	if err := utils.ValidateStruct(ctx, entry); err != nil {
		f.cleanup.Compensate(ctx, job)
		return nil, wrap(ErrFinalize, job.ID, "invalid catalog entry", err)
	}

	created, err := f.videoRepo.CreateVideo(ctx, entry)
	if err != nil {
		f.cleanup.Compensate(ctx, job)
		return nil, wrap(ErrFinalize, job.ID, "create catalog entry", err)
	}
	return created, nil
}
