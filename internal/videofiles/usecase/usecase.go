package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
	"github.com/google/uuid"
)

// Pipeline turns an upload into a catalog entry, either in one call or as a staged job.
type Pipeline interface {
	Run(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.CatalogEntry, error)
	Prepare(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.TranscodeJob, error)
}

// JobQueue accepts staged jobs for background processing and owns them from then on.
type JobQueue interface {
	Submit(ctx context.Context, job *models.TranscodeJob) error
}

type videoFileUC struct {
	videoRepo videofiles.Repository
	redisRepo videofiles.RedisRepository
	pipeline  Pipeline
	queue     JobQueue
	logger    logger.Logger
}

func NewVideoUseCase(
	videoRepo videofiles.Repository,
	redisRepo videofiles.RedisRepository,
	pipeline Pipeline,
	queue JobQueue,
	log logger.Logger,
) videofiles.UseCase {
	return &videoFileUC{
		videoRepo: videoRepo,
		redisRepo: redisRepo,
		pipeline:  pipeline,
		queue:     queue,
		logger:    log,
	}
}

func (v *videoFileUC) UploadVideo(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.CatalogEntry, error) {
	entry, err := v.pipeline.Run(ctx, meta, video, thumbnail)
	if err != nil {
		v.logger.Errorf("UploadVideo - pipeline error: %v", err)
		return nil, err
	}
	v.logger.Infof("UploadVideo - created video %s", entry.ID)
	return entry, nil
}

func (v *videoFileUC) SubmitVideo(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.JobStatus, error) {
	job, err := v.pipeline.Prepare(ctx, meta, video, thumbnail)
	if err != nil {
		v.logger.Errorf("SubmitVideo - Prepare error: %v", err)
		return nil, err
	}
	status := &models.JobStatus{
		JobID:     job.ID,
		State:     job.State(),
		UpdatedAt: time.Now(),
	}
	if err = v.queue.Submit(ctx, job); err != nil {
		v.logger.Errorf("SubmitVideo - Submit error: %v", err)
		return nil, err
	}
	v.logger.Infof("SubmitVideo - queued job %s", status.JobID)
	return status, nil
}

func (v *videoFileUC) GetJobStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, videofiles.ErrNotFound
	}
	status, err := v.redisRepo.GetJobStatus(ctx, jobID)
	if err != nil {
		if !errors.Is(err, videofiles.ErrNotFound) {
			v.logger.Errorf("GetJobStatus - redisRepo error: %v", err)
		}
		return nil, err
	}
	return status, nil
}

func (v *videoFileUC) GetVideo(ctx context.Context, videoID uuid.UUID) (*models.CatalogEntry, error) {
	video, err := v.videoRepo.GetVideoByID(ctx, videoID)
	if err != nil {
		if !errors.Is(err, videofiles.ErrNotFound) {
			v.logger.Errorf("GetVideo - videoRepo error: %v", err)
		}
		return nil, err
	}
	return video, nil
}
