package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
	"github.com/google/uuid"
)

type fakePipeline struct {
	entry *models.CatalogEntry
	job   *models.TranscodeJob
	err   error
}

func (f *fakePipeline) Run(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.CatalogEntry, error) {
	return f.entry, f.err
}

func (f *fakePipeline) Prepare(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.TranscodeJob, error) {
	return f.job, f.err
}

type fakeQueue struct {
	submitted []*models.TranscodeJob
	err       error
}

func (f *fakeQueue) Submit(ctx context.Context, job *models.TranscodeJob) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, job)
	return nil
}

type fakeStatusRepo struct {
	status *models.JobStatus
	err    error
}

func (f *fakeStatusRepo) UpdateStatus(ctx context.Context, status *models.JobStatus) error {
	return nil
}

func (f *fakeStatusRepo) GetJobStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {
	return f.status, f.err
}

type fakeVideoRepo struct {
	entry *models.CatalogEntry
	err   error
}

func (f *fakeVideoRepo) CreateVideo(ctx context.Context, entry *models.CatalogEntry) (*models.CatalogEntry, error) {
	return entry, nil
}

func (f *fakeVideoRepo) GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.CatalogEntry, error) {
	return f.entry, f.err
}

func TestSubmitVideoQueuesStagedJob(t *testing.T) {
	job := models.NewTranscodeJob(uuid.NewString(), t.TempDir(), models.VideoMeta{})
	queue := &fakeQueue{}
	uc := NewVideoUseCase(&fakeVideoRepo{}, &fakeStatusRepo{}, &fakePipeline{job: job}, queue, logger.NewNopLogger())

	status, err := uc.SubmitVideo(context.Background(), models.VideoMeta{}, nil, nil)
	if err != nil {
		t.Fatalf("SubmitVideo: %v", err)
	}
	if status.JobID != job.ID || status.State != models.JobStateStaged {
		t.Fatalf("unexpected status %+v", status)
	}
	if len(queue.submitted) != 1 || queue.submitted[0] != job {
		t.Fatalf("job not submitted")
	}
}

func TestSubmitVideoPropagatesQueueError(t *testing.T) {
	job := models.NewTranscodeJob(uuid.NewString(), t.TempDir(), models.VideoMeta{})
	queueErr := errors.New("queue full")
	uc := NewVideoUseCase(&fakeVideoRepo{}, &fakeStatusRepo{}, &fakePipeline{job: job}, &fakeQueue{err: queueErr}, logger.NewNopLogger())

	if _, err := uc.SubmitVideo(context.Background(), models.VideoMeta{}, nil, nil); !errors.Is(err, queueErr) {
		t.Fatalf("expected queue error, got %v", err)
	}
}

func TestUploadVideoPropagatesPipelineError(t *testing.T) {
	pipeErr := errors.New("upload error")
	uc := NewVideoUseCase(&fakeVideoRepo{}, &fakeStatusRepo{}, &fakePipeline{err: pipeErr}, &fakeQueue{}, logger.NewNopLogger())

	if _, err := uc.UploadVideo(context.Background(), models.VideoMeta{}, nil, nil); !errors.Is(err, pipeErr) {
		t.Fatalf("expected pipeline error, got %v", err)
	}
}

func TestGetJobStatusRejectsMalformedIDs(t *testing.T) {
	repo := &fakeStatusRepo{status: &models.JobStatus{JobID: "x"}}
	uc := NewVideoUseCase(&fakeVideoRepo{}, repo, &fakePipeline{}, &fakeQueue{}, logger.NewNopLogger())

	if _, err := uc.GetJobStatus(context.Background(), "../../etc"); !errors.Is(err, videofiles.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	id := uuid.NewString()
	repo.status = &models.JobStatus{JobID: id, State: models.JobStateUploading}
	status, err := uc.GetJobStatus(context.Background(), id)
	if err != nil || status.State != models.JobStateUploading {
		t.Fatalf("unexpected %+v %v", status, err)
	}
}

func TestGetVideoNotFound(t *testing.T) {
	uc := NewVideoUseCase(&fakeVideoRepo{err: videofiles.ErrNotFound}, &fakeStatusRepo{}, &fakePipeline{}, &fakeQueue{}, logger.NewNopLogger())
	if _, err := uc.GetVideo(context.Background(), uuid.New()); !errors.Is(err, videofiles.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
