package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
)

const statusTimeout = 5 * time.Second

type stager interface {
	Stage(ctx context.Context, raw *models.RawUpload) (*models.TranscodeJob, error)
}

// Pipeline drives one upload from validation to a catalog record. Every job it stages is
// released on every exit path.
type Pipeline struct {
	stager     stager
	transcoder *Transcoder
	uploader   *Uploader
	finalizer  *Finalizer
	cleanup    *Cleanup
	tracker    videofiles.RedisRepository
	logger     logger.Logger

	active sync.Map
}

// NewPipeline accepts a nil tracker when job status is not published anywhere.
func NewPipeline(stager *Stager, transcoder *Transcoder, uploader *Uploader, finalizer *Finalizer, cleanup *Cleanup, tracker videofiles.RedisRepository, log logger.Logger) *Pipeline {
	return &Pipeline{
		stager:     stager,
		transcoder: transcoder,
		uploader:   uploader,
		finalizer:  finalizer,
		cleanup:    cleanup,
		tracker:    tracker,
		logger:     log,
	}
}

// Run processes an upload to completion within the calling goroutine.
func (p *Pipeline) Run(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.CatalogEntry, error) {
	job, err := p.Prepare(ctx, meta, video, thumbnail)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, job)
}

// Prepare validates and stages an upload. On success the caller owns the returned job and
// must hand it to Process, which releases it.
func (p *Pipeline) Prepare(ctx context.Context, meta models.VideoMeta, video, thumbnail *models.UploadFile) (*models.TranscodeJob, error) {
	raw, err := Receive(ctx, meta, video, thumbnail)
	if err != nil {
		jobsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	start := time.Now()
	job, err := p.stager.Stage(ctx, raw)
	stageDuration.WithLabelValues("stage").Observe(time.Since(start).Seconds())
	if job != nil {
		p.active.Store(job.ID, struct{}{})
	}
	if err != nil {
		if job != nil {
			p.finish(ctx, job, nil, err)
		} else {
			jobsTotal.WithLabelValues(FailureCategory(err)).Inc()
			p.logger.Errorf("staging failed: %v", err)
		}
		return nil, err
	}
	p.track(ctx, job, "", nil)
	return job, nil
}

// Process takes a staged job through transcode, upload and finalize. The job is terminal
// and its workspace gone when Process returns.
func (p *Pipeline) Process(ctx context.Context, job *models.TranscodeJob) (entry *models.CatalogEntry, err error) {
	activeJobs.Inc()
	defer func() {
		activeJobs.Dec()
		p.finish(ctx, job, entry, err)
	}()

	if err = p.advance(ctx, job, models.JobStateTranscoding, ErrTranscode); err != nil {
		return nil, err
	}
	start := time.Now()
	err = p.transcoder.Transcode(ctx, job)
	stageDuration.WithLabelValues("transcode").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	// From here on the job runs to completion or compensated failure.
	ctx = context.WithoutCancel(ctx)

	if err = p.advance(ctx, job, models.JobStateUploading, ErrUpload); err != nil {
		return nil, err
	}
	start = time.Now()
	uploaded, err := p.uploader.Upload(ctx, job)
	stageDuration.WithLabelValues("upload").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if err = p.advance(ctx, job, models.JobStateFinalizing, ErrFinalize); err != nil {
		return nil, err
	}
	start = time.Now()
	entry, err = p.finalizer.Finalize(ctx, job, uploaded)
	stageDuration.WithLabelValues("finalize").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if err = p.advance(ctx, job, models.JobStateComplete, ErrFinalize); err != nil {
		return nil, err
	}
	return entry, nil
}

// Abandon fails and releases a staged job that will never reach Process.
func (p *Pipeline) Abandon(ctx context.Context, job *models.TranscodeJob, reason error) {
	p.finish(ctx, job, nil, reason)
}

// InUse reports whether a job id is between staging and release in this process.
func (p *Pipeline) InUse(jobID string) bool {
	_, ok := p.active.Load(jobID)
	return ok
}

func (p *Pipeline) advance(ctx context.Context, job *models.TranscodeJob, next models.JobState, marker error) error {
	if err := job.Advance(next); err != nil {
		return wrap(marker, job.ID, "advance", err)
	}
	if !next.Terminal() {
		p.track(ctx, job, "", nil)
	}
	return nil
}

func (p *Pipeline) finish(ctx context.Context, job *models.TranscodeJob, entry *models.CatalogEntry, err error) {
	if err != nil {
		job.Fail()
		p.logger.Errorf("job %s failed: %v", job.ID, err)
		var te *TranscodeError
		if errors.As(err, &te) && te.Output != "" {
			p.logger.Debugf("job %s transcoder output:\n%s", job.ID, te.Output)
		}
		jobsTotal.WithLabelValues(FailureCategory(err)).Inc()
	} else {
		p.logger.Infof("job %s complete, video %s", job.ID, entry.ID)
		jobsTotal.WithLabelValues("complete").Inc()
	}

	p.cleanup.Release(ctx, job)
	p.active.Delete(job.ID)

	videoID := ""
	if entry != nil {
		videoID = entry.ID.String()
	}
	p.track(ctx, job, videoID, err)
}

// track publishes job state. It is best effort and never fails the job.
func (p *Pipeline) track(ctx context.Context, job *models.TranscodeJob, videoID string, jobErr error) {
	if p.tracker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusTimeout)
	defer cancel()
	status := &models.JobStatus{
		JobID:     job.ID,
		State:     job.State(),
		VideoID:   videoID,
		Error:     FailureCategory(jobErr),
		UpdatedAt: time.Now(),
	}
	if err := p.tracker.UpdateStatus(ctx, status); err != nil {
		p.logger.Warnf("job %s: update status: %v", job.ID, err)
	}
}
