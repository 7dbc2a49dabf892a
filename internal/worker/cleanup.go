package worker

import (
	"context"
	"os"
	"time"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
)

// Cleanup releases what a job acquired. Nothing here returns an error: failures are logged
// and never replace the job's own outcome.
type Cleanup struct {
	awsRepo videofiles.AWSRepository
	bucket  string
	timeout time.Duration
	logger  logger.Logger
}

func NewCleanup(awsRepo videofiles.AWSRepository, bucket string, timeout time.Duration, log logger.Logger) *Cleanup {
	return &Cleanup{awsRepo: awsRepo, bucket: bucket, timeout: timeout, logger: log}
}

// Compensate deletes every object the job has stored so far, exactly once.
// It runs on a context detached from ctx's cancellation.
func (c *Cleanup) Compensate(ctx context.Context, job *models.TranscodeJob) {
	keys := job.DrainUploads()
	if len(keys) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Infof("job %s: deleting %d uploaded objects", job.ID, len(keys))
	for _, key := range keys {
		if err := c.awsRepo.RemoveObject(ctx, c.bucket, key); err != nil {
			compensatingDeletes.WithLabelValues("error").Inc()
			c.logger.Errorf("job %s: compensating delete of %s: %v", job.ID, key, err)
			continue
		}
		compensatingDeletes.WithLabelValues("ok").Inc()
	}
}

// Release removes the workspace. A failed job also has its stored objects compensated first.
func (c *Cleanup) Release(ctx context.Context, job *models.TranscodeJob) {
	if job == nil {
		return
	}
	if job.State() == models.JobStateFailed {
		c.Compensate(ctx, job)
	}
	if job.WorkDir == "" {
		return
	}
	if err := os.RemoveAll(job.WorkDir); err != nil {
		c.logger.Errorf("job %s: remove workspace %s: %v", job.ID, job.WorkDir, err)
	}
}
