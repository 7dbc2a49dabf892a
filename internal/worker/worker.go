package worker

import (
	"context"
	"sync"
	"time"

	"github.com/amankumarsingh77/video-ingest/internal/config"
	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
	"github.com/amankumarsingh77/video-ingest/pkg/utils"
)

// Worker runs staged jobs in the background on a fixed number of goroutines.
type Worker struct {
	logger      logger.Logger
	pipeline    *Pipeline
	queue       chan *models.TranscodeJob
	workerCount int
	maxCPU      float64
	cpuInterval time.Duration
	checkCPU    func(float64) (bool, float64)

	mu     sync.RWMutex
	closed bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(cfg *config.Config, pipeline *Pipeline, logger logger.Logger) *Worker {
	return &Worker{
		logger:      logger,
		pipeline:    pipeline,
		queue:       make(chan *models.TranscodeJob, cfg.Worker.QueueSize),
		workerCount: cfg.Worker.WorkerCount,
		maxCPU:      cfg.Worker.MaxCPUUsage,
		cpuInterval: time.Duration(cfg.Worker.CPUCheckInterval) * time.Second,
		checkCPU:    utils.CheckCPUUsage,
	}
}

func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.logger.Infof("Starting %d workers", w.workerCount)
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
}

// Submit queues a staged job. The worker owns the job even when Submit fails: a rejected
// job is released before Submit returns.
func (w *Worker) Submit(ctx context.Context, job *models.TranscodeJob) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.pipeline.Abandon(ctx, job, wrap(ErrStopped, job.ID, "submit", nil))
		return ErrStopped
	}
	select {
	case w.queue <- job:
		return nil
	default:
		w.pipeline.Abandon(ctx, job, wrap(ErrQueueFull, job.ID, "submit", nil))
		return ErrQueueFull
	}
}

// Stop lets running jobs finish their current stage, then fails whatever is still queued.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()

	for {
		select {
		case job := <-w.queue:
			w.pipeline.Abandon(context.Background(), job, wrap(ErrStopped, job.ID, "drain", nil))
		default:
			w.logger.Info("workers stopped")
			return
		}
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.queue:
			if !w.waitForCPU(ctx) {
				w.pipeline.Abandon(ctx, job, wrap(ErrStopped, job.ID, "wait for cpu", ctx.Err()))
				return
			}
			if _, err := w.pipeline.Process(ctx, job); err != nil {
				w.logger.Errorf("error processing video: %v", err)
			}
		}
	}
}

func (w *Worker) waitForCPU(ctx context.Context) bool {
	for {
		ok, usage := w.checkCPU(w.maxCPU)
		if ok {
			return true
		}
		w.logger.Infof("CPU usage is high: %f", usage)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(w.cpuInterval):
		}
	}
}
