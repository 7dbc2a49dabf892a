package worker

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/amankumarsingh77/video-ingest/pkg/logger"
)

// SweepResult lists what one sweep removed and what it could not.
type SweepResult struct {
	Removed []string
	Errors  []SweepError
}

type SweepError struct {
	Path string
	Err  error
}

// Sweeper removes workspaces left behind by a process that died mid-job.
type Sweeper struct {
	root     string
	maxAge   time.Duration
	interval time.Duration
	inUse    func(jobID string) bool
	logger   logger.Logger
}

// NewSweeper never touches a workspace for which inUse reports true. inUse may be nil.
func NewSweeper(root string, maxAge, interval time.Duration, inUse func(string) bool, log logger.Logger) *Sweeper {
	return &Sweeper{root: root, maxAge: maxAge, interval: interval, inUse: inUse, logger: log}
}

// Sweep removes job directories under root whose modification time is older than maxAge.
func (s *Sweeper) Sweep(now time.Time) SweepResult {
	result := SweepResult{}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, SweepError{Path: s.root, Err: err})
		}
		return result
	}

	cutoff := now.Add(-s.maxAge)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if s.inUse != nil && s.inUse(entry.Name()) {
			continue
		}
		dirPath := filepath.Join(s.root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, SweepError{Path: dirPath, Err: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, SweepError{Path: dirPath, Err: err})
			s.logger.Warnf("failed to remove orphaned workspace %s: %v", dirPath, err)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		sweptWorkspaces.Inc()
		s.logger.Infof("removed orphaned workspace %s, age %s", dirPath, now.Sub(info.ModTime()))
	}
	return result
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	s.Sweep(time.Now())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
