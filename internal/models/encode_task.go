package models

import (
	"fmt"
	"sync"
	"time"
)

type JobState string

const (
	JobStateStaged      JobState = "staged"
	JobStateTranscoding JobState = "transcoding"
	JobStateUploading   JobState = "uploading"
	JobStateFinalizing  JobState = "finalizing"
	JobStateComplete    JobState = "complete"
	JobStateFailed      JobState = "failed"
)

var nextJobState = map[JobState]JobState{
	JobStateStaged:      JobStateTranscoding,
	JobStateTranscoding: JobStateUploading,
	JobStateUploading:   JobStateFinalizing,
	JobStateFinalizing:  JobStateComplete,
}

func (s JobState) Terminal() bool {
	return s == JobStateComplete || s == JobStateFailed
}

// Segment is one media chunk of the produced playlist. Index mirrors playback order.
type Segment struct {
	Index           int     `json:"index"`
	RelativePath    string  `json:"relative_path"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// TranscodeJob is owned by exactly one pipeline run and discarded once terminal.
type TranscodeJob struct {
	ID                  string
	WorkDir             string
	SourceVideoPath     string
	SourceThumbnailPath string
	OutputDir           string
	PlaylistPath        string
	ThumbnailPath       string
	Segments            []Segment
	Meta                VideoMeta
	CreatedAt           time.Time

	mu       sync.Mutex
	state    JobState
	uploaded []string
}

func NewTranscodeJob(id, workDir string, meta VideoMeta) *TranscodeJob {
	return &TranscodeJob{
		ID:        id,
		WorkDir:   workDir,
		Meta:      meta,
		CreatedAt: time.Now(),
		state:     JobStateStaged,
	}
}

func (j *TranscodeJob) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Advance moves the job to its only legal successor state.
func (j *TranscodeJob) Advance(next JobState) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if want, ok := nextJobState[j.state]; !ok || want != next {
		return fmt.Errorf("invalid job transition %s -> %s", j.state, next)
	}
	j.state = next
	return nil
}

// Fail marks a non-terminal job failed. It reports false when the job was already terminal.
func (j *TranscodeJob) Fail() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.Terminal() {
		return false
	}
	j.state = JobStateFailed
	return true
}

// RecordUpload adds a storage key whose put succeeded.
func (j *TranscodeJob) RecordUpload(key string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.uploaded = append(j.uploaded, key)
}

func (j *TranscodeJob) Uploaded() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.uploaded))
	copy(out, j.uploaded)
	return out
}

// DrainUploads empties the ledger and returns what it held.
func (j *TranscodeJob) DrainUploads() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := j.uploaded
	j.uploaded = nil
	return out
}

// JobStatus is the pollable view of a job kept by the status tracker.
type JobStatus struct {
	JobID     string    `json:"job_id" redis:"job_id"`
	State     JobState  `json:"state" redis:"state"`
	VideoID   string    `json:"video_id,omitempty" redis:"video_id"`
	Error     string    `json:"error,omitempty" redis:"error"`
	UpdatedAt time.Time `json:"updated_at" redis:"updated_at"`
}
