package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
)

type Transcoder struct {
	runner          Runner
	segmentDuration int
	timeout         time.Duration
	logger          logger.Logger
}

func NewTranscoder(runner Runner, segmentDuration int, timeout time.Duration, log logger.Logger) *Transcoder {
	return &Transcoder{
		runner:          runner,
		segmentDuration: segmentDuration,
		timeout:         timeout,
		logger:          log,
	}
}

// Transcode expects a job in transcoding state and leaves a verified output set behind:
// playlist, segments in playlist order, and the relocated thumbnail.
func (t *Transcoder) Transcode(ctx context.Context, job *models.TranscodeJob) error {
	req := TranscodeRequest{
		InputPath:       job.SourceVideoPath,
		OutputDir:       job.OutputDir,
		PlaylistName:    PlaylistName,
		SegmentPattern:  SegmentPattern,
		SegmentDuration: t.segmentDuration,
		Timeout:         t.timeout,
	}

	res, err := t.runner.Run(ctx, req)
	if err != nil {
		te := &TranscodeError{JobID: job.ID, Err: err}
		if res != nil {
			te.ExitCode = res.ExitCode
			te.TimedOut = res.TimedOut
			te.Output = tail(res.Output, maxDiagnosticBytes)
		}
		return te
	}
	if res.ExitCode != 0 {
		return &TranscodeError{JobID: job.ID, ExitCode: res.ExitCode, Output: tail(res.Output, maxDiagnosticBytes)}
	}
	t.logger.Debugf("job %s: transcoder finished in %s with %d files", job.ID, res.Elapsed, len(res.Files))

	playlistPath := filepath.Join(job.OutputDir, PlaylistName)
	segments, err := verifyOutput(playlistPath, job.OutputDir)
	if err != nil {
		return &TranscodeError{JobID: job.ID, Output: tail(res.Output, maxDiagnosticBytes), Err: err}
	}
	job.PlaylistPath = playlistPath
	job.Segments = segments

	job.ThumbnailPath = filepath.Join(job.OutputDir, "thumbnail"+filepath.Ext(job.SourceThumbnailPath))
	if err := copyFile(job.SourceThumbnailPath, job.ThumbnailPath); err != nil {
		return &TranscodeError{JobID: job.ID, Err: fmt.Errorf("relocate thumbnail: %w", err)}
	}

	// The raw source is only dropped once the outputs above are confirmed.
	if err := os.Remove(job.SourceVideoPath); err != nil && !os.IsNotExist(err) {
		t.logger.Warnf("job %s: remove source video: %v", job.ID, err)
	}
	return nil
}

func verifyOutput(playlistPath, outputDir string) ([]models.Segment, error) {
	f, err := os.Open(playlistPath)
	if err != nil {
		return nil, fmt.Errorf("playlist missing: %w", err)
	}
	defer f.Close()

	segments, err := ParsePlaylist(f)
	if err != nil {
		return nil, fmt.Errorf("parse playlist: %w", err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("playlist references no segments")
	}
	if err := checkSegmentOrder(SegmentPattern, segments); err != nil {
		return nil, err
	}
	for _, seg := range segments {
		info, err := os.Stat(filepath.Join(outputDir, seg.RelativePath))
		if err != nil {
			return nil, fmt.Errorf("segment %d missing: %w", seg.Index, err)
		}
		if !info.Mode().IsRegular() || info.Size() == 0 {
			return nil, fmt.Errorf("segment %d is empty or not a file", seg.Index)
		}
	}
	return segments, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
