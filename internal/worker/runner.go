package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	PlaylistName   = "index.m3u8"
	SegmentPattern = "segment%03d.ts"
	waitDelay      = 5 * time.Second
)

// TranscodeRequest is one invocation of the external transcoder.
type TranscodeRequest struct {
	InputPath       string
	OutputDir       string
	PlaylistName    string
	SegmentPattern  string
	SegmentDuration int
	Timeout         time.Duration
}

// TranscodeResult is what the transcoder left behind. Files are names relative to OutputDir.
type TranscodeResult struct {
	ExitCode int
	Output   []byte
	Files    []string
	Elapsed  time.Duration
	TimedOut bool
}

// Runner runs the external transcoder. A non-nil error means the process did not
// exit successfully; the result is still populated as far as possible.
type Runner interface {
	Run(ctx context.Context, req TranscodeRequest) (*TranscodeResult, error)
}

type FFmpegRunner struct {
	path string
}

func NewFFmpegRunner(path string) *FFmpegRunner {
	return &FFmpegRunner{path: path}
}

func (r *FFmpegRunner) Args(req TranscodeRequest) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", req.InputPath,
		"-codec:v", "libx264",
		"-codec:a", "aac",
		"-hls_time", strconv.Itoa(req.SegmentDuration),
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(req.OutputDir, req.SegmentPattern),
		"-start_number", "0",
		filepath.Join(req.OutputDir, req.PlaylistName),
	}
}

func (r *FFmpegRunner) Run(ctx context.Context, req TranscodeRequest) (*TranscodeResult, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.path, r.Args(req)...)
	cmd.Dir = req.OutputDir
	// Kill is the default cancel; WaitDelay stops a hung pipe from blocking Wait.
	cmd.WaitDelay = waitDelay

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	runErr := cmd.Run()
	res := &TranscodeResult{
		Output:  output.Bytes(),
		Elapsed: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
	}
	files, listErr := listFiles(req.OutputDir)
	res.Files = files

	if runErr != nil {
		if res.TimedOut {
			return res, fmt.Errorf("transcoder exceeded %s: %w", req.Timeout, runErr)
		}
		return res, fmt.Errorf("run %s: %w", r.path, runErr)
	}
	if listErr != nil {
		return res, fmt.Errorf("list output: %w", listErr)
	}
	return res, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
