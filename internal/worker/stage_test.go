package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/amankumarsingh77/video-ingest/internal/models"
)

func rawUpload(t *testing.T, video, thumb string) *models.RawUpload {
	t.Helper()
	raw, err := Receive(context.Background(), testMeta(), memFile(video, []byte("video-bytes")), memFile(thumb, jpegBytes))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	return raw
}

func TestStagePersistsInputs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "work")
	job, err := NewStager(root).Stage(context.Background(), rawUpload(t, "Clip.MOV", "cover"))
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if job.State() != models.JobStateStaged {
		t.Fatalf("expected staged, got %s", job.State())
	}
	if job.WorkDir != filepath.Join(root, job.ID) {
		t.Fatalf("workspace not named by job id: %s", job.WorkDir)
	}
	if filepath.Base(job.SourceVideoPath) != "video.mov" || filepath.Base(job.SourceThumbnailPath) != "thumbnail.jpg" {
		t.Fatalf("unexpected staged names %s %s", job.SourceVideoPath, job.SourceThumbnailPath)
	}
	b, err := os.ReadFile(job.SourceVideoPath)
	if err != nil || string(b) != "video-bytes" {
		t.Fatalf("video not persisted: %v", err)
	}
	if info, err := os.Stat(job.OutputDir); err != nil || !info.IsDir() {
		t.Fatalf("output dir missing: %v", err)
	}
}

func TestStageRefusesSharedWorkspace(t *testing.T) {
	root := t.TempDir()
	s := NewStager(root)
	s.newID = func() string { return "fixed" }

	first, err := s.Stage(context.Background(), rawUpload(t, "a.mp4", "a.jpg"))
	if err != nil {
		t.Fatalf("first Stage: %v", err)
	}
	second, err := s.Stage(context.Background(), rawUpload(t, "b.mp4", "b.jpg"))
	if !errors.Is(err, ErrStaging) || second != nil {
		t.Fatalf("expected staging error without a job, got %v %v", second, err)
	}
	if _, err := os.Stat(first.SourceVideoPath); err != nil {
		t.Fatalf("first job's workspace was disturbed: %v", err)
	}
}

func TestStageReturnsJobForPartialWorkspace(t *testing.T) {
	root := t.TempDir()
	raw := rawUpload(t, "a.mp4", "a.jpg")
	raw.Thumbnail.Open = func() (io.ReadCloser, error) { return nil, errors.New("client went away") }

	job, err := NewStager(root).Stage(context.Background(), raw)
	if !errors.Is(err, ErrStaging) {
		t.Fatalf("expected staging error, got %v", err)
	}
	if job == nil {
		t.Fatalf("expected the allocated job so it can be released")
	}
	if _, err := os.Stat(job.WorkDir); err != nil {
		t.Fatalf("expected partial workspace to exist until released: %v", err)
	}
}

func TestStageConcurrentJobsGetDistinctWorkspaces(t *testing.T) {
	root := t.TempDir()
	s := NewStager(root)

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		dirs = map[string]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, err := s.Stage(context.Background(), rawUpload(t, "a.mp4", "a.jpg"))
			if err != nil {
				t.Errorf("Stage: %v", err)
				return
			}
			mu.Lock()
			dirs[job.WorkDir] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(dirs) != n {
		t.Fatalf("expected %d workspaces, got %d", n, len(dirs))
	}
}

func TestReceiveDefaultsAndValidation(t *testing.T) {
	meta := models.VideoMeta{Title: " Trailer ", Description: "desc", Genre: " Horror "}
	raw, err := Receive(context.Background(), meta, memFile("a.mp4", nil), memFile("a.jpg", nil))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if raw.Title != "Trailer" || raw.Genre != models.GenreHorror {
		t.Fatalf("unexpected normalized meta %+v", raw.VideoMeta)
	}

	meta.Genre = ""
	raw, err = Receive(context.Background(), meta, memFile("a.mp4", nil), memFile("a.jpg", nil))
	if err != nil || raw.Genre != models.GenreUnclassified {
		t.Fatalf("expected unclassified default, got %v %v", raw, err)
	}

	cases := map[string]func() error{
		"missing video": func() error {
			_, err := Receive(context.Background(), meta, nil, memFile("a.jpg", nil))
			return err
		},
		"missing title": func() error {
			_, err := Receive(context.Background(), models.VideoMeta{Description: "d"}, memFile("a.mp4", nil), memFile("a.jpg", nil))
			return err
		},
		"unknown genre": func() error {
			_, err := Receive(context.Background(), models.VideoMeta{Title: "t", Description: "d", Genre: "western"}, memFile("a.mp4", nil), memFile("a.jpg", nil))
			return err
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			if err := fn(); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
