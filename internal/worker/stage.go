package worker

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/google/uuid"
)

const (
	sourceDirName       = "source"
	outputDirName       = "output"
	defaultVideoExt     = ".mp4"
	defaultThumbnailExt = ".jpg"
)

// Stager allocates one exclusive workspace per job under root.
type Stager struct {
	root  string
	newID func() string
}

func NewStager(root string) *Stager {
	return &Stager{root: root, newID: uuid.NewString}
}

// Stage persists the raw files. Once the workspace exists the job is returned even on
// error so the caller can release it.
func (s *Stager) Stage(ctx context.Context, raw *models.RawUpload) (*models.TranscodeJob, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, wrap(ErrStaging, "", "create work root", err)
	}

	id := s.newID()
	workDir := filepath.Join(s.root, id)
	// Mkdir, not MkdirAll: an existing directory means another job owns it.
	if err := os.Mkdir(workDir, 0o700); err != nil {
		return nil, wrap(ErrStaging, id, "allocate workspace", err)
	}
	job := models.NewTranscodeJob(id, workDir, raw.VideoMeta)
	job.OutputDir = filepath.Join(workDir, outputDirName)

	sourceDir := filepath.Join(workDir, sourceDirName)
	for _, dir := range []string{sourceDir, job.OutputDir} {
		if err := os.Mkdir(dir, 0o700); err != nil {
			return job, wrap(ErrStaging, id, "create "+filepath.Base(dir)+" dir", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return job, wrap(ErrStaging, id, "stage", err)
	}

	job.SourceVideoPath = filepath.Join(sourceDir, "video"+extension(raw.Video.Filename, defaultVideoExt))
	if err := persist(raw.Video, job.SourceVideoPath); err != nil {
		return job, wrap(ErrStaging, id, "write video", err)
	}
	job.SourceThumbnailPath = filepath.Join(sourceDir, "thumbnail"+extension(raw.Thumbnail.Filename, defaultThumbnailExt))
	if err := persist(raw.Thumbnail, job.SourceThumbnailPath); err != nil {
		return job, wrap(ErrStaging, id, "write thumbnail", err)
	}
	return job, nil
}

func persist(file *models.UploadFile, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func extension(name, fallback string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 8 || strings.ContainsAny(ext, `/\ `) {
		return fallback
	}
	return ext
}
