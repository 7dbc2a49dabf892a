package worker

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

const (
	playlistContentType  = "application/vnd.apple.mpegurl"
	segmentContentType   = "video/mp2t"
	artifactCacheControl = "max-age=3600"
)

// UploadResult maps each local file name to its public URL.
type UploadResult struct {
	URLs         map[string]string
	PlaylistURL  string
	ThumbnailURL string
}

type Uploader struct {
	awsRepo     videofiles.AWSRepository
	bucket      string
	keyPrefix   string
	concurrency int
	logger      logger.Logger
}

func NewUploader(awsRepo videofiles.AWSRepository, bucket, keyPrefix string, concurrency int, log logger.Logger) *Uploader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Uploader{
		awsRepo:     awsRepo,
		bucket:      bucket,
		keyPrefix:   keyPrefix,
		concurrency: concurrency,
		logger:      log,
	}
}

// Key is the storage path of name for a job. Job ids partition the namespace.
func (u *Uploader) Key(jobID, name string) string {
	if u.keyPrefix == "" {
		return path.Join(jobID, name)
	}
	return path.Join(u.keyPrefix, jobID, name)
}

// Upload pushes segments and thumbnail with bounded concurrency, then the playlist once
// every segment it references is stored. Each successful put is recorded on the job.
func (u *Uploader) Upload(ctx context.Context, job *models.TranscodeJob) (*UploadResult, error) {
	var (
		mu   sync.Mutex
		urls = make(map[string]string, len(job.Segments)+2)
	)
	put := func(local, contentType string) error {
		name := filepath.Base(local)
		url, err := u.putFile(ctx, job, local, contentType)
		if err != nil {
			return err
		}
		mu.Lock()
		urls[name] = url
		mu.Unlock()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for _, seg := range job.Segments {
		local := filepath.Join(job.OutputDir, seg.RelativePath)
		g.Go(func() error {
			// A failed sibling stops new puts; in-flight ones run to completion.
			if gctx.Err() != nil {
				return nil
			}
			return put(local, segmentContentType)
		})
	}
	g.Go(func() error {
		if gctx.Err() != nil {
			return nil
		}
		mtype, err := mimetype.DetectFile(job.ThumbnailPath)
		if err != nil {
			return wrap(ErrUpload, job.ID, "detect thumbnail type", err)
		}
		return put(job.ThumbnailPath, mtype.String())
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := put(job.PlaylistPath, playlistContentType); err != nil {
		return nil, err
	}

	return &UploadResult{
		URLs:         urls,
		PlaylistURL:  urls[filepath.Base(job.PlaylistPath)],
		ThumbnailURL: urls[filepath.Base(job.ThumbnailPath)],
	}, nil
}

func (u *Uploader) putFile(ctx context.Context, job *models.TranscodeJob, local, contentType string) (string, error) {
	name := filepath.Base(local)
	f, err := os.Open(local)
	if err != nil {
		return "", wrap(ErrUpload, job.ID, "open "+name, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", wrap(ErrUpload, job.ID, "stat "+name, err)
	}

	key := u.Key(job.ID, name)
	url, err := u.awsRepo.PutObject(ctx, &models.UploadInput{
		File:         f,
		Name:         name,
		MimeType:     contentType,
		Size:         info.Size(),
		Key:          key,
		BucketName:   u.bucket,
		CacheControl: artifactCacheControl,
	})
	if err != nil {
		return "", wrap(ErrUpload, job.ID, "put "+key, err)
	}
	job.RecordUpload(key)
	u.logger.Debugf("job %s: uploaded %s", job.ID, key)
	return url, nil
}
