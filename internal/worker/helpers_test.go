package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
	"github.com/google/uuid"
)

const testBucket = "videos"

var jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01thumbnail")

type runnerFunc func(ctx context.Context, req TranscodeRequest) (*TranscodeResult, error)

func (f runnerFunc) Run(ctx context.Context, req TranscodeRequest) (*TranscodeResult, error) {
	return f(ctx, req)
}

// planSegments splits a source duration into target-length segments, the last one shorter.
func planSegments(total float64, target int) []models.Segment {
	count := int(math.Ceil(total / float64(target)))
	segments := make([]models.Segment, 0, count)
	for i := 0; i < count; i++ {
		d := math.Min(float64(target), total-float64(i*target))
		segments = append(segments, models.Segment{
			Index:           i,
			RelativePath:    SegmentName(SegmentPattern, i),
			DurationSeconds: d,
		})
	}
	return segments
}

func writePlaylist(t *testing.T, path string, target int, segments []models.Segment) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:%d\n#EXT-X-MEDIA-SEQUENCE:0\n#EXT-X-PLAYLIST-TYPE:VOD\n", target)
	for _, s := range segments {
		fmt.Fprintf(&b, "#EXTINF:%.6f,\n%s\n", s.DurationSeconds, s.RelativePath)
	}
	b.WriteString("#EXT-X-ENDLIST\n")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write playlist: %v", err)
	}
}

// fakeTranscoder fabricates the output of a successful HLS run for a source of the given length.
func fakeTranscoder(t *testing.T, sourceSeconds float64) runnerFunc {
	return func(ctx context.Context, req TranscodeRequest) (*TranscodeResult, error) {
		segments := planSegments(sourceSeconds, req.SegmentDuration)
		files := []string{req.PlaylistName}
		for _, s := range segments {
			if err := os.WriteFile(filepath.Join(req.OutputDir, s.RelativePath), []byte("ts-"+s.RelativePath), 0o600); err != nil {
				t.Errorf("write segment: %v", err)
			}
			files = append(files, s.RelativePath)
		}
		writePlaylist(t, filepath.Join(req.OutputDir, req.PlaylistName), req.SegmentDuration, segments)
		return &TranscodeResult{Files: files, Elapsed: time.Millisecond}, nil
	}
}

func failingTranscoder(code int, output string) runnerFunc {
	return func(ctx context.Context, req TranscodeRequest) (*TranscodeResult, error) {
		res := &TranscodeResult{ExitCode: code, Output: []byte(output)}
		return res, fmt.Errorf("exit status %d", code)
	}
}

type fakeStore struct {
	mu       sync.Mutex
	attempts []string
	puts     []string
	deletes  []string
	types    map[string]string
	failPut  func(key string) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{types: map[string]string{}}
}

func (s *fakeStore) PutObject(ctx context.Context, input *models.UploadInput) (string, error) {
	if _, err := io.Copy(io.Discard, input.File); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, input.Key)
	if s.failPut != nil {
		if err := s.failPut(input.Key); err != nil {
			return "", err
		}
	}
	s.puts = append(s.puts, input.Key)
	s.types[input.Key] = input.MimeType
	return s.PublicURL(input.BucketName, input.Key), nil
}

func (s *fakeStore) RemoveObject(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	return nil
}

func (s *fakeStore) PublicURL(bucket, key string) string {
	return "https://cdn.test/" + bucket + "/" + key
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts) + len(s.deletes)
}

type fakeCatalog struct {
	mu      sync.Mutex
	err     error
	entries []*models.CatalogEntry
	onWrite func()
}

func (c *fakeCatalog) CreateVideo(ctx context.Context, entry *models.CatalogEntry) (*models.CatalogEntry, error) {
	if c.onWrite != nil {
		c.onWrite()
	}
	if c.err != nil {
		return nil, c.err
	}
	created := *entry
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	c.mu.Lock()
	c.entries = append(c.entries, &created)
	c.mu.Unlock()
	return &created, nil
}

func (c *fakeCatalog) GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.ID == videoID {
			return e, nil
		}
	}
	return nil, errors.New("not found")
}

type fakeTracker struct {
	mu       sync.Mutex
	statuses []models.JobStatus
	terminal chan models.JobStatus
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{terminal: make(chan models.JobStatus, 16)}
}

func (f *fakeTracker) UpdateStatus(ctx context.Context, status *models.JobStatus) error {
	f.mu.Lock()
	f.statuses = append(f.statuses, *status)
	f.mu.Unlock()
	if status.State.Terminal() {
		f.terminal <- *status
	}
	return nil
}

func (f *fakeTracker) GetJobStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.statuses) - 1; i >= 0; i-- {
		if f.statuses[i].JobID == jobID {
			s := f.statuses[i]
			return &s, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeTracker) states(jobID string) []models.JobState {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.JobState
	for _, s := range f.statuses {
		if s.JobID == jobID {
			out = append(out, s.State)
		}
	}
	return out
}

type testPipeline struct {
	*Pipeline
	root    string
	store   *fakeStore
	catalog *fakeCatalog
	tracker *fakeTracker
}

func newTestPipeline(t *testing.T, runner Runner, concurrency int) *testPipeline {
	t.Helper()
	root := filepath.Join(t.TempDir(), "work")
	store := newFakeStore()
	catalog := &fakeCatalog{}
	tracker := newFakeTracker()
	log := logger.NewNopLogger()

	cleanup := NewCleanup(store, testBucket, time.Second, log)
	p := NewPipeline(
		NewStager(root),
		NewTranscoder(runner, 10, time.Minute, log),
		NewUploader(store, testBucket, "uploads", concurrency, log),
		NewFinalizer(catalog, cleanup),
		cleanup,
		tracker,
		log,
	)
	return &testPipeline{Pipeline: p, root: root, store: store, catalog: catalog, tracker: tracker}
}

func memFile(name string, body []byte) *models.UploadFile {
	return &models.UploadFile{
		Filename: name,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(string(body))), nil
		},
	}
}

func testMeta() models.VideoMeta {
	return models.VideoMeta{Title: "Trailer", Description: "A short trailer", Genre: models.GenreDrama}
}

func workspaces(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read root: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
