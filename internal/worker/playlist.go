package worker

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/amankumarsingh77/video-ingest/internal/models"
)

// ParsePlaylist reads the segment entries of a VOD media playlist in playback order.
func ParsePlaylist(r io.Reader) ([]models.Segment, error) {
	scanner := bufio.NewScanner(r)
	var (
		segments []models.Segment
		duration float64
		pending  bool
		header   bool
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "#EXTM3U":
			header = true
		case strings.HasPrefix(line, "#EXTINF:"):
			value := strings.TrimPrefix(line, "#EXTINF:")
			if i := strings.IndexByte(value, ','); i >= 0 {
				value = value[:i]
			}
			d, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid EXTINF %q: %w", line, err)
			}
			duration = d
			pending = true
		case strings.HasPrefix(line, "#"):
			continue
		default:
			if !pending {
				return nil, fmt.Errorf("segment %q has no EXTINF", line)
			}
			segments = append(segments, models.Segment{
				Index:           len(segments),
				RelativePath:    line,
				DurationSeconds: duration,
			})
			pending = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !header {
		return nil, fmt.Errorf("missing #EXTM3U header")
	}
	return segments, nil
}

// SegmentName is the file name of the segment at index.
func SegmentName(pattern string, index int) string {
	return fmt.Sprintf(pattern, index)
}

// checkSegmentOrder verifies each entry is a plain file named for its position.
func checkSegmentOrder(pattern string, segments []models.Segment) error {
	for _, seg := range segments {
		if path.Base(seg.RelativePath) != seg.RelativePath {
			return fmt.Errorf("segment %d escapes output dir: %q", seg.Index, seg.RelativePath)
		}
		if want := SegmentName(pattern, seg.Index); seg.RelativePath != want {
			return fmt.Errorf("segment %d is %q, want %q", seg.Index, seg.RelativePath, want)
		}
	}
	return nil
}
