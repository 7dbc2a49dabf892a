package worker

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	base := errors.New("disk full")
	err := wrap(ErrStaging, "job-1", "write video", base)
	if !errors.Is(err, ErrStaging) || !errors.Is(err, base) {
		t.Fatalf("expected marker and cause in chain, got %v", err)
	}
	for _, fragment := range []string{"job-1", "write video", "disk full"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestTranscodeErrorClassification(t *testing.T) {
	cause := errors.New("signal: killed")
	err := error(&TranscodeError{JobID: "job-2", TimedOut: true, Output: "frame=10", Err: cause})
	if !errors.Is(err, ErrTranscode) || !errors.Is(err, cause) {
		t.Fatalf("expected transcode marker and cause, got %v", err)
	}
	var te *TranscodeError
	if !errors.As(err, &te) || te.Output != "frame=10" {
		t.Fatalf("expected diagnostics to be reachable, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout in message, got %q", err.Error())
	}
}

func TestFailureCategory(t *testing.T) {
	cases := map[error]string{
		wrap(ErrValidation, "", "missing thumbnail", nil): "invalid upload",
		wrap(ErrUpload, "j", "put", errors.New("x")):       "upload failed",
		wrap(ErrFinalize, "j", "create", errors.New("x")):  "catalog write failed",
		&TranscodeError{JobID: "j", ExitCode: 1}:           "transcode failed",
		errors.New("other"):                                "processing failed",
	}
	for err, want := range cases {
		if got := FailureCategory(err); got != want {
			t.Fatalf("FailureCategory(%v) = %q, want %q", err, got, want)
		}
	}
	if FailureCategory(nil) != "" {
		t.Fatal("expected empty category for nil")
	}
}

func TestTail(t *testing.T) {
	if got := tail([]byte("abcdef"), 3); got != "def" {
		t.Fatalf("expected def, got %q", got)
	}
	if got := tail([]byte("ab"), 3); got != "ab" {
		t.Fatalf("expected ab, got %q", got)
	}
}
