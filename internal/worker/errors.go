package worker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation error")
	ErrStaging    = errors.New("staging error")
	ErrTranscode  = errors.New("transcode error")
	ErrUpload     = errors.New("upload error")
	ErrFinalize   = errors.New("finalize error")
	ErrQueueFull  = errors.New("worker queue full")
	ErrStopped    = errors.New("worker stopped")
)

// maxDiagnosticBytes bounds the process output kept on a TranscodeError.
const maxDiagnosticBytes = 8 << 10

// wrap tags err with a taxonomy marker and the job/operation it came from.
func wrap(marker error, jobID, op string, err error) error {
	detail := op
	if jobID != "" {
		detail = "job " + jobID + ": " + op
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// TranscodeError carries what the external transcoder reported.
type TranscodeError struct {
	JobID    string
	ExitCode int
	TimedOut bool
	Output   string
	Err      error
}

func (e *TranscodeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: job %s", ErrTranscode, e.JobID)
	if e.TimedOut {
		b.WriteString(": timed out")
	} else if e.ExitCode != 0 {
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TranscodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTranscode}
	}
	return []error{ErrTranscode, e.Err}
}

// FailureCategory maps a pipeline error to the coarse label exposed to clients.
func FailureCategory(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "invalid upload"
	case errors.Is(err, ErrStaging):
		return "staging failed"
	case errors.Is(err, ErrTranscode):
		return "transcode failed"
	case errors.Is(err, ErrUpload):
		return "upload failed"
	case errors.Is(err, ErrFinalize):
		return "catalog write failed"
	default:
		return "processing failed"
	}
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
