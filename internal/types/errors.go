package types

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled marks a run that stopped because the caller asked it to.
// It is an outcome, not a failure: callers must present it without error
// styling. Context cancellation is folded into the same check.
var ErrCancelled = errors.New("cancelled")

func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// InvalidURLError means the input did not resolve to a platform video ID.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid video URL: %q", e.URL)
}

// FetchError is a failed source download, with the downloader's own message
// attached. Fatal for the job; there is no retry loop.
type FetchError struct {
	Msg string
	Err error
}

func (e *FetchError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("download failed: %s", e.Msg)
	}
	return fmt.Sprintf("download failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// TranscriptUnavailableError means no transcript could be produced at all.
// Without text there is nothing to select highlights from.
type TranscriptUnavailableError struct {
	Reason string
}

func (e *TranscriptUnavailableError) Error() string {
	if e.Reason == "" {
		return "transcript unavailable"
	}
	return "transcript unavailable: " + e.Reason
}

// NoHighlightsError means the model returned zero usable candidates.
type NoHighlightsError struct{}

func (e *NoHighlightsError) Error() string {
	return "no usable highlights found in the video"
}

// ClipError is a failure while rendering a single clip. It is reported
// distinctly from a job-level abort so the orchestrator can choose between
// abort-job and skip-and-continue policies.
type ClipError struct {
	Index int // 1-based clip number
	Stage string
	Err   error
}

func (e *ClipError) Error() string {
	return fmt.Sprintf("clip %d: %s failed: %v", e.Index, e.Stage, e.Err)
}

func (e *ClipError) Unwrap() error { return e.Err }
