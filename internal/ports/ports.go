package ports

import (
	"context"

	"github.com/jipraks/shortclipper/internal/types"
)

// ProgressFunc reports fractional progress in 0..1 for one external-tool run.
type ProgressFunc func(percent float64)

// Downloader retrieves the source video, metadata and any available subtitle
// track into destDir.
type Downloader interface {
	Fetch(ctx context.Context, url, destDir string, progress ProgressFunc) (types.SourceMedia, error)
}

// VideoTool wraps the external media encode/cut binary.
type VideoTool interface {
	// Probe returns duration in seconds and the video frame dimensions.
	Probe(ctx context.Context, path string) (duration float64, width, height int, err error)

	// ExtractAudio writes mono 16 kHz WAV for [start, start+dur) of the
	// input. dur <= 0 means through end of file.
	ExtractAudio(ctx context.Context, in, outWav string, start, dur float64) error

	// Cut extracts [start, end] of the source into an intermediate file.
	Cut(ctx context.Context, in string, start, end float64, out string, progress ProgressFunc) error

	// Reframe crops the input to a portrait 9:16 frame following the given
	// crop windows and scales to the delivery resolution.
	Reframe(ctx context.Context, in string, srcWidth, srcHeight int, windows []types.CropWindow, out string, progress ProgressFunc) error

	// MixHookAudio overlays the spoken hook onto the start of the clip.
	MixHookAudio(ctx context.Context, in, hookAudio, out string) error

	// BurnCaptions renders the ASS subtitle file into the video.
	BurnCaptions(ctx context.Context, in, assPath, out string, progress ProgressFunc) error

	// DrawWatermark overlays a small text watermark.
	DrawWatermark(ctx context.Context, in, text, out string) error
}

// Transcriber converts one audio file to a time-aligned transcript.
// Timestamps are relative to the start of the given file; callers chunk long
// audio and offset the results.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (types.Transcript, error)
}

// ChatCompleter makes one chat-completion call. Token counts come from the
// response's usage metadata.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (content string, usage types.TokenUsage, err error)
}

// SpeechSynthesizer renders text to a spoken audio file at outPath.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// SubjectDetector samples frames of a video segment and reports per-sample
// subject activity and horizontal position for the crop tracker.
type SubjectDetector interface {
	SampleActivity(ctx context.Context, videoPath string, fps float64) ([]types.ActivitySample, error)
}
