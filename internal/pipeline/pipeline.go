// Package pipeline wires the adapters together behind one entry point.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jipraks/shortclipper/internal/clip"
	"github.com/jipraks/shortclipper/internal/domain/highlights"
	"github.com/jipraks/shortclipper/internal/domain/tracking"
	"github.com/jipraks/shortclipper/internal/events"
	"github.com/jipraks/shortclipper/internal/job"
	"github.com/jipraks/shortclipper/internal/ports"
	"github.com/jipraks/shortclipper/internal/ports/adapters/ffmpeg"
	"github.com/jipraks/shortclipper/internal/ports/adapters/openai"
	"github.com/jipraks/shortclipper/internal/ports/adapters/ytdlp"
	"github.com/jipraks/shortclipper/internal/types"
	"github.com/jipraks/shortclipper/internal/usage"
)

type Config struct {
	URL      string
	NumClips int
	Captions bool
	Hook     bool

	OutDir  string
	TempDir string

	// Sink receives every pipeline event. It may be called from the worker
	// goroutine.
	Sink events.Sink

	MinClipSec   float64
	MaxClipSec   float64
	ChunkSeconds float64

	SystemPrompt string
	Temperature  float64

	Tracking  tracking.Config
	Watermark string

	ContinueOnClipError bool
	KeepSources         bool

	FFmpegPath  string
	FFprobePath string
	YtDlpPath   string

	APIKey     string
	APIBaseURL string
	Model      string
	TTSModel   string
}

func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("url is empty")
	}
	if c.NumClips < 1 || c.NumClips > 10 {
		return fmt.Errorf("clips must be between 1 and 10, got %d", c.NumClips)
	}
	if c.MinClipSec <= 0 || c.MaxClipSec <= 0 || c.MinClipSec >= c.MaxClipSec {
		return fmt.Errorf("clip duration band %.0f-%.0fs is invalid", c.MinClipSec, c.MaxClipSec)
	}
	if c.APIKey == "" {
		return errors.New("API key is required")
	}
	if c.SystemPrompt != "" {
		if err := highlights.ValidateTemplate(c.SystemPrompt); err != nil {
			return err
		}
	}
	return nil
}

// Run processes one job to completion. The error is nil on success, satisfies
// types.IsCancelled on cancellation, and carries a user-presentable message
// otherwise; the same outcome also arrives on the event sink.
func Run(ctx context.Context, cfg Config) error {
	emitter := events.NewEmitter(cfg.Sink)
	counters := usage.NewCounters(func(gptIn, gptOut int, whisperSecs float64, ttsChars int) {
		emitter.Usage(events.Usage{
			GPTInputTokens:  gptIn,
			GPTOutputTokens: gptOut,
			WhisperSeconds:  whisperSecs,
			TTSChars:        ttsChars,
		})
	})

	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	dl := ytdlp.New(cfg.YtDlpPath)
	api := openai.New(cfg.APIKey, cfg.APIBaseURL, cfg.Model, cfg.TTSModel)

	trackCfg := cfg.Tracking
	if trackCfg == (tracking.Config{}) {
		trackCfg = tracking.DefaultConfig()
	}
	renderer := clip.New(clip.Deps{
		Video:    video,
		TTS:      api,
		Detector: video,
	}, clip.Config{
		Tracking:  trackCfg,
		Watermark: cfg.Watermark,
	})

	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = highlights.DefaultPromptTemplate
	}
	bounds := highlights.Bounds{MinSec: cfg.MinClipSec, MaxSec: cfg.MaxClipSec}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "output"
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = ".cache"
	}

	j := job.New(job.Config{
		URL:                 cfg.URL,
		NumClips:            cfg.NumClips,
		Options:             types.Options{Captions: cfg.Captions, Hook: cfg.Hook},
		OutDir:              outDir,
		TempDir:             tempDir,
		Bounds:              bounds,
		PromptTemplate:      prompt,
		Temperature:         cfg.Temperature,
		ChunkSeconds:        cfg.ChunkSeconds,
		ContinueOnClipError: cfg.ContinueOnClipError,
		KeepSources:         cfg.KeepSources,
	}, job.Deps{
		Downloader: dl,
		Video:      video,
		Chat:       api,
		STT:        api,
		Renderer:   renderer,
		Events:     emitter,
		Usage:      counters,
	})

	_, err := j.Run(ctx)
	return err
}

// ensure adapters implement the ports
var (
	_ ports.Downloader        = (*ytdlp.Adapter)(nil)
	_ ports.VideoTool         = (*ffmpeg.Adapter)(nil)
	_ ports.SubjectDetector   = (*ffmpeg.Adapter)(nil)
	_ ports.ChatCompleter     = (*openai.Client)(nil)
	_ ports.Transcriber       = (*openai.Client)(nil)
	_ ports.SpeechSynthesizer = (*openai.Client)(nil)
)
