package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jipraks/shortclipper/internal/events"
	"github.com/jipraks/shortclipper/internal/pipeline"
	"github.com/jipraks/shortclipper/internal/types"
)

func run(cmd *cobra.Command, url string) error {
	clipsN, _ := cmd.Flags().GetInt("clips")
	outDir, _ := cmd.Flags().GetString("out")
	captions, _ := cmd.Flags().GetBool("captions")
	hook, _ := cmd.Flags().GetBool("hook")
	minSec, _ := cmd.Flags().GetInt("min")
	maxSec, _ := cmd.Flags().GetInt("max")
	temperature, _ := cmd.Flags().GetFloat64("temperature")
	watermark, _ := cmd.Flags().GetString("watermark")
	continueOnClipError, _ := cmd.Flags().GetBool("continue-on-clip-error")
	keepSources, _ := cmd.Flags().GetBool("keep-sources")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return errors.New("OPENAI_API_KEY is required (set it in .env)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := &printer{out: cmd.OutOrStdout()}
	cfg := pipeline.Config{
		URL:      url,
		NumClips: clipsN,
		Captions: captions,
		Hook:     hook,

		OutDir: outDir,
		Sink:   p.handle,

		MinClipSec:  float64(minSec),
		MaxClipSec:  float64(maxSec),
		Temperature: temperature,
		Watermark:   watermark,

		ContinueOnClipError: continueOnClipError,
		KeepSources:         keepSources,

		FFmpegPath:  getenvDefault("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getenvDefault("FFPROBE_PATH", "ffprobe"),
		YtDlpPath:   getenvDefault("YTDLP_PATH", "yt-dlp"),

		APIKey:     apiKey,
		APIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:      getenvDefault("OPENAI_MODEL", "gpt-4.1"),
		TTSModel:   getenvDefault("OPENAI_TTS_MODEL", "tts-1"),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	err := pipeline.Run(ctx, cfg)
	if types.IsCancelled(err) {
		// Cancelled is an outcome, not a failure.
		return nil
	}
	return err
}

// printer renders the event stream for the terminal. Stage changes come from
// the typed Progress events, never from parsing log text.
type printer struct {
	out       io.Writer
	lastStage string
	totals    events.Usage
}

func (p *printer) handle(ev events.Event) {
	switch e := ev.(type) {
	case events.Log:
		fmt.Fprintf(p.out, "  %s\n", e.Message)
	case events.Progress:
		label := e.Stage.String()
		if e.Clip > 0 {
			label = fmt.Sprintf("%s clip %d/%d", label, e.Clip, e.Clips)
		}
		if label != p.lastStage {
			p.lastStage = label
			fmt.Fprintf(p.out, "== %s\n", label)
		}
		if e.HasPercent {
			fmt.Fprintf(p.out, "  %s: %.0f%%\n", label, e.Percent*100)
		}
	case events.Usage:
		p.totals.GPTInputTokens += e.GPTInputTokens
		p.totals.GPTOutputTokens += e.GPTOutputTokens
		p.totals.WhisperSeconds += e.WhisperSeconds
		p.totals.TTSChars += e.TTSChars
	case events.Outcome:
		switch e.Status {
		case events.StatusSuccess:
			fmt.Fprintf(p.out, "done (tokens in/out %d/%d, audio %.0fs, tts %d chars)\n",
				p.totals.GPTInputTokens, p.totals.GPTOutputTokens, p.totals.WhisperSeconds, p.totals.TTSChars)
		case events.StatusCancelled:
			fmt.Fprintln(p.out, "cancelled")
		case events.StatusFailed:
			fmt.Fprintf(p.out, "failed: %s\n", e.Reason)
		}
	}
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
