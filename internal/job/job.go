// Package job sequences one end-to-end processing run:
// fetch -> transcript -> select -> render xN -> cleanup.
package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jipraks/shortclipper/internal/clip"
	"github.com/jipraks/shortclipper/internal/domain/highlights"
	"github.com/jipraks/shortclipper/internal/domain/subtitles"
	"github.com/jipraks/shortclipper/internal/events"
	"github.com/jipraks/shortclipper/internal/ports"
	"github.com/jipraks/shortclipper/internal/types"
	"github.com/jipraks/shortclipper/internal/usage"
)

type Config struct {
	URL      string
	NumClips int
	Options  types.Options
	OutDir   string
	TempDir  string

	Bounds         highlights.Bounds
	PromptTemplate string
	Temperature    float64

	// ChunkSeconds caps the audio submitted per transcription call.
	ChunkSeconds float64

	// ContinueOnClipError switches the clip-failure policy from abort-job
	// (the default) to skip-and-continue.
	ContinueOnClipError bool

	// KeepSources retains the job temp dir for debugging.
	KeepSources bool
}

type Deps struct {
	Downloader ports.Downloader
	Video      ports.VideoTool
	Chat       ports.ChatCompleter
	STT        ports.Transcriber
	Renderer   *clip.Renderer
	Events     *events.Emitter
	Usage      *usage.Counters
}

// Job is one processing request. It owns its source media and temp files
// exclusively and is discarded when the run ends; nothing survives a restart.
type Job struct {
	id  string
	cfg Config
	d   Deps
}

func New(cfg Config, d Deps) *Job {
	if cfg.ChunkSeconds <= 0 {
		cfg.ChunkSeconds = 1200
	}
	return &Job{id: uuid.NewString(), cfg: cfg, d: d}
}

func (j *Job) ID() string { return j.id }

// Run executes the pipeline and always emits exactly one terminal Outcome
// event: success, cancelled, or failed with a reason.
func (j *Job) Run(ctx context.Context) ([]types.ClipResult, error) {
	results, err := j.run(ctx)
	switch {
	case err == nil:
		j.d.Events.Outcome(events.StatusSuccess, "")
	case types.IsCancelled(err):
		j.d.Events.Outcome(events.StatusCancelled, "")
	default:
		j.d.Events.Outcome(events.StatusFailed, err.Error())
	}
	return results, err
}

func (j *Job) run(ctx context.Context) ([]types.ClipResult, error) {
	tmp := filepath.Join(j.cfg.TempDir, "job-"+j.id)
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return nil, fmt.Errorf("prepare workspace: %w", err)
	}
	// Temp files go on success, failure and cancellation alike. Completed
	// output folders are deliverables and are never touched here.
	defer j.cleanup(tmp)

	if err := os.MkdirAll(j.cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare output dir: %w", err)
	}

	// Fetch.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.d.Events.Stage(events.StageDownload)
	j.d.Events.Logf("downloading source video")
	media, err := j.d.Downloader.Fetch(ctx, j.cfg.URL, tmp, func(p float64) {
		j.d.Events.StagePercent(events.StageDownload, p)
	})
	if err != nil {
		return nil, err
	}
	j.d.Events.Logf("downloaded %q (%.0fs)", media.Title, media.Duration)

	// Transcript.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.d.Events.Stage(events.StageTranscribe)
	tr, err := j.transcript(ctx, tmp, &media)
	if err != nil {
		return nil, err
	}
	j.d.Events.Logf("transcript ready: %d segments", len(tr.Segments))

	// Select.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.d.Events.Stage(events.StageSelect)
	j.d.Events.Logf("finding highlights")
	cands, err := j.selectHighlights(ctx, media, tr)
	if err != nil {
		return nil, err
	}
	j.d.Events.Logf("selected %d highlight(s)", len(cands))

	// Render, one clip at a time. The sequential policy keeps progress
	// attribution and cancellation semantics simple; encoding is the
	// bottleneck either way.
	var results []types.ClipResult
	for i, h := range cands {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		j.d.Events.Clip(i+1, len(cands))
		res, rerr := j.d.Renderer.Render(ctx, clip.Request{
			Media:      media,
			Transcript: tr,
			Highlight:  h,
			Index:      i + 1,
			Total:      len(cands),
			Options:    j.cfg.Options,
			WorkDir:    tmp,
			OutDir:     j.cfg.OutDir,
			Events:     j.d.Events,
			Usage:      j.d.Usage,
		})
		if rerr != nil {
			if types.IsCancelled(rerr) {
				return results, rerr
			}
			if j.cfg.ContinueOnClipError {
				j.d.Events.Logf("%v; continuing with remaining clips", rerr)
				continue
			}
			return results, rerr
		}
		results = append(results, res)
	}
	return results, nil
}

// transcript prefers the platform subtitle track; an unusable track falls
// back to speech-to-text transparently.
func (j *Job) transcript(ctx context.Context, tmp string, media *types.SourceMedia) (types.Transcript, error) {
	if media.SubtitlePath != "" {
		tr, err := j.parseSubtitles(media.SubtitlePath)
		if err == nil && len(tr.Segments) > 0 {
			j.d.Events.Logf("using platform subtitle track")
			return tr, nil
		}
		j.d.Events.Logf("subtitle track unusable, transcribing audio instead")
	}
	return j.transcribeAudio(ctx, tmp, media)
}

func (j *Job) parseSubtitles(path string) (types.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Transcript{}, err
	}
	defer f.Close()
	return subtitles.ParseVTT(f)
}

// transcribeAudio extracts and transcribes the audio in chunks no longer than
// ChunkSeconds, offsetting each chunk's timestamps so ordering stays
// monotonic across boundaries. Submitted seconds accrue to usage.
func (j *Job) transcribeAudio(ctx context.Context, tmp string, media *types.SourceMedia) (types.Transcript, error) {
	total := media.Duration
	if total <= 0 {
		var err error
		total, _, _, err = j.d.Video.Probe(ctx, media.VideoPath)
		if err != nil {
			return types.Transcript{}, &types.TranscriptUnavailableError{Reason: fmt.Sprintf("probe source: %v", err)}
		}
		media.Duration = total
	}

	var all types.Transcript
	for off := 0.0; off < total; off += j.cfg.ChunkSeconds {
		if err := ctx.Err(); err != nil {
			return types.Transcript{}, err
		}
		dur := j.cfg.ChunkSeconds
		if off+dur > total {
			dur = total - off
		}
		wav := filepath.Join(tmp, fmt.Sprintf("audio-%07.1f.wav", off))
		if err := j.d.Video.ExtractAudio(ctx, media.VideoPath, wav, off, dur); err != nil {
			return types.Transcript{}, &types.TranscriptUnavailableError{Reason: fmt.Sprintf("extract audio: %v", err)}
		}
		part, err := j.d.STT.Transcribe(ctx, wav)
		if err != nil {
			if types.IsCancelled(err) {
				return types.Transcript{}, err
			}
			return types.Transcript{}, &types.TranscriptUnavailableError{Reason: err.Error()}
		}
		j.d.Usage.Add(0, 0, dur, 0)

		for _, s := range part.Segments {
			s.Start += off
			s.End += off
			if n := len(all.Segments); n > 0 && s.Start < all.Segments[n-1].End {
				s.Start = all.Segments[n-1].End
				if s.End <= s.Start {
					continue
				}
			}
			all.Segments = append(all.Segments, s)
		}
		j.d.Events.StagePercent(events.StageTranscribe, (off+dur)/total)
	}

	if len(all.Segments) == 0 {
		return types.Transcript{}, &types.TranscriptUnavailableError{Reason: "no speech recognized"}
	}
	return all, nil
}

func (j *Job) selectHighlights(ctx context.Context, media types.SourceMedia, tr types.Transcript) ([]types.Highlight, error) {
	prompt := highlights.BuildPrompt(j.cfg.PromptTemplate, j.cfg.NumClips, media.Title, media.Duration, tr)
	content, tok, err := j.d.Chat.Complete(ctx, prompt, "Select the highlights and return the JSON array.", j.cfg.Temperature)
	if err != nil {
		return nil, err
	}
	j.d.Usage.Add(tok.InputTokens, tok.OutputTokens, 0, 0)

	cands, perr := highlights.ParseHighlights(content)
	if perr != nil {
		// A garbled reply is only fatal because it leaves zero candidates.
		j.d.Events.Logf("could not parse model response: %v", perr)
	}
	if len(cands) > j.cfg.NumClips {
		cands = cands[:j.cfg.NumClips]
	}
	valid := highlights.Filter(cands, media.Duration, j.cfg.Bounds, j.d.Events.Logf)
	if len(valid) == 0 {
		return nil, &types.NoHighlightsError{}
	}
	if len(valid) < j.cfg.NumClips {
		j.d.Events.Logf("model delivered %d of %d requested clips", len(valid), j.cfg.NumClips)
	}
	return valid, nil
}

func (j *Job) cleanup(tmp string) {
	j.d.Events.Stage(events.StageCleanup)
	if j.cfg.KeepSources {
		j.d.Events.Logf("keeping temp files: %s", tmp)
		return
	}
	if err := os.RemoveAll(tmp); err != nil {
		j.d.Events.Logf("cleanup failed: %v", err)
		return
	}
	j.d.Events.Logf("cleaned up temp files")
}
