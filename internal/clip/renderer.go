// Package clip renders one highlight into a finished portrait clip folder.
package clip

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/jipraks/shortclipper/internal/domain/subtitles"
	"github.com/jipraks/shortclipper/internal/domain/tracking"
	"github.com/jipraks/shortclipper/internal/events"
	"github.com/jipraks/shortclipper/internal/ports"
	"github.com/jipraks/shortclipper/internal/types"
	"github.com/jipraks/shortclipper/internal/usage"
)

type Deps struct {
	Video    ports.VideoTool
	TTS      ports.SpeechSynthesizer
	Detector ports.SubjectDetector
}

type Config struct {
	Tracking  tracking.Config
	SampleFPS float64
	Watermark string // empty disables the overlay
}

type Renderer struct {
	d   Deps
	cfg Config
}

func New(d Deps, cfg Config) *Renderer {
	if cfg.SampleFPS <= 0 {
		cfg.SampleFPS = 2
	}
	return &Renderer{d: d, cfg: cfg}
}

// Request carries everything one clip render needs. WorkDir holds
// intermediates (deleted with the job); OutDir receives the final folder.
type Request struct {
	Media      types.SourceMedia
	Transcript types.Transcript
	Highlight  types.Highlight
	Index      int // 1-based clip number; ordering follows the model output
	Total      int
	Options    types.Options
	WorkDir    string
	OutDir     string
	Events     *events.Emitter
	Usage      *usage.Counters
}

// Render runs the per-clip state machine:
//
//	CUT -> REFRAME -> [HOOK] -> [CAPTION] -> FINALIZE
//
// Cancellation is checked between every transition. The output folder only
// comes into existence during FINALIZE, so an aborted clip leaves no
// half-complete deliverable behind.
func (r *Renderer) Render(ctx context.Context, req Request) (types.ClipResult, error) {
	h := req.Highlight
	base := filepath.Join(req.WorkDir, fmt.Sprintf("clip%02d", req.Index))
	sub := func(pct float64) {
		req.Events.ClipPercent(req.Index, req.Total, pct)
	}

	// CUT
	if err := ctx.Err(); err != nil {
		return types.ClipResult{}, err
	}
	req.Events.Logf("clip %d/%d: cutting %.1fs-%.1fs", req.Index, req.Total, h.Start, h.End)
	cut := base + "-cut.mp4"
	if err := r.d.Video.Cut(ctx, req.Media.VideoPath, h.Start, h.End, cut, sub); err != nil {
		return types.ClipResult{}, r.fail(req.Index, "cut", err)
	}
	current := cut

	// REFRAME
	if err := ctx.Err(); err != nil {
		return types.ClipResult{}, err
	}
	req.Events.Logf("clip %d/%d: converting to portrait", req.Index, req.Total)
	portrait := base + "-portrait.mp4"
	if err := r.reframe(ctx, current, portrait, sub); err != nil {
		return types.ClipResult{}, r.fail(req.Index, "reframe", err)
	}
	current = portrait

	// HOOK
	if req.Options.Hook && h.HookText != "" {
		if err := ctx.Err(); err != nil {
			return types.ClipResult{}, err
		}
		req.Events.Logf("clip %d/%d: adding spoken hook", req.Index, req.Total)
		hooked := base + "-hooked.mp4"
		if err := r.addHook(ctx, current, h.HookText, base, hooked, req.Usage); err != nil {
			return types.ClipResult{}, r.fail(req.Index, "hook", err)
		}
		current = hooked
	}

	// CAPTION
	if req.Options.Captions {
		if err := ctx.Err(); err != nil {
			return types.ClipResult{}, err
		}
		req.Events.Logf("clip %d/%d: burning captions", req.Index, req.Total)
		captioned := base + "-captioned.mp4"
		if err := r.addCaptions(ctx, current, req.Transcript, h, base, captioned, sub); err != nil {
			return types.ClipResult{}, r.fail(req.Index, "caption", err)
		}
		current = captioned
	}

	if r.cfg.Watermark != "" {
		if err := ctx.Err(); err != nil {
			return types.ClipResult{}, err
		}
		marked := base + "-marked.mp4"
		if err := r.d.Video.DrawWatermark(ctx, current, r.cfg.Watermark, marked); err != nil {
			return types.ClipResult{}, r.fail(req.Index, "watermark", err)
		}
		current = marked
	}

	// FINALIZE
	if err := ctx.Err(); err != nil {
		return types.ClipResult{}, err
	}
	res, err := r.finalize(current, req)
	if err != nil {
		return types.ClipResult{}, r.fail(req.Index, "finalize", err)
	}
	req.Events.Logf("clip %d/%d: done", req.Index, req.Total)
	return res, nil
}

func (r *Renderer) reframe(ctx context.Context, in, out string, sub ports.ProgressFunc) error {
	dur, w, h, err := r.d.Video.Probe(ctx, in)
	if err != nil {
		return err
	}
	samples, err := r.d.Detector.SampleActivity(ctx, in, r.cfg.SampleFPS)
	if err != nil {
		return err
	}
	cropW := h * 9 / 16
	if cropW > w {
		cropW = w
	}
	cropW &^= 1
	windows := tracking.ComputeCropWindows(samples, r.cfg.Tracking, dur, w, cropW)
	return r.d.Video.Reframe(ctx, in, w, h, windows, out, sub)
}

func (r *Renderer) addHook(ctx context.Context, in, hookText, base, out string, counters *usage.Counters) error {
	audio := base + "-hook.mp3"
	if err := r.d.TTS.Synthesize(ctx, hookText, audio); err != nil {
		return err
	}
	counters.Add(0, 0, 0, utf8.RuneCountInString(hookText))
	return r.d.Video.MixHookAudio(ctx, in, audio, out)
}

func (r *Renderer) addCaptions(ctx context.Context, in string, tr types.Transcript, h types.Highlight, base, out string, sub ports.ProgressFunc) error {
	ass := subtitles.RenderClipASS(tr, h.Start, h.End)
	assPath := base + ".ass"
	if err := os.WriteFile(assPath, []byte(ass), 0o644); err != nil {
		return err
	}
	return r.d.Video.BurnCaptions(ctx, in, assPath, out, sub)
}

// finalize moves the rendered video into its own output folder and writes the
// sidecar. The folder is removed again if any step fails, so a folder's
// existence always means a complete clip.
func (r *Renderer) finalize(current string, req Request) (types.ClipResult, error) {
	folder := filepath.Join(req.OutDir, FolderName(time.Now().UTC(), req.Index))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return types.ClipResult{}, err
	}
	video := filepath.Join(folder, "master.mp4")
	if err := moveFile(current, video); err != nil {
		_ = os.RemoveAll(folder)
		return types.ClipResult{}, err
	}
	sc := types.Sidecar{
		Title:           req.Highlight.Title,
		HookText:        req.Highlight.HookText,
		DurationSeconds: req.Highlight.Duration(),
	}
	if err := types.WriteSidecar(filepath.Join(folder, "data.json"), sc); err != nil {
		_ = os.RemoveAll(folder)
		return types.ClipResult{}, err
	}
	return types.ClipResult{
		VideoPath:  video,
		FolderPath: folder,
		Title:      req.Highlight.Title,
		HookText:   req.Highlight.HookText,
		Duration:   req.Highlight.Duration(),
	}, nil
}

// FolderName is timestamp-then-sequence so listing output folders by name is
// chronological.
func FolderName(now time.Time, index int) string {
	return fmt.Sprintf("%s-clip%02d", now.Format("20060102-150405"), index)
}

func (r *Renderer) fail(index int, stage string, err error) error {
	if types.IsCancelled(err) {
		return err
	}
	return &types.ClipError{Index: index, Stage: stage, Err: err}
}

// moveFile renames, falling back to copy+delete across filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
