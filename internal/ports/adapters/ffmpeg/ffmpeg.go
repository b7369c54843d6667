// Package ffmpeg shells out to ffmpeg/ffprobe for every cut, encode and
// analysis step of the pipeline.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jipraks/shortclipper/internal/ports"
	"github.com/jipraks/shortclipper/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) Probe(ctx context.Context, path string) (float64, int, int, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ffprobe %s: %w\n%s", path, err, tail(string(b)))
	}

	var out struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return 0, 0, 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return 0, 0, 0, fmt.Errorf("no video stream in %s", path)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
	}
	return dur, out.Streams[0].Width, out.Streams[0].Height, nil
}

func (a *Adapter) ExtractAudio(ctx context.Context, in, outWav string, start, dur float64) error {
	args := []string{"-y"}
	if start > 0 {
		args = append(args, "-ss", fmtSeconds(start))
	}
	args = append(args, "-i", in)
	if dur > 0 {
		args = append(args, "-t", fmtSeconds(dur))
	}
	args = append(args,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return wrapRunErr(ctx, "extract audio", err, string(b))
	}
	return nil
}

func (a *Adapter) Cut(ctx context.Context, in string, start, end float64, out string, progress ports.ProgressFunc) error {
	args := []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", in,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		out,
	}
	return a.runWithProgress(ctx, "cut clip", args, end-start, progress)
}

func (a *Adapter) Reframe(ctx context.Context, in string, srcWidth, srcHeight int, windows []types.CropWindow, out string, progress ports.ProgressFunc) error {
	cropW := portraitCropWidth(srcWidth, srcHeight)
	filter := fmt.Sprintf("crop=%d:%d:%s:0,scale=1080:1920,setsar=1", cropW, srcHeight, cropXExpr(windows))

	var dur float64
	if n := len(windows); n > 0 {
		dur = windows[n-1].End
	}
	args := []string{
		"-y",
		"-i", in,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "copy",
		out,
	}
	return a.runWithProgress(ctx, "reframe clip", args, dur, progress)
}

func (a *Adapter) MixHookAudio(ctx context.Context, in, hookAudio, out string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", in,
		"-i", hookAudio,
		"-filter_complex",
		"[0:a]volume=0.25:enable='lt(t,3)'[duck];[duck][1:a]amix=inputs=2:duration=first:dropout_transition=0[a]",
		"-map", "0:v",
		"-map", "[a]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return wrapRunErr(ctx, "mix hook audio", err, string(b))
	}
	return nil
}

func (a *Adapter) BurnCaptions(ctx context.Context, in, assPath, out string, progress ports.ProgressFunc) error {
	args := []string{
		"-y",
		"-i", in,
		"-vf", "subtitles=" + escapeFilterPath(assPath),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "copy",
		out,
	}
	return a.runWithProgress(ctx, "burn captions", args, 0, progress)
}

func (a *Adapter) DrawWatermark(ctx context.Context, in, text, out string) error {
	filter := fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white@0.6:fontsize=42:x=(w-text_w)/2:y=h-140",
		escapeDrawText(text),
	)
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", in,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "copy",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return wrapRunErr(ctx, "draw watermark", err, string(b))
	}
	return nil
}

// portraitCropWidth is the widest 9:16 crop that fits the source frame,
// rounded down to an even pixel count for the encoder.
func portraitCropWidth(srcWidth, srcHeight int) int {
	w := srcHeight * 9 / 16
	if w > srcWidth {
		w = srcWidth
	}
	return w &^ 1
}

// cropXExpr builds a time-conditional x expression so one encode pass follows
// every crop window.
func cropXExpr(windows []types.CropWindow) string {
	if len(windows) == 0 {
		return "(iw-ow)/2"
	}
	expr := strconv.Itoa(windows[len(windows)-1].X)
	for i := len(windows) - 2; i >= 0; i-- {
		expr = fmt.Sprintf("if(lt(t\\,%s)\\,%d\\,%s)", fmtSeconds(windows[i].End), windows[i].X, expr)
	}
	return expr
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}

func escapeDrawText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ":", "\\:")
	return s
}

// wrapRunErr reports a subprocess failure, but never mistakes a kill caused
// by cancellation for a real one.
func wrapRunErr(ctx context.Context, op string, err error, output string) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return fmt.Errorf("ffmpeg %s: %w\n%s", op, err, tail(output))
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	const n = 600
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
