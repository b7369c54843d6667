// Package ytdlp downloads source videos, metadata and subtitle tracks via the
// yt-dlp binary.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jipraks/shortclipper/internal/ports"
	"github.com/jipraks/shortclipper/internal/types"
)

type Adapter struct {
	bin string
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath}
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:[^&\s]+&)*v=)([\w-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([\w-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/shorts/)([\w-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([\w-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/live/)([\w-]{11})`),
}

// ExtractVideoID pulls the 11-character platform video ID out of a URL.
func ExtractVideoID(url string) (string, bool) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

var downloadPctRE = regexp.MustCompile(`\[download\]\s+(\d+(?:\.\d+)?)%`)

// Fetch downloads the source video into destDir as source.mp4, alongside the
// info JSON and, when the platform has one, an English subtitle track.
// Percent progress from yt-dlp's own output drives the progress callback.
func (a *Adapter) Fetch(ctx context.Context, url, destDir string, progress ports.ProgressFunc) (types.SourceMedia, error) {
	if _, ok := ExtractVideoID(url); !ok {
		return types.SourceMedia{}, &types.InvalidURLError{URL: url}
	}

	outTpl := filepath.Join(destDir, "source.%(ext)s")
	cmd := exec.CommandContext(ctx, a.bin,
		"--newline",
		"--no-playlist",
		"--no-warnings",
		"-f", "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/b",
		"--merge-output-format", "mp4",
		"--write-info-json",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", "en.*",
		"--sub-format", "vtt",
		"-o", outTpl,
		url,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return types.SourceMedia{}, err
	}
	if err := cmd.Start(); err != nil {
		return types.SourceMedia{}, &types.FetchError{Msg: "could not start downloader", Err: err}
	}

	sc := bufio.NewScanner(stdout)
	for sc.Scan() {
		if progress == nil {
			continue
		}
		if m := downloadPctRE.FindStringSubmatch(sc.Text()); m != nil {
			if pct, perr := parsePercent(m[1]); perr == nil {
				progress(pct)
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return types.SourceMedia{}, cerr
		}
		return types.SourceMedia{}, &types.FetchError{Msg: stderrTail(stderr.String()), Err: err}
	}

	media := types.SourceMedia{VideoPath: filepath.Join(destDir, "source.mp4")}
	if _, err := os.Stat(media.VideoPath); err != nil {
		return types.SourceMedia{}, &types.FetchError{Msg: "downloader produced no video file", Err: err}
	}

	title, duration, err := readInfoJSON(filepath.Join(destDir, "source.info.json"))
	if err != nil {
		return types.SourceMedia{}, &types.FetchError{Msg: "downloader produced no metadata", Err: err}
	}
	media.Title = title
	media.Duration = duration
	media.SubtitlePath = findSubtitle(destDir)

	if progress != nil {
		progress(1)
	}
	return media, nil
}

func parsePercent(s string) (float64, error) {
	var v float64
	if _, err := fmt.Sscanf(s, "%f", &v); err != nil {
		return 0, err
	}
	return v / 100, nil
}

func readInfoJSON(path string) (string, float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	var info struct {
		Title    string  `json:"title"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(b, &info); err != nil {
		return "", 0, fmt.Errorf("parse info json: %w", err)
	}
	return info.Title, info.Duration, nil
}

// findSubtitle picks the downloaded VTT track, preferring a manual one
// ("source.en.vtt") over auto captions when both exist.
func findSubtitle(destDir string) string {
	matches, err := filepath.Glob(filepath.Join(destDir, "source*.vtt"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	for _, m := range matches {
		if filepath.Base(m) == "source.en.vtt" {
			return m
		}
	}
	return matches[0]
}

func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "downloader failed"
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, "\n")
}
