package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jipraks/shortclipper/internal/ports"
)

// runWithProgress runs ffmpeg with -progress pipe:1 and scans the key=value
// stream for out_time_ms, translating it into a 0..1 fraction of totalDur.
// totalDur <= 0 disables percentage reporting for that run.
func (a *Adapter) runWithProgress(ctx context.Context, op string, args []string, totalDur float64, progress ports.ProgressFunc) error {
	full := append([]string{"-nostats", "-hide_banner", "-loglevel", "error", "-progress", "pipe:1"}, args...)
	cmd := exec.CommandContext(ctx, a.ffmpeg, full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return wrapRunErr(ctx, op, err, stderr.String())
	}

	sc := bufio.NewScanner(stdout)
	for sc.Scan() {
		if progress == nil || totalDur <= 0 {
			continue
		}
		if pct, ok := parseProgressLine(sc.Text(), totalDur); ok {
			progress(pct)
		}
	}

	if err := cmd.Wait(); err != nil {
		return wrapRunErr(ctx, op, err, stderr.String())
	}
	if progress != nil && totalDur > 0 {
		progress(1)
	}
	return nil
}

// parseProgressLine handles the out_time_ms=NNN (microseconds, despite the
// name) and out_time=HH:MM:SS.micros forms ffmpeg emits.
func parseProgressLine(line string, totalDur float64) (float64, bool) {
	line = strings.TrimSpace(line)
	if v, ok := strings.CutPrefix(line, "out_time_ms="); ok {
		us, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return clampFrac(float64(us) / 1e6 / totalDur), true
	}
	if v, ok := strings.CutPrefix(line, "out_time="); ok {
		sec, err := parseClockTime(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return clampFrac(sec / totalDur), true
	}
	return 0, false
}

func parseClockTime(s string) (float64, error) {
	parts := strings.Split(s, ":")
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		total = total*60 + v
	}
	return total, nil
}

func clampFrac(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
