package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jipraks/shortclipper/internal/types"
)

// Platform subtitle tracks arrive as WebVTT. Auto-generated tracks carry
// inline word timestamps and repeat each line in a rolling window; parsing
// strips the markup and drops the repeats so the result matches the segment
// invariants (ascending, non-overlapping, start < end).

var (
	vttTimingRE = regexp.MustCompile(`(\d{1,2}:)?\d{2}:\d{2}\.\d{3}\s+-->\s+(\d{1,2}:)?\d{2}:\d{2}\.\d{3}`)
	vttTagRE    = regexp.MustCompile(`<[^>]*>`)
)

// ParseVTT reads a WebVTT track into transcript segments. Parsing the same
// input always yields the identical segment sequence.
func ParseVTT(r io.Reader) (types.Transcript, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		tr       types.Transcript
		lastText string
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !vttTimingRE.MatchString(line) {
			continue
		}
		start, end, err := parseCueTiming(line)
		if err != nil {
			return types.Transcript{}, err
		}

		var parts []string
		for sc.Scan() {
			text := strings.TrimSpace(sc.Text())
			if text == "" {
				break
			}
			text = strings.TrimSpace(vttTagRE.ReplaceAllString(text, ""))
			if text == "" || text == lastText {
				continue
			}
			parts = append(parts, text)
		}
		if len(parts) == 0 {
			continue
		}
		text := strings.Join(parts, " ")
		if text == lastText || end <= start {
			continue
		}
		lastText = text

		// Auto subs can overlap the previous rolling cue; clamp to keep
		// the sequence non-overlapping.
		if n := len(tr.Segments); n > 0 && start < tr.Segments[n-1].End {
			start = tr.Segments[n-1].End
			if end <= start {
				continue
			}
		}
		tr.Segments = append(tr.Segments, types.Segment{Start: start, End: end, Text: text})
	}
	if err := sc.Err(); err != nil {
		return types.Transcript{}, fmt.Errorf("read vtt: %w", err)
	}
	return tr, nil
}

func parseCueTiming(line string) (float64, float64, error) {
	idx := strings.Index(line, "-->")
	if idx < 0 {
		return 0, 0, fmt.Errorf("malformed cue timing: %q", line)
	}
	startRaw := strings.TrimSpace(line[:idx])
	endRaw := strings.TrimSpace(line[idx+3:])
	// Cue settings (position, align) may trail the end time.
	if sp := strings.IndexByte(endRaw, ' '); sp >= 0 {
		endRaw = endRaw[:sp]
	}
	start, err := parseVTTTime(startRaw)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseVTTTime(endRaw)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseVTTTime(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed vtt timestamp: %q", s)
	}
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed vtt timestamp: %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}
