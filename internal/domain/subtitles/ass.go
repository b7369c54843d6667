package subtitles

import (
	"fmt"
	"strings"

	"github.com/jipraks/shortclipper/internal/types"
)

// RenderClipASS builds a styled ASS subtitle file for the transcript slice
// covering [start, end] of the source, with all event times shifted to
// clip-local offsets. Word timing inside a segment is interpolated evenly,
// which keeps karaoke pacing usable even for segment-only transcripts.
func RenderClipASS(tr types.Transcript, start, end float64) string {
	words := sliceWords(tr, start, end)
	if len(words) == 0 {
		return renderPlain(sliceText(tr, start, end), end-start)
	}
	return renderKaraoke(packWords(words))
}

type word struct {
	Start float64
	End   float64
	Text  string
}

type line struct {
	Start float64
	End   float64
	Words []word
}

func sliceWords(tr types.Transcript, start, end float64) []word {
	var out []word
	for _, s := range tr.Segments {
		if s.End <= start || s.Start >= end {
			continue
		}
		fields := strings.Fields(s.Text)
		if len(fields) == 0 {
			continue
		}
		step := (s.End - s.Start) / float64(len(fields))
		for i, f := range fields {
			ws := s.Start + float64(i)*step
			we := ws + step
			if we <= start || ws >= end {
				continue
			}
			if ws < start {
				ws = start
			}
			if we > end {
				we = end
			}
			out = append(out, word{Start: ws - start, End: we - start, Text: sanitizeASS(f)})
		}
	}
	return out
}

func sliceText(tr types.Transcript, start, end float64) string {
	var parts []string
	for _, s := range tr.Segments {
		if s.End <= start || s.Start >= end {
			continue
		}
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func packWords(words []word) []line {
	// Budgets tuned for readable chunks on a 1080-wide portrait frame.
	const (
		charBudget = 24
		wordBudget = 5
	)
	var out []line
	cur := line{Start: words[0].Start}
	curLen := 0
	for i, w := range words {
		wl := len([]rune(w.Text))
		nextLen := curLen
		if curLen > 0 {
			nextLen++
		}
		nextLen += wl
		if len(cur.Words) >= wordBudget || (len(cur.Words) > 0 && nextLen > charBudget) {
			cur.End = cur.Words[len(cur.Words)-1].End
			out = append(out, cur)
			cur = line{Start: w.Start}
			curLen = 0
		}
		cur.Words = append(cur.Words, w)
		if curLen > 0 {
			curLen++
		}
		curLen += wl
		if i == len(words)-1 {
			cur.End = w.End
			out = append(out, cur)
		}
	}
	return out
}

func renderKaraoke(lines []line) string {
	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, ln := range lines {
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(ln.Start))
		b.WriteString(",")
		b.WriteString(assTime(ln.End))
		b.WriteString(",Caption,,0,0,0,,")
		for _, w := range ln.Words {
			durCS := int((w.End - w.Start) * 100)
			if durCS < 1 {
				durCS = 1
			}
			b.WriteString(fmt.Sprintf("{\\k%d}%s ", durCS, w.Text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderPlain(text string, dur float64) string {
	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	b.WriteString("Dialogue: 0,0:00:00.00,")
	b.WriteString(assTime(dur))
	b.WriteString(",Caption,,0,0,0,,")
	b.WriteString(sanitizeASS(text))
	b.WriteString("\n")
	return b.String()
}

func assHeader() string {
	return strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Caption, Inter, 96, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,7,3,2, 60,60,420,1
`)
}

func assTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec * 100)
	cs := total % 100
	s := (total / 100) % 60
	m := (total / 6000) % 60
	h := total / 360000
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
