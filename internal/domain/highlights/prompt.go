// Package highlights builds the selection prompt and turns the model's reply
// into validated clip candidates.
package highlights

import (
	"fmt"
	"strings"

	"github.com/jipraks/shortclipper/internal/types"
)

// The template must carry these; configuration validates them up front so the
// selector can assume a usable template.
var RequiredPlaceholders = []string{"{num_clips}", "{video_context}", "{transcript}"}

const DefaultPromptTemplate = `You are an expert short-form video editor. From the transcript below, pick the {num_clips} most engaging self-contained moments to publish as vertical short clips.

Video: {video_context}

Rules:
- Each clip must stand on its own: it starts cleanly and ends on a complete thought.
- Each clip should run between 15 and 90 seconds.
- Clips must not overlap.
- For each clip write a punchy title and a one-sentence spoken hook that teases the payoff.

Respond with a JSON array only, no prose and no code fences. Each element:
{"start": <seconds>, "end": <seconds>, "title": "...", "hook_text": "..."}

Transcript:
{transcript}`

// ValidateTemplate rejects templates missing a required placeholder.
func ValidateTemplate(tpl string) error {
	var missing []string
	for _, p := range RequiredPlaceholders {
		if !strings.Contains(tpl, p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("system prompt missing placeholders: %s", strings.Join(missing, ", "))
	}
	return nil
}

// BuildPrompt substitutes the placeholders into the template.
func BuildPrompt(tpl string, numClips int, title string, duration float64, tr types.Transcript) string {
	r := strings.NewReplacer(
		"{num_clips}", fmt.Sprintf("%d", numClips),
		"{video_context}", VideoContext(title, duration),
		"{transcript}", SerializeTranscript(tr),
	)
	return r.Replace(tpl)
}

// VideoContext is a short title/duration summary for the prompt.
func VideoContext(title string, duration float64) string {
	mins := int(duration) / 60
	secs := int(duration) % 60
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%q, duration %dm%02ds", title, mins, secs)
}

// SerializeTranscript renders segments as one timestamped line each.
func SerializeTranscript(tr types.Transcript) string {
	var b strings.Builder
	for _, s := range tr.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "[%.1f-%.1f] %s\n", s.Start, s.End, text)
	}
	return strings.TrimRight(b.String(), "\n")
}
