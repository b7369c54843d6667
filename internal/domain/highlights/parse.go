package highlights

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jipraks/shortclipper/internal/types"
)

// ParseHighlights decodes the model reply into candidates. Models wrap JSON
// in code fences or an envelope object often enough that both are handled
// here; a reply with no JSON list at all is an error.
func ParseHighlights(content string) ([]types.Highlight, error) {
	clean, err := extractJSONList(content)
	if err != nil {
		return nil, err
	}

	var out []types.Highlight
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		// Envelope form: {"highlights": [...]} or {"clips": [...]}.
		var wrapped map[string]json.RawMessage
		if werr := json.Unmarshal([]byte(clean), &wrapped); werr == nil {
			for _, key := range []string{"highlights", "clips"} {
				if raw, ok := wrapped[key]; ok {
					if uerr := json.Unmarshal(raw, &out); uerr == nil {
						return out, nil
					}
				}
			}
		}
		return nil, fmt.Errorf("parse highlight list: %w", err)
	}
	return out, nil
}

func extractJSONList(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty model response")
	}

	// Strip markdown code fences.
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	// Best-effort: take the outermost JSON list, else the outermost object.
	if start := strings.Index(t, "["); start >= 0 {
		if end := strings.LastIndex(t, "]"); end > start {
			return t[start : end+1], nil
		}
	}
	if start := strings.Index(t, "{"); start >= 0 {
		if end := strings.LastIndex(t, "}"); end > start {
			return t[start : end+1], nil
		}
	}
	return "", fmt.Errorf("no JSON list in model response: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
