package types

import (
	"encoding/json"
	"fmt"
	"os"
)

// Sidecar is the data.json written next to each rendered clip. The renderer
// owns title, hook_text and duration_seconds; the youtube_* fields belong to
// the upload flow and are only initialized here, never overwritten.
type Sidecar struct {
	Title           string   `json:"title"`
	HookText        string   `json:"hook_text"`
	DurationSeconds float64  `json:"duration_seconds"`
	YouTubeURL      *string  `json:"youtube_url"`
	YouTubeVideoID  *string  `json:"youtube_video_id"`
	YouTubeTitle    *string  `json:"youtube_title"`
	YouTubeDesc     *string  `json:"youtube_description"`
	YouTubeTags     []string `json:"youtube_tags"`
}

// WriteSidecar persists sc to path. When the file already exists, fields not
// owned by the renderer are carried over unchanged.
func WriteSidecar(path string, sc Sidecar) error {
	merged := map[string]any{}
	if prev, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(prev, &merged); err != nil {
			return fmt.Errorf("parse existing sidecar: %w", err)
		}
	}

	b, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	var owned map[string]any
	if err := json.Unmarshal(b, &owned); err != nil {
		return fmt.Errorf("remarshal sidecar: %w", err)
	}
	owned["title"] = sc.Title
	owned["hook_text"] = sc.HookText
	owned["duration_seconds"] = sc.DurationSeconds
	for k, v := range owned {
		if _, taken := merged[k]; taken && k != "title" && k != "hook_text" && k != "duration_seconds" {
			continue
		}
		merged[k] = v
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}

// ReadSidecar loads a clip's data.json.
func ReadSidecar(path string) (Sidecar, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Sidecar{}, err
	}
	var sc Sidecar
	if err := json.Unmarshal(b, &sc); err != nil {
		return Sidecar{}, fmt.Errorf("parse sidecar %s: %w", path, err)
	}
	return sc, nil
}
