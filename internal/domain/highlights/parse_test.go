package highlights

import (
	"testing"

	"github.com/jipraks/shortclipper/internal/types"
)

func TestParseHighlights(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "bare array",
			content: `[{"start": 10, "end": 40, "title": "A", "hook_text": "h"}]`,
			want:    1,
		},
		{
			name: "code fenced",
			content: "```json\n" +
				`[{"start": 10, "end": 40, "title": "A", "hook_text": "h"},` +
				`{"start": 50, "end": 80, "title": "B", "hook_text": "h2"}]` + "\n```",
			want: 2,
		},
		{
			name:    "prose around the array",
			content: "Here are your clips:\n[{\"start\": 1, \"end\": 20, \"title\": \"A\", \"hook_text\": \"h\"}]\nEnjoy!",
			want:    1,
		},
		{
			name:    "highlights envelope",
			content: `{"highlights": [{"start": 5, "end": 25, "title": "A", "hook_text": "h"}]}`,
			want:    1,
		},
		{
			name:    "clips envelope",
			content: `{"clips": [{"start": 5, "end": 25, "title": "A", "hook_text": "h"}]}`,
			want:    1,
		},
		{name: "empty", content: "   ", wantErr: true},
		{name: "no json at all", content: "I could not find any highlights.", wantErr: true},
		{name: "broken json", content: `[{"start": 10, "end":`, wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseHighlights(tc.content)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("got %d highlights, want %d", len(got), tc.want)
			}
		})
	}
}

func TestParseHighlights_FieldMapping(t *testing.T) {
	t.Parallel()

	got, err := ParseHighlights(`[{"start": 12.5, "end": 48.25, "title": "Reveal", "hook_text": "You will not believe this"}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := types.Highlight{Start: 12.5, End: 48.25, Title: "Reveal", HookText: "You will not believe this"}
	if got[0] != want {
		t.Fatalf("got %+v, want %+v", got[0], want)
	}
}
