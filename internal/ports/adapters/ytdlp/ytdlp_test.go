package ytdlp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{name: "watch", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ", ok: true},
		{name: "watch with params before v", url: "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ", ok: true},
		{name: "watch with trailing params", url: "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", want: "dQw4w9WgXcQ", ok: true},
		{name: "short link", url: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ", ok: true},
		{name: "shorts", url: "https://www.youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ", ok: true},
		{name: "embed", url: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ", ok: true},
		{name: "live", url: "https://www.youtube.com/live/dQw4w9WgXcQ", want: "dQw4w9WgXcQ", ok: true},
		{name: "not a video url", url: "https://example.com/watch?v=dQw4w9WgXcQ", ok: false},
		{name: "channel page", url: "https://www.youtube.com/@somechannel", ok: false},
		{name: "empty", url: "", ok: false},
		{name: "garbage", url: "not a url at all", ok: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractVideoID(tc.url)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("id = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDownloadPercentParsing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		line string
		want float64
		ok   bool
	}{
		{line: "[download]  45.5% of 120.00MiB at 5.00MiB/s ETA 00:13", want: 0.455, ok: true},
		{line: "[download] 100% of 120.00MiB in 00:24", want: 1, ok: true},
		{line: "[download] Destination: /tmp/source.mp4", ok: false},
		{line: "[info] Writing video metadata", ok: false},
	}
	for _, tc := range cases {
		m := downloadPctRE.FindStringSubmatch(tc.line)
		if (m != nil) != tc.ok {
			t.Fatalf("match(%q) = %v, want %v", tc.line, m != nil, tc.ok)
		}
		if m == nil {
			continue
		}
		got, err := parsePercent(m[1])
		if err != nil {
			t.Fatalf("parsePercent(%q): %v", m[1], err)
		}
		if got != tc.want {
			t.Fatalf("parsePercent(%q) = %v, want %v", m[1], got, tc.want)
		}
	}
}

func TestFindSubtitle_PrefersManualTrack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"source.en-orig.vtt", "source.en.vtt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("WEBVTT\n"), 0o644); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	got := findSubtitle(dir)
	if filepath.Base(got) != "source.en.vtt" {
		t.Fatalf("expected manual track, got %q", got)
	}
}

func TestFindSubtitle_FallsBackToAuto(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "source.en-orig.vtt"), []byte("WEBVTT\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got := findSubtitle(dir)
	if filepath.Base(got) != "source.en-orig.vtt" {
		t.Fatalf("expected auto track, got %q", got)
	}
	if findSubtitle(t.TempDir()) != "" {
		t.Fatalf("empty dir should yield no track")
	}
}

func TestReadInfoJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "source.info.json")
	if err := os.WriteFile(path, []byte(`{"title": "My Talk", "duration": 1825.4, "uploader": "x"}`), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	title, dur, err := readInfoJSON(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if title != "My Talk" || dur != 1825.4 {
		t.Fatalf("got %q/%v", title, dur)
	}
	if _, _, err := readInfoJSON(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestStderrTail(t *testing.T) {
	t.Parallel()

	if got := stderrTail(""); got != "downloader failed" {
		t.Fatalf("empty stderr: %q", got)
	}
	long := "a\nb\nc\nd\ne\nf"
	got := stderrTail(long)
	if got != "c\nd\ne\nf" {
		t.Fatalf("expected last four lines, got %q", got)
	}
	if strings.Count(got, "\n") != 3 {
		t.Fatalf("line count: %q", got)
	}
}
