package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestContentToString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{name: "plain string", in: "hello", want: "hello"},
		{
			name: "parts array",
			in: []any{
				map[string]any{"type": "text", "text": "hel"},
				map[string]any{"type": "text", "text": "lo"},
			},
			want: "hello",
		},
		{name: "empty parts", in: []any{map[string]any{"type": "image"}}, wantErr: true},
		{name: "unexpected type", in: 42.0, wantErr: true},
		{name: "nil", in: nil, wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := contentToString(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": `[{"start":1,"end":30}]`}},
			},
			"usage": map[string]any{"prompt_tokens": 321, "completion_tokens": 45},
		})
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "gpt-4.1", "")
	content, usage, err := c.Complete(context.Background(), "system here", "user here", 0.7)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if content != `[{"start":1,"end":30}]` {
		t.Fatalf("content: %q", content)
	}
	if usage.InputTokens != 321 || usage.OutputTokens != 45 {
		t.Fatalf("usage: %+v", usage)
	}

	if gotReq["model"] != "gpt-4.1" {
		t.Fatalf("model in request: %v", gotReq["model"])
	}
	if gotReq["temperature"] != 0.7 {
		t.Fatalf("temperature in request: %v", gotReq["temperature"])
	}
	msgs, _ := gotReq["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages: %v", gotReq["messages"])
	}
}

func TestComplete_ErrorRedactsKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid key sk-secret-123"}`))
	}))
	defer srv.Close()

	c := New("sk-secret-123", srv.URL, "", "")
	_, _, err := c.Complete(context.Background(), "s", "u", 1)
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(err.Error(), "sk-secret-123") {
		t.Fatalf("API key leaked into error: %v", err)
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("expected status in error: %v", err)
	}
}

func TestTranscribe(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model field: %q", got)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format field: %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"segments": []any{
				map[string]any{"start": 0.0, "end": 2.5, "text": " hello "},
				map[string]any{"start": 2.5, "end": 2.5, "text": "degenerate"},
				map[string]any{"start": 3.0, "end": 4.0, "text": "   "},
				map[string]any{"start": 4.0, "end": 6.0, "text": "world"},
			},
		})
	}))
	defer srv.Close()

	wav := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(wav, []byte("RIFFfake"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := New("k", srv.URL, "", "")
	tr, err := c.Transcribe(context.Background(), wav)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("got %d segments, want 2: %+v", len(tr.Segments), tr.Segments)
	}
	if tr.Segments[0].Text != "hello" || tr.Segments[1].Text != "world" {
		t.Fatalf("segments: %+v", tr.Segments)
	}
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	audio := []byte("ID3fake-mp3-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "tts-1" || req["voice"] != "alloy" {
			t.Errorf("request: %v", req)
		}
		if req["input"] != "hook text" {
			t.Errorf("input: %v", req["input"])
		}
		_, _ = w.Write(audio)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "hook.mp3")
	c := New("k", srv.URL, "", "")
	if err := c.Synthesize(context.Background(), "hook text", out); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != string(audio) {
		t.Fatalf("audio bytes mismatch")
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c := New("k", "", "", "")
	if c.baseURL != "https://api.openai.com/v1" {
		t.Fatalf("base url: %q", c.baseURL)
	}
	if c.model != "gpt-4.1" || c.ttsModel != "tts-1" {
		t.Fatalf("model defaults: %q %q", c.model, c.ttsModel)
	}

	c = New("k", "https://proxy.example/v1/", "m", "tts")
	if c.baseURL != "https://proxy.example/v1" {
		t.Fatalf("trailing slash not trimmed: %q", c.baseURL)
	}
}
