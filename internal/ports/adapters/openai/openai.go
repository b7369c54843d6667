// Package openai talks to an OpenAI-compatible API for chat completion,
// speech-to-text and speech synthesis.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jipraks/shortclipper/internal/types"
)

const (
	chatTimeout       = 2 * time.Minute
	transcribeTimeout = 10 * time.Minute
	speechTimeout     = 1 * time.Minute

	whisperModel = "whisper-1"
	ttsVoice     = "alloy"
)

type Client struct {
	key      string
	baseURL  string
	model    string
	ttsModel string
	client   *http.Client
}

func New(apiKey, baseURL, model, ttsModel string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4.1"
	}
	if ttsModel == "" {
		ttsModel = "tts-1"
	}
	return &Client{
		key:      apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		ttsModel: ttsModel,
		client:   &http.Client{Timeout: 15 * time.Minute},
	}
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, types.TokenUsage, error) {
	payload := map[string]any{
		"model":       c.model,
		"temperature": temperature,
		"stream":      false,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", types.TokenUsage{}, fmt.Errorf("marshal chat request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	resp, err := c.post(reqCtx, "/chat/completions", "application/json", bytes.NewReader(body))
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", types.TokenUsage{}, fmt.Errorf("chat completion timed out after %s (model=%s)", chatTimeout, c.model)
		}
		return "", types.TokenUsage{}, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, "chat completion"); err != nil {
		return "", types.TokenUsage{}, err
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", types.TokenUsage{}, fmt.Errorf("decode chat response: %w", err)
	}
	usage := types.TokenUsage{InputTokens: raw.Usage.PromptTokens, OutputTokens: raw.Usage.CompletionTokens}
	if len(raw.Choices) == 0 {
		return "", usage, errors.New("chat completion returned no choices")
	}
	content, err := contentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return "", usage, err
	}
	return content, usage, nil
}

func (c *Client) Transcribe(ctx context.Context, audioPath string) (types.Transcript, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return types.Transcript{}, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return types.Transcript{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return types.Transcript{}, fmt.Errorf("read audio: %w", err)
	}
	_ = mw.WriteField("model", whisperModel)
	_ = mw.WriteField("response_format", "verbose_json")
	if err := mw.Close(); err != nil {
		return types.Transcript{}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	resp, err := c.post(reqCtx, "/audio/transcriptions", mw.FormDataContentType(), &buf)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return types.Transcript{}, fmt.Errorf("transcription timed out after %s", transcribeTimeout)
		}
		return types.Transcript{}, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, "transcription"); err != nil {
		return types.Transcript{}, err
	}

	var raw struct {
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return types.Transcript{}, fmt.Errorf("decode transcription response: %w", err)
	}
	var tr types.Transcript
	for _, s := range raw.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" || s.End <= s.Start {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{Start: s.Start, End: s.End, Text: text})
	}
	return tr, nil
}

func (c *Client) Synthesize(ctx context.Context, text, outPath string) error {
	payload := map[string]any{
		"model":           c.ttsModel,
		"voice":           ttsVoice,
		"input":           text,
		"response_format": "mp3",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal speech request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, speechTimeout)
	defer cancel()

	resp, err := c.post(reqCtx, "/audio/speech", "application/json", bytes.NewReader(body))
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("speech synthesis timed out after %s", speechTimeout)
		}
		return err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, "speech synthesis"); err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("write speech audio: %w", err)
	}
	return out.Close()
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", contentType)
	return c.client.Do(req)
}

func (c *Client) checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	rb, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr != nil {
		return fmt.Errorf("%s: status %d and read body failed: %v", op, resp.StatusCode, readErr)
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, truncate(c.redact(string(rb)), 400))
}

func (c *Client) redact(s string) string {
	if c.key == "" {
		return s
	}
	return strings.ReplaceAll(s, c.key, "[REDACTED]")
}

func contentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		if strings.TrimSpace(b.String()) == "" {
			return "", errors.New("empty chat content")
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("unexpected chat content type %T", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
