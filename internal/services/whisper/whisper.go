// Package whisper transcribes audio files with the OpenAI speech-to-text API.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the speech-to-text model used when none is configured.
const DefaultModel = "whisper-1"

// Config describes how to reach the transcription endpoint.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
}

// Client implements a single-call transcriber. It performs no retries of its
// own; callers own the retry policy.
type Client struct {
	api      *openai.Client
	model    string
	language string
}

// New constructs a Client. Extra request options are appended after the
// configured ones.
func New(cfg Config, opts ...option.RequestOption) *Client {
	requestOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		requestOpts = append(requestOpts, option.WithAPIKey(key))
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(base))
	}
	requestOpts = append(requestOpts, opts...)
	api := openai.NewClient(requestOpts...)

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:      &api,
		model:    model,
		language: strings.TrimSpace(cfg.Language),
	}
}

// Model returns the configured model name for logging.
func (c *Client) Model() string {
	return c.model
}

// Transcribe uploads the audio at path and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	if c == nil || c.api == nil {
		return "", errors.New("whisper: client not configured")
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("whisper: open audio: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModel(c.model),
	}
	if c.language != "" {
		params.Language = openai.String(c.language)
	}

	result, err := c.api.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("whisper: transcribe %s: %w", path, err)
	}
	if result == nil {
		return "", errors.New("whisper: empty response")
	}
	return strings.TrimSpace(result.Text), nil
}
