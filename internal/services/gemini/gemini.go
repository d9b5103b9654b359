// Package gemini generates text with Google's Gemini API as an alternative to
// the OpenAI-compatible llm client.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"vidrag/internal/services/llm"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Config describes the Gemini generation endpoint.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint (for testing).
	BaseURL string
}

// Client generates text with a Gemini model.
type Client struct {
	client *genai.Client
	model  string
}

// New constructs a Gemini text generator.
func New(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key required")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model}, nil
}

// Model reports the generation model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the prompts to Gemini and returns the concatenated text parts
// of the first candidate.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	user := strings.TrimSpace(req.User)
	if user == "" {
		return "", errors.New("gemini complete: user prompt required")
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), generateConfig(req))
	if err != nil {
		return "", fmt.Errorf("gemini complete: generate content: %w", err)
	}
	text := collectText(result)
	if text == "" {
		return "", errors.New("gemini complete: empty response")
	}
	return text, nil
}

// HealthCheck issues a minimal generation request.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Complete(ctx, llm.Request{User: "Reply with the single word OK.", MaxTokens: 5})
	if err != nil {
		return fmt.Errorf("gemini health: %w", err)
	}
	return nil
}

func generateConfig(req llm.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if system := strings.TrimSpace(req.System); system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	return cfg
}

func collectText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
