package gemini

import (
	"context"
	"testing"

	"google.golang.org/genai"

	"vidrag/internal/services/llm"
)

func TestCollectTextJoinsParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: " Cats are "}, nil, {Text: "mammals. "}}}},
		},
	}
	if got := collectText(resp); got != "Cats are mammals." {
		t.Fatalf("collectText = %q", got)
	}
}

func TestCollectTextEmpty(t *testing.T) {
	cases := []*genai.GenerateContentResponse{
		nil,
		{},
		{Candidates: []*genai.Candidate{{}}},
	}
	for i, resp := range cases {
		if got := collectText(resp); got != "" {
			t.Fatalf("case %d: collectText = %q, want empty", i, got)
		}
	}
}

func TestGenerateConfigMapsRequest(t *testing.T) {
	cfg := generateConfig(llm.Request{System: "be brief", MaxTokens: 250, Temperature: 0.3})
	if cfg.MaxOutputTokens != 250 {
		t.Fatalf("MaxOutputTokens = %d", cfg.MaxOutputTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature != float32(0.3) {
		t.Fatalf("Temperature = %v", cfg.Temperature)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "be brief" {
		t.Fatalf("SystemInstruction = %+v", cfg.SystemInstruction)
	}

	bare := generateConfig(llm.Request{})
	if bare.SystemInstruction != nil || bare.MaxOutputTokens != 0 {
		t.Fatalf("unexpected config %+v", bare)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
