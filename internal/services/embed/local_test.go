package embed

import (
	"context"
	"math"
	"testing"

	"google.golang.org/genai"

	"vidrag/internal/config"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestLocalIsDeterministicAndNormalized(t *testing.T) {
	l := NewLocal(64)
	first, err := l.Embed(context.Background(), []string{"cats are mammals"})
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	second, _ := l.Embed(context.Background(), []string{"cats are mammals"})
	if len(first[0]) != 64 {
		t.Fatalf("dimensions = %d, want 64", len(first[0]))
	}
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatal("embedding is not deterministic")
		}
	}
	if norm := math.Sqrt(cosine(first[0], first[0])); math.Abs(norm-1) > 1e-5 {
		t.Fatalf("norm = %v, want 1", norm)
	}
}

func TestLocalRelatesInflections(t *testing.T) {
	l := NewLocal(DefaultLocalDimensions)
	vecs, err := l.Embed(context.Background(), []string{"what is a mammal?", "cats are mammals", "the sky is blue"})
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	cats := cosine(vecs[0], vecs[1])
	sky := cosine(vecs[0], vecs[2])
	if cats <= sky {
		t.Fatalf("expected mammal question closer to cats (%v) than sky (%v)", cats, sky)
	}
}

func TestLocalEmptyText(t *testing.T) {
	vecs, err := NewLocal(0).Embed(context.Background(), []string{""})
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vecs[0]) != DefaultLocalDimensions {
		t.Fatalf("dimensions = %d", len(vecs[0]))
	}
	for _, v := range vecs[0] {
		if v != 0 {
			t.Fatal("expected zero vector for empty text")
		}
	}
}

func TestLocalModelIncludesWidth(t *testing.T) {
	if got := NewLocal(128).Model(); got != "local-ngram-128" {
		t.Fatalf("Model() = %q", got)
	}
}

func TestFromConfigSelectsProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Embedding.Provider = config.ProviderLocal
	cfg.Embedding.Dimensions = config.MinLocalEmbeddingDimensions
	e, err := FromConfig(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("FromConfig returned error: %v", err)
	}
	if _, ok := e.(*Local); !ok {
		t.Fatalf("expected *Local, got %T", e)
	}

	cfg.Embedding.Provider = config.ProviderOpenAI
	cfg.Embedding.Model = "text-embedding-3-small"
	e, err = FromConfig(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("FromConfig returned error: %v", err)
	}
	if e.Model() != "text-embedding-3-small" {
		t.Fatalf("Model() = %q", e.Model())
	}

	cfg.Embedding.Provider = "carrier-pigeon"
	if _, err := FromConfig(context.Background(), &cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestCollectGemini(t *testing.T) {
	got, err := collectGemini([]*genai.ContentEmbedding{{Values: []float32{1, 2}}, {Values: []float32{3, 4}}}, 2)
	if err != nil {
		t.Fatalf("collectGemini returned error: %v", err)
	}
	if got[1][0] != 3 {
		t.Fatalf("unexpected vectors %v", got)
	}
	if _, err := collectGemini([]*genai.ContentEmbedding{{Values: []float32{1}}}, 2); err == nil {
		t.Fatal("expected count mismatch error")
	}
	if _, err := collectGemini([]*genai.ContentEmbedding{{}}, 1); err == nil {
		t.Fatal("expected empty vector error")
	}
}
