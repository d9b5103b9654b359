package index

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vidrag/internal/services"
)

func newTestSplitter(t *testing.T, size, overlap int) *Splitter {
	t.Helper()
	s, err := NewSplitter(newWordTokenizer(), size, overlap)
	if err != nil {
		t.Fatalf("NewSplitter returned error: %v", err)
	}
	return s
}

func TestBuildEmbedsInBatches(t *testing.T) {
	embedder := &keywordEmbedder{keywords: []string{"elephant"}}
	idx, err := Build(context.Background(), sampleText(80), newTestSplitter(t, 10, 2), embedder, BuildOptions{BatchSize: 4})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	total := 0
	for i, call := range embedder.calls {
		if len(call) > 4 {
			t.Fatalf("batch %d has %d texts", i, len(call))
		}
		total += len(call)
	}
	if total != idx.Len() {
		t.Fatalf("embedded %d texts for %d chunks", total, idx.Len())
	}
	if len(embedder.calls) < 2 {
		t.Fatalf("expected several batches, got %d", len(embedder.calls))
	}
	for _, c := range idx.Chunks() {
		if len(c.Embedding) != idx.Dimensions() {
			t.Fatalf("chunk %d embedding width %d", c.Position, len(c.Embedding))
		}
	}
}

func TestBuildFailures(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		embedder   *keywordEmbedder
	}{
		{"empty transcript", "   ", &keywordEmbedder{}},
		{"embedder error", "cats are mammals", &keywordEmbedder{err: errEmbed}},
		{"count mismatch", "cats are mammals", &keywordEmbedder{drop: true}},
		{"dimension mismatch", sampleText(40), &keywordEmbedder{ragged: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idx, err := Build(context.Background(), tc.transcript, newTestSplitter(t, 10, 2), tc.embedder, BuildOptions{BatchSize: 100})
			if !errors.Is(err, services.ErrIndexBuild) {
				t.Fatalf("expected ErrIndexBuild, got %v", err)
			}
			if idx != nil {
				t.Fatal("expected no partial index")
			}
		})
	}
}

func TestBuildWrapsEmbedderError(t *testing.T) {
	_, err := Build(context.Background(), "cats are mammals", newTestSplitter(t, 10, 2), &keywordEmbedder{err: errEmbed}, BuildOptions{})
	if !errors.Is(err, errEmbed) {
		t.Fatalf("expected embedder error in chain, got %v", err)
	}
}

func TestSearchBreaksTiesByPosition(t *testing.T) {
	same := []float32{1, 0}
	idx, err := NewIndex([]TextChunk{
		{Position: 2, Text: "c", Embedding: same},
		{Position: 0, Text: "a", Embedding: same},
		{Position: 1, Text: "b", Embedding: same},
		{Position: 3, Text: "d", Embedding: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("NewIndex returned error: %v", err)
	}
	hits, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	var got []string
	for _, h := range hits {
		got = append(got, h.Chunk.Text)
	}
	if strings.Join(got, ",") != "a,b,c" {
		t.Fatalf("order = %v, want a,b,c", got)
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx, err := NewIndex([]TextChunk{{Position: 0, Text: "a", Embedding: []float32{1, 0}}})
	if err != nil {
		t.Fatalf("NewIndex returned error: %v", err)
	}
	if _, err := idx.Search(context.Background(), []float32{1, 0, 0}, 1); !errors.Is(err, services.ErrRetrievalUnavailable) {
		t.Fatalf("expected ErrRetrievalUnavailable, got %v", err)
	}
}

func TestNewIndexValidation(t *testing.T) {
	if _, err := NewIndex(nil); !errors.Is(err, services.ErrIndexBuild) {
		t.Fatalf("expected ErrIndexBuild for no chunks, got %v", err)
	}
	_, err := NewIndex([]TextChunk{
		{Position: 0, Embedding: []float32{1}},
		{Position: 1, Embedding: []float32{1, 2}},
	})
	if !errors.Is(err, services.ErrIndexBuild) {
		t.Fatalf("expected ErrIndexBuild for ragged embeddings, got %v", err)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		a, b []float32
		want float64
	}{
		{[]float32{1, 0}, []float32{1, 0}, 1},
		{[]float32{1, 0}, []float32{0, 1}, 0},
		{[]float32{1, 0}, []float32{-1, 0}, -1},
		{[]float32{0, 0}, []float32{1, 0}, 0},
		{[]float32{1}, []float32{1, 0}, 0},
	}
	for _, tc := range tests {
		if got := Cosine(tc.a, tc.b); got != tc.want {
			t.Fatalf("Cosine(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
