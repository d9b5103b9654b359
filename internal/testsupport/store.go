package testsupport

import (
	"context"
	"testing"
	"time"

	"vidrag/internal/config"
	"vidrag/internal/index"
	"vidrag/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// SaveRun stores a run with the given chunks and returns it.
func SaveRun(t testing.TB, st *store.Store, id, model string, chunks []index.TextChunk) store.Run {
	t.Helper()

	run := store.Run{
		ID:             id,
		SourceURL:      "https://example.com/watch?v=" + id,
		Transcript:     "transcript for " + id,
		Summary:        "summary for " + id,
		EmbeddingModel: model,
		CreatedAt:      time.Now().UTC(),
	}
	if err := st.SaveRun(context.Background(), run, chunks); err != nil {
		t.Fatalf("store.SaveRun: %v", err)
	}
	run.ChunkCount = len(chunks)
	return run
}
