package transcribe

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"vidrag/internal/chunker"
)

type transcriberFunc func(ctx context.Context, path string) (string, error)

func (f transcriberFunc) Transcribe(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

func testChunks(n int) []chunker.AudioChunk {
	chunks := make([]chunker.AudioChunk, n)
	for i := range chunks {
		chunks[i] = chunker.AudioChunk{Index: i, Path: string(rune('a' + i))}
	}
	return chunks
}

func TestPoolRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	fake := transcriberFunc(func(context.Context, string) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("timeout")
		}
		return "third time lucky", nil
	})

	pool := NewPool(fake, 1, DefaultRetryPolicy(), nil)
	results := pool.Run(context.Background(), testChunks(1))
	if results[0].Text != "third time lucky" {
		t.Fatalf("got %q want %q", results[0].Text, "third time lucky")
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestPoolAbsorbsExhaustedFailures(t *testing.T) {
	fake := transcriberFunc(func(_ context.Context, path string) (string, error) {
		if path == "b" {
			return "", errors.New("malformed response")
		}
		return "text " + path, nil
	})

	results := NewPool(fake, 2, DefaultRetryPolicy(), nil).Run(context.Background(), testChunks(3))
	want := []string{"text a", "", "text c"}
	for i, w := range want {
		if results[i].Text != w {
			t.Fatalf("result %d = %q, want %q", i, results[i].Text, w)
		}
		if results[i].Index != i {
			t.Fatalf("result %d has index %d", i, results[i].Index)
		}
	}
}

// Completion order 2,0,3,1 must not affect result order.
func TestPoolPreservesChunkOrder(t *testing.T) {
	order := []string{"c", "a", "d", "b"}
	turn := map[string]chan struct{}{}
	for _, p := range order {
		turn[p] = make(chan struct{})
	}
	finished := make(chan struct{})
	var mu sync.Mutex
	var completed []string

	fake := transcriberFunc(func(_ context.Context, path string) (string, error) {
		<-turn[path]
		mu.Lock()
		completed = append(completed, path)
		mu.Unlock()
		finished <- struct{}{}
		return "chunk " + path, nil
	})

	done := make(chan []ChunkTranscript)
	go func() {
		done <- NewPool(fake, 4, DefaultRetryPolicy(), nil).Run(context.Background(), testChunks(4))
	}()
	for _, p := range order {
		turn[p] <- struct{}{}
		<-finished
	}
	results := <-done

	for i, r := range results {
		want := "chunk " + string(rune('a'+i))
		if r.Text != want || r.Index != i {
			t.Fatalf("result %d = %+v, want text %q", i, r, want)
		}
	}
	if len(completed) != 4 || completed[0] != "c" || completed[3] != "b" {
		t.Fatalf("completion order %v", completed)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	release := make(chan struct{})
	fake := transcriberFunc(func(context.Context, string) (string, error) {
		n := active.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		<-release
		active.Add(-1)
		return "ok", nil
	})

	done := make(chan struct{})
	go func() {
		NewPool(fake, 2, DefaultRetryPolicy(), nil).Run(context.Background(), testChunks(6))
		close(done)
	}()
	for range 6 {
		release <- struct{}{}
	}
	<-done
	if peak.Load() > 2 {
		t.Fatalf("peak concurrency %d exceeds 2 workers", peak.Load())
	}
}

func TestPoolEmptyInput(t *testing.T) {
	results := NewPool(transcriberFunc(func(context.Context, string) (string, error) {
		t.Fatal("transcriber should not be called")
		return "", nil
	}), 0, DefaultRetryPolicy(), nil).Run(context.Background(), nil)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}
