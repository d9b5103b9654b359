package whisper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk_000.mp3")
	if err := os.WriteFile(path, []byte("ID3fake-audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribeUploadsFile(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  hello from the lecture  "}`))
	}))
	defer server.Close()

	client := New(Config{APIKey: "sk-test", BaseURL: server.URL + "/", Language: "en"})
	text, err := client.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "hello from the lecture" {
		t.Fatalf("got %q want %q", text, "hello from the lecture")
	}
	if !strings.HasSuffix(gotPath, "/audio/transcriptions") {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	for _, want := range []string{"whisper-1", "ID3fake-audio", "en"} {
		if !strings.Contains(gotBody, want) {
			t.Fatalf("multipart body missing %q", want)
		}
	}
}

func TestTranscribeDoesNotRetryInternally(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer server.Close()

	client := New(Config{APIKey: "sk-test", BaseURL: server.URL + "/"})
	if _, err := client.Transcribe(context.Background(), writeAudio(t)); err == nil {
		t.Fatal("expected error for 429 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single request, got %d", calls.Load())
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	client := New(Config{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1/"})
	if _, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewDefaultsModel(t *testing.T) {
	if got := New(Config{}).Model(); got != DefaultModel {
		t.Fatalf("Model() = %q, want %q", got, DefaultModel)
	}
}
