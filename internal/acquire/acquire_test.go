package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidrag/internal/services"
)

func TestFetchLocatesDownloadedFile(t *testing.T) {
	dir := t.TempDir()
	d := NewDownloader("", nil)

	var gotName string
	var gotArgs []string
	d.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		if err := os.WriteFile(filepath.Join(dir, "source.mp3"), []byte("audio"), 0o644); err != nil {
			t.Fatalf("write fake download: %v", err)
		}
		return nil, nil
	})

	source, err := d.Fetch(context.Background(), "https://example.com/watch?v=abc", dir)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if gotName != DefaultBinary {
		t.Fatalf("binary = %q, want %q", gotName, DefaultBinary)
	}
	if gotArgs[len(gotArgs)-1] != "https://example.com/watch?v=abc" {
		t.Fatalf("expected url as final argument, got %v", gotArgs)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-x", "--audio-format mp3", "--no-playlist", filepath.Join(dir, "source.%(ext)s")} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	if source.Path != filepath.Join(dir, "source.mp3") {
		t.Fatalf("path = %q", source.Path)
	}
	if source.URL != "https://example.com/watch?v=abc" {
		t.Fatalf("url = %q", source.URL)
	}
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		runner CommandRunner
		want   string
	}{
		{
			name: "empty url",
			url:  "   ",
			want: "empty video locator",
		},
		{
			name: "tool failure",
			url:  "https://example.com/v",
			runner: func(context.Context, string, ...string) ([]byte, error) {
				return []byte("ERROR: Video unavailable"), errors.New("exit status 1")
			},
			want: "Video unavailable",
		},
		{
			name: "no output file",
			url:  "https://example.com/v",
			runner: func(context.Context, string, ...string) ([]byte, error) {
				return nil, nil
			},
			want: "no audio file produced",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDownloader("yt-dlp", nil)
			d.WithCommandRunner(tc.runner)
			_, err := d.Fetch(context.Background(), tc.url, t.TempDir())
			if !errors.Is(err, services.ErrAcquisition) {
				t.Fatalf("expected ErrAcquisition, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLocateSourceSkipsPartialFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "source.mp3.part"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := locateSource(dir); err == nil {
		t.Fatal("expected partial download to be ignored")
	}
	if err := os.WriteFile(filepath.Join(dir, "source.webm"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := locateSource(dir)
	if err != nil {
		t.Fatalf("locateSource: %v", err)
	}
	if filepath.Base(got) != "source.webm" {
		t.Fatalf("got %q", got)
	}
}
