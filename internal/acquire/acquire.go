package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"vidrag/internal/logging"
	"vidrag/internal/services"
)

// DefaultBinary is the yt-dlp executable looked up on PATH.
const DefaultBinary = "yt-dlp"

const sourceBaseName = "source"

// AudioSource is a downloaded audio file and the locator it came from.
type AudioSource struct {
	URL  string
	Path string
}

// CommandRunner executes a command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Downloader fetches audio with yt-dlp.
type Downloader struct {
	binary string
	logger *slog.Logger
	runner CommandRunner
}

// NewDownloader returns a Downloader using binary, or yt-dlp when empty.
func NewDownloader(binary string, logger *slog.Logger) *Downloader {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &Downloader{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "acquire"),
		runner: execRunner,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (d *Downloader) WithCommandRunner(runner CommandRunner) {
	if runner == nil {
		runner = execRunner
	}
	d.runner = runner
}

// Fetch downloads the best available audio for url into dir.
func (d *Downloader) Fetch(ctx context.Context, url, dir string) (AudioSource, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return AudioSource{}, services.Wrap(services.ErrAcquisition, "acquire", "validate", "empty video locator", nil)
	}
	if strings.TrimSpace(dir) == "" {
		return AudioSource{}, services.Wrap(services.ErrAcquisition, "acquire", "validate", "empty destination directory", nil)
	}

	logger := logging.WithContext(ctx, d.logger)
	logger.Info("downloading audio", slog.String("url", url))

	output, err := d.runner(ctx, d.binary, buildArgs(url, dir)...)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		return AudioSource{}, services.Wrap(
			services.ErrAcquisition,
			"acquire",
			"yt-dlp",
			fmt.Sprintf("download failed: %s", detail),
			err,
		)
	}

	path, err := locateSource(dir)
	if err != nil {
		return AudioSource{}, services.Wrap(services.ErrAcquisition, "acquire", "locate output", "", err)
	}

	logger.Info("audio downloaded", slog.String("path", path))
	return AudioSource{URL: url, Path: path}, nil
}

func buildArgs(url, dir string) []string {
	return []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"-o", filepath.Join(dir, sourceBaseName+".%(ext)s"),
		url,
	}
}

// locateSource finds the file yt-dlp produced. Partial downloads are ignored.
func locateSource(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, sourceBaseName+".*"))
	if err != nil {
		return "", err
	}
	sort.Strings(matches)
	for _, match := range matches {
		if strings.HasSuffix(match, ".part") || strings.HasSuffix(match, ".ytdl") {
			continue
		}
		info, err := os.Stat(match)
		if err != nil || info.IsDir() || info.Size() == 0 {
			continue
		}
		return match, nil
	}
	return "", fmt.Errorf("no audio file produced in %s", dir)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
}
