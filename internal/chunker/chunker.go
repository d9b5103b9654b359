package chunker

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"vidrag/internal/logging"
	"vidrag/internal/media/ffprobe"
	"vidrag/internal/services"
)

// Defaults mirror the chunking section of the configuration.
const (
	DefaultChunkSeconds   = 600
	DefaultOverlapSeconds = 10
)

// AudioChunk is one extracted segment on disk.
type AudioChunk struct {
	Index           int
	StartSeconds    float64
	DurationSeconds float64
	Path            string
}

// DurationProbe reports the duration of an audio file in seconds.
type DurationProbe func(ctx context.Context, path string) (float64, error)

// CommandRunner executes a command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Options configures a Chunker.
type Options struct {
	ChunkSeconds   int
	OverlapSeconds int
	FFmpegBinary   string
	FFprobeBinary  string
}

// Chunker extracts overlapping segments with ffmpeg.
type Chunker struct {
	chunkSeconds   int
	overlapSeconds int
	ffmpeg         string
	probe          DurationProbe
	runner         CommandRunner
	logger         *slog.Logger
}

// New constructs a Chunker. A non-positive chunk length or a negative overlap
// falls back to the defaults.
func New(opts Options, logger *slog.Logger) *Chunker {
	c := &Chunker{
		chunkSeconds:   opts.ChunkSeconds,
		overlapSeconds: opts.OverlapSeconds,
		ffmpeg:         strings.TrimSpace(opts.FFmpegBinary),
		runner:         execRunner,
		logger:         logging.NewComponentLogger(logger, "chunker"),
	}
	if c.chunkSeconds <= 0 {
		c.chunkSeconds = DefaultChunkSeconds
	}
	if c.overlapSeconds < 0 {
		c.overlapSeconds = DefaultOverlapSeconds
	}
	if c.ffmpeg == "" {
		c.ffmpeg = "ffmpeg"
	}
	ffprobeBinary := opts.FFprobeBinary
	c.probe = func(ctx context.Context, path string) (float64, error) {
		return ffprobe.Duration(ctx, ffprobeBinary, path)
	}
	return c
}

// WithDurationProbe replaces the ffprobe lookup (for testing).
func (c *Chunker) WithDurationProbe(probe DurationProbe) {
	if probe != nil {
		c.probe = probe
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *Chunker) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		c.runner = runner
	}
}

// Split probes source and writes its segments into dir.
func (c *Chunker) Split(ctx context.Context, source, dir string) ([]AudioChunk, error) {
	logger := logging.WithContext(ctx, c.logger)

	duration, err := c.probe(ctx, source)
	if err != nil {
		return nil, services.Wrap(services.ErrAudioProcessing, "chunking", "probe duration", source, err)
	}

	windows := Plan(duration, c.chunkSeconds, c.overlapSeconds)
	if len(windows) == 0 {
		logger.Warn("audio has no duration; no chunks produced", slog.Float64("duration_seconds", duration))
		return nil, nil
	}

	chunks := make([]AudioChunk, 0, len(windows))
	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}
		dest := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", w.Index))
		if err := c.extract(ctx, source, w, dest); err != nil {
			logger.Error("chunk extraction failed; keeping earlier chunks",
				slog.Int(logging.FieldChunkIndex, w.Index),
				slog.Int("chunks_kept", len(chunks)),
				logging.Error(err),
			)
			if len(chunks) == 0 {
				return nil, services.Wrap(services.ErrAudioProcessing, "chunking", "extract segment", dest, err)
			}
			return chunks, nil
		}
		chunks = append(chunks, AudioChunk{
			Index:           w.Index,
			StartSeconds:    w.Start,
			DurationSeconds: w.Duration,
			Path:            dest,
		})
	}

	logger.Info("audio split",
		slog.Int("chunks", len(chunks)),
		slog.Float64("duration_seconds", duration),
	)
	return chunks, nil
}

func (c *Chunker) extract(ctx context.Context, source string, w Window, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(w.Start),
		"-t", formatSeconds(w.Duration),
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "libmp3lame",
		"-b:a", "64k",
		dest,
	}
	if output, err := c.runner(ctx, c.ffmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg extract segment: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
}
