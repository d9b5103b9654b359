package transcribe

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"vidrag/internal/chunker"
	"vidrag/internal/logging"
	"vidrag/internal/services"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// Transcriber converts one audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// ChunkTranscript is the text recognized for one chunk. Text is empty when
// every attempt failed.
type ChunkTranscript struct {
	Index int
	Text  string
}

// Pool transcribes chunks concurrently.
type Pool struct {
	transcriber Transcriber
	workers     int
	policy      RetryPolicy
	logger      *slog.Logger
}

// NewPool constructs a Pool. Non-positive workers fall back to DefaultWorkers.
func NewPool(transcriber Transcriber, workers int, policy RetryPolicy, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pool{
		transcriber: transcriber,
		workers:     workers,
		policy:      policy,
		logger:      logging.NewComponentLogger(logger, "transcribe"),
	}
}

// Run transcribes every chunk and returns one entry per chunk, in input order.
func (p *Pool) Run(ctx context.Context, chunks []chunker.AudioChunk) []ChunkTranscript {
	results := make([]ChunkTranscript, len(chunks))
	if len(chunks) == 0 {
		return results
	}

	var group errgroup.Group
	group.SetLimit(p.workers)
	for pos, chunk := range chunks {
		results[pos].Index = chunk.Index
		group.Go(func() error {
			results[pos].Text = p.transcribeChunk(ctx, chunk)
			return nil
		})
	}
	_ = group.Wait()

	failed := 0
	for _, r := range results {
		if r.Text == "" {
			failed++
		}
	}
	logging.WithContext(ctx, p.logger).Info("transcription finished",
		slog.Int("chunks", len(chunks)),
		slog.Int("empty", failed),
		slog.Int("workers", p.workers),
	)
	return results
}

func (p *Pool) transcribeChunk(ctx context.Context, chunk chunker.AudioChunk) string {
	ctx = services.WithChunkIndex(ctx, chunk.Index)
	logger := logging.WithContext(ctx, p.logger)

	var text string
	attempts, err := p.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		out, err := p.transcriber.Transcribe(ctx, chunk.Path)
		if err != nil {
			logger.Debug("transcription attempt failed",
				slog.Int("attempt", attempt),
				logging.Error(err),
			)
			return err
		}
		text = strings.TrimSpace(out)
		return nil
	})
	if err != nil {
		failure := services.Wrap(services.ErrTranscription, "transcription", "transcribe chunk", chunk.Path, err)
		logger.Warn("chunk transcription failed; continuing without it",
			slog.Int("attempts", attempts),
			logging.Error(failure),
		)
		return ""
	}
	return text
}
