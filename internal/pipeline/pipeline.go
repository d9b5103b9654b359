package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"vidrag/internal/acquire"
	"vidrag/internal/chunker"
	"vidrag/internal/index"
	"vidrag/internal/logging"
	"vidrag/internal/services"
	"vidrag/internal/stitch"
	"vidrag/internal/transcribe"
)

// Acquirer downloads the audio for a URL into dir.
type Acquirer interface {
	Fetch(ctx context.Context, url, dir string) (acquire.AudioSource, error)
}

// AudioSplitter cuts one audio file into overlapping chunks under dir.
type AudioSplitter interface {
	Split(ctx context.Context, source, dir string) ([]chunker.AudioChunk, error)
}

// ChunkTranscriber transcribes chunks, returning one entry per chunk in index
// order.
type ChunkTranscriber interface {
	Run(ctx context.Context, chunks []chunker.AudioChunk) []transcribe.ChunkTranscript
}

// Deps wires the stage implementations into a Pipeline.
type Deps struct {
	Acquirer     Acquirer
	Chunker      AudioSplitter
	Transcriber  ChunkTranscriber
	TextSplitter *index.Splitter
	Embedder     index.Embedder
	// BatchSize is the number of texts per embedding request.
	BatchSize int
	// WorkDir holds per-run scratch directories. Empty means os.TempDir().
	WorkDir string
	// RetrieverOptions configure the Retriever returned with each Result.
	RetrieverOptions []index.RetrieverOption
	Logger           *slog.Logger
	// NewRunID overrides run identifier generation.
	NewRunID func() string
}

// Result is the outcome of one successful run.
type Result struct {
	RunID       string
	SourceURL   string
	Transcript  string
	AudioChunks int
	Index       *index.Index
	Retriever   *index.Retriever
}

// Pipeline runs the ingest stages for one URL at a time. A Pipeline holds no
// per-run state, so concurrent Run calls are safe.
type Pipeline struct {
	deps   Deps
	logger *slog.Logger
}

// New validates deps and constructs a Pipeline.
func New(deps Deps) (*Pipeline, error) {
	var missing []string
	if deps.Acquirer == nil {
		missing = append(missing, "acquirer")
	}
	if deps.Chunker == nil {
		missing = append(missing, "chunker")
	}
	if deps.Transcriber == nil {
		missing = append(missing, "transcriber")
	}
	if deps.TextSplitter == nil {
		missing = append(missing, "text splitter")
	}
	if deps.Embedder == nil {
		missing = append(missing, "embedder")
	}
	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "missing "+strings.Join(missing, ", "), nil)
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	return &Pipeline{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "pipeline"),
	}, nil
}

// Run ingests url and returns its transcript, index and retriever. Errors carry
// one of the services pipeline markers.
func (p *Pipeline) Run(ctx context.Context, url string) (*Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, services.Wrap(services.ErrAcquisition, StageAcquisition, "validate", "url is required", nil)
	}
	runID := p.deps.NewRunID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)

	runDir, err := p.makeRunDir()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(runDir); err != nil {
			logger.Warn("run directory cleanup failed", slog.String("dir", runDir), logging.Error(err))
		}
	}()
	logger.Info("run started", slog.String("url", url), slog.String("dir", runDir))

	result := &Result{RunID: runID, SourceURL: url}

	var source acquire.AudioSource
	if err := runStage(ctx, p.logger, StageAcquisition, func(ctx context.Context, _ *slog.Logger) error {
		var err error
		source, err = p.deps.Acquirer.Fetch(ctx, url, runDir)
		return err
	}); err != nil {
		return nil, err
	}

	var chunks []chunker.AudioChunk
	if err := runStage(ctx, p.logger, StageChunking, func(ctx context.Context, log *slog.Logger) error {
		var err error
		chunks, err = p.deps.Chunker.Split(ctx, source.Path, runDir)
		if err != nil {
			return err
		}
		log.Info("audio split", slog.Int("chunks", len(chunks)))
		return nil
	}); err != nil {
		return nil, err
	}
	result.AudioChunks = len(chunks)

	var transcripts []transcribe.ChunkTranscript
	if err := runStage(ctx, p.logger, StageTranscription, func(ctx context.Context, log *slog.Logger) error {
		transcripts = p.deps.Transcriber.Run(ctx, chunks)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("transcription interrupted: %w", err)
		}
		failed := 0
		for _, t := range transcripts {
			if strings.TrimSpace(t.Text) == "" {
				failed++
			}
		}
		log.Info("chunks transcribed", slog.Int("chunks", len(transcripts)), slog.Int("empty", failed))
		return nil
	}); err != nil {
		return nil, err
	}

	if err := runStage(ctx, p.logger, StageStitching, func(_ context.Context, log *slog.Logger) error {
		texts := make([]string, len(transcripts))
		for i, t := range transcripts {
			texts[i] = t.Text
		}
		var err error
		result.Transcript, err = stitch.Stitch(texts)
		if err != nil {
			return err
		}
		log.Info("transcript stitched", slog.Int("chars", len(result.Transcript)))
		return nil
	}); err != nil {
		return nil, err
	}

	if err := runStage(ctx, p.logger, StageIndexing, func(ctx context.Context, log *slog.Logger) error {
		idx, err := index.Build(ctx, result.Transcript, p.deps.TextSplitter, p.deps.Embedder, index.BuildOptions{
			BatchSize: p.deps.BatchSize,
			Logger:    log,
		})
		if err != nil {
			return err
		}
		result.Index = idx
		log.Info("index built", slog.Int("chunks", idx.Len()), slog.Int("dimensions", idx.Dimensions()))
		return nil
	}); err != nil {
		return nil, err
	}

	opts := append([]index.RetrieverOption{index.WithLogger(p.logger)}, p.deps.RetrieverOptions...)
	result.Retriever = index.NewRetriever(result.Index, p.deps.Embedder, opts...)
	logger.Info("run completed", slog.Int("text_chunks", result.Index.Len()))
	return result, nil
}

func (p *Pipeline) makeRunDir() (string, error) {
	workDir := strings.TrimSpace(p.deps.WorkDir)
	if workDir != "" {
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return "", services.Wrap(services.ErrConfiguration, "pipeline", "work dir", workDir, err)
		}
	}
	dir, err := os.MkdirTemp(workDir, "run-*")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "pipeline", "work dir", "create run directory", err)
	}
	return dir, nil
}
