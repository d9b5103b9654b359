package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vidrag/internal/acquire"
	"vidrag/internal/chunker"
	"vidrag/internal/config"
	"vidrag/internal/index"
	"vidrag/internal/index/pgindex"
	"vidrag/internal/pipeline"
	"vidrag/internal/services"
	"vidrag/internal/services/embed"
	"vidrag/internal/services/gemini"
	"vidrag/internal/services/llm"
	"vidrag/internal/services/whisper"
	"vidrag/internal/store"
	"vidrag/internal/synth"
	"vidrag/internal/transcribe"
)

func newGenerator(ctx context.Context, cfg *config.Config) (synth.Generator, error) {
	llmCfg := cfg.GetLLM()
	switch llmCfg.Provider {
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Config{APIKey: llmCfg.APIKey, Model: llmCfg.Model})
	default:
		return llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
		}), nil
	}
}

func newSynthesizer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*synth.Synthesizer, error) {
	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "synthesis", "new generator", "create text generator", err)
	}
	return synth.New(gen,
		synth.WithAnswerTokens(cfg.LLM.MaxTokens),
		synth.WithLogger(logger),
	), nil
}

func retrieverOptions(cfg *config.Config, logger *slog.Logger) []index.RetrieverOption {
	return []index.RetrieverOption{
		index.WithLogger(logger),
		index.WithTopK(cfg.Index.TopK),
		index.WithMode(cfg.Index.Mode),
	}
}

func newPipeline(cfg *config.Config, embedder embed.Embedder, logger *slog.Logger) (*pipeline.Pipeline, error) {
	tokenizer, err := index.NewTiktokenTokenizer(cfg.Index.Encoding)
	if err != nil {
		return nil, err
	}
	splitter, err := index.NewSplitter(tokenizer, cfg.Index.ChunkTokens, cfg.Index.OverlapTokens)
	if err != nil {
		return nil, err
	}
	transcriber := whisper.New(whisper.Config{
		APIKey:   cfg.OpenAI.APIKey,
		BaseURL:  cfg.OpenAI.BaseURL,
		Model:    cfg.Transcription.Model,
		Language: cfg.Transcription.Language,
	})
	policy := transcribe.RetryPolicy{
		MaxAttempts: cfg.Transcription.MaxAttempts,
		Backoff:     time.Duration(cfg.Transcription.BackoffMS) * time.Millisecond,
	}
	return pipeline.New(pipeline.Deps{
		Acquirer: acquire.NewDownloader(cfg.Tools.YtDlp, logger),
		Chunker: chunker.New(chunker.Options{
			ChunkSeconds:   cfg.Chunking.ChunkSeconds,
			OverlapSeconds: cfg.Chunking.OverlapSeconds,
			FFmpegBinary:   cfg.Tools.FFmpeg,
			FFprobeBinary:  cfg.Tools.FFprobe,
		}, logger),
		Transcriber:      transcribe.NewPool(transcriber, cfg.Transcription.Workers, policy, logger),
		TextSplitter:     splitter,
		Embedder:         embedder,
		BatchSize:        cfg.Embedding.BatchSize,
		WorkDir:          cfg.Paths.WorkDir,
		RetrieverOptions: retrieverOptions(cfg, logger),
		Logger:           logger,
	})
}

// openRetriever rebuilds retrieval for a stored run. The returned release
// function must be called once the retriever is no longer used.
func openRetriever(ctx context.Context, cfg *config.Config, st *store.Store, run *store.Run, embedder embed.Embedder, logger *slog.Logger) (*index.Retriever, func(), error) {
	if run.EmbeddingModel != "" && run.EmbeddingModel != embedder.Model() {
		return nil, nil, services.Wrap(services.ErrValidation, "retrieval", "open index",
			fmt.Sprintf("run %s was indexed with %s but embedding is configured for %s", run.ID, run.EmbeddingModel, embedder.Model()), nil)
	}
	opts := retrieverOptions(cfg, logger)

	if cfg.Index.Backend == config.BackendPostgres {
		pg, err := pgindex.Open(ctx, cfg.Index.PostgresDSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return index.NewRetriever(pg.ForRun(run.ID), embedder, opts...), pg.Close, nil
	}

	chunks, err := st.LoadChunks(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(chunks) == 0 {
		return nil, nil, services.Wrap(services.ErrRetrievalUnavailable, "retrieval", "open index",
			fmt.Sprintf("run %s has no stored chunks", run.ID), nil)
	}
	idx, err := index.NewIndex(chunks)
	if err != nil {
		return nil, nil, err
	}
	return index.NewRetriever(idx, embedder, opts...), func() {}, nil
}

// saveToPostgres mirrors chunks into pgvector when that backend is selected.
func saveToPostgres(ctx context.Context, cfg *config.Config, runID string, chunks []index.TextChunk, logger *slog.Logger) error {
	if cfg.Index.Backend != config.BackendPostgres {
		return nil
	}
	pg, err := pgindex.Open(ctx, cfg.Index.PostgresDSN, logger)
	if err != nil {
		return err
	}
	defer pg.Close()
	return pg.Save(ctx, runID, chunks)
}
