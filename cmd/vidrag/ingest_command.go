package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"vidrag/internal/config"
	"vidrag/internal/index"
	"vidrag/internal/logging"
	"vidrag/internal/preflight"
	"vidrag/internal/services"
	"vidrag/internal/services/embed"
	"vidrag/internal/store"
	"vidrag/internal/synth"
	"vidrag/internal/textutil"
)

const lockNameLimit = 120

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var noSummary bool

	cmd := &cobra.Command{
		Use:   "ingest <url>",
		Short: "Download, transcribe and index a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireCredentials(); err != nil {
				return services.Wrap(services.ErrConfiguration, "ingest", "credentials", "missing credentials", err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd)
			defer stop()

			url := strings.TrimSpace(args[0])
			lock, err := acquireIngestLock(cfg, url)
			if err != nil {
				return err
			}
			defer func() {
				_ = lock.Unlock()
			}()

			if failed := preflight.Failed(preflight.RunAll(runCtx, cfg, false)); len(failed) > 0 {
				return preflightError(failed)
			}

			embedder, err := embed.FromConfig(runCtx, cfg)
			if err != nil {
				return err
			}
			p, err := newPipeline(cfg, embedder, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ingesting %s\n", url)
			result, err := p.Run(runCtx, url)
			if err != nil {
				return err
			}
			runCtx = services.WithRunID(runCtx, result.RunID)
			chunks := result.Index.Chunks()

			var summary string
			var suggestions []string
			if !noSummary {
				synthesizer, err := newSynthesizer(runCtx, cfg, logger)
				if err != nil {
					return err
				}
				summary = synthesizer.Summarize(runCtx, result.Transcript)
				suggestions = synthesizer.Suggest(runCtx, openingContext(chunks, cfg.Index.TopK), nil)
			}

			if err := saveToPostgres(runCtx, cfg, result.RunID, chunks, logger); err != nil {
				return err
			}
			run := store.Run{
				ID:             result.RunID,
				SourceURL:      result.SourceURL,
				Transcript:     result.Transcript,
				Summary:        summary,
				EmbeddingModel: embedder.Model(),
				CreatedAt:      time.Now().UTC(),
			}
			if err := ctx.withStore(func(st *store.Store) error {
				return st.SaveRun(runCtx, run, chunks)
			}); err != nil {
				return err
			}
			logging.WithContext(runCtx, logging.NewComponentLogger(logger, "cli")).Info(
				"run saved",
				logging.FieldEventType, "run_saved",
				"chunks", len(chunks),
				"audio_chunks", result.AudioChunks,
			)

			printIngestResult(out, run, len(chunks), suggestions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "Skip the summary and suggested questions")
	return cmd
}

// acquireIngestLock serialises ingests of the same URL across processes.
func acquireIngestLock(cfg *config.Config, url string) (*flock.Flock, error) {
	if err := os.MkdirAll(cfg.LockDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	name := textutil.TruncateRunes(textutil.SanitizeToken(url), lockNameLimit)
	lock := flock.New(filepath.Join(cfg.LockDir(), name+".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "ingest", "lock", "another ingest of "+url+" is already running", nil)
	}
	return lock, nil
}

func preflightError(failed []preflight.Result) error {
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		detail := r.Name
		if r.Detail != "" {
			detail += " (" + r.Detail + ")"
		}
		parts = append(parts, detail)
	}
	return services.Wrap(services.ErrConfiguration, "ingest", "preflight",
		"checks failed: "+strings.Join(parts, "; ")+"; run `vidrag doctor` for details", nil)
}

// openingContext joins the first k chunks, the context used for suggestions
// before any question has been asked.
func openingContext(chunks []index.TextChunk, k int) string {
	if k <= 0 || k > len(chunks) {
		k = len(chunks)
	}
	hits := make([]index.Hit, 0, k)
	for _, c := range chunks[:k] {
		hits = append(hits, index.Hit{Chunk: c})
	}
	return synth.ContextText(hits)
}

func printIngestResult(out io.Writer, run store.Run, chunks int, suggestions []string) {
	fmt.Fprintf(out, "Run ID: %s\n", run.ID)
	fmt.Fprintf(out, "Chunks indexed: %d\n", chunks)
	if run.Summary != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Summary:")
		fmt.Fprintln(out, run.Summary)
	}
	printSuggestions(out, suggestions)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Ask a question with: vidrag ask %s \"<question>\"\n", shortID(run.ID))
}

func printSuggestions(out io.Writer, suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Suggested questions:")
	for i, s := range suggestions {
		fmt.Fprintf(out, "  %d. %s\n", i+1, s)
	}
}
