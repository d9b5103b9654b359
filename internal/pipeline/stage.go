package pipeline

import (
	"context"
	"log/slog"
	"time"

	"vidrag/internal/logging"
	"vidrag/internal/services"
)

// Stage names, in execution order.
const (
	StageAcquisition   = "acquisition"
	StageChunking      = "chunking"
	StageTranscription = "transcription"
	StageStitching     = "stitching"
	StageIndexing      = "indexing"
)

// runStage tags ctx with the stage name and brackets fn with start, completion
// and failure records.
func runStage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context, *slog.Logger) error) error {
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, logger)
	stageLogger.Info("stage started", slog.String(logging.FieldEventType, "stage_start"))

	started := time.Now()
	if err := fn(stageCtx, stageLogger); err != nil {
		stageLogger.Error(
			"stage failed",
			slog.String(logging.FieldEventType, "stage_failure"),
			slog.String("error_message", services.Describe(err)),
			logging.Error(err),
		)
		return err
	}
	stageLogger.Info(
		"stage completed",
		slog.String(logging.FieldEventType, "stage_complete"),
		slog.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return nil
}
