package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vidrag/internal/index"
	"vidrag/internal/services"
)

// Run is one ingested video.
type Run struct {
	ID             string
	SourceURL      string
	Transcript     string
	Summary        string
	EmbeddingModel string
	ChunkCount     int
	CreatedAt      time.Time
}

// minPrefixLen is the shortest run ID prefix GetRun resolves.
const minPrefixLen = 4

const runColumns = "id, source_url, transcript, summary, embedding_model, chunk_count, created_at"

// SaveRun stores run together with its embedded text chunks. ChunkCount is
// taken from chunks. Saving an existing run ID replaces it.
func (s *Store) SaveRun(ctx context.Context, run Run, chunks []index.TextChunk) error {
	run.ID = strings.TrimSpace(run.ID)
	if run.ID == "" {
		return services.Wrap(services.ErrValidation, "store", "save run", "run id is required", nil)
	}
	run.ChunkCount = len(chunks)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
			return fmt.Errorf("replace run: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.SourceURL,
			run.Transcript,
			run.Summary,
			run.EmbeddingModel,
			run.ChunkCount,
			formatTime(run.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO text_chunks (
            run_id, position, text, token_start, token_count, embedding
        ) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare chunk insert: %w", err)
		}
		defer stmt.Close()
		for _, chunk := range chunks {
			if _, err := stmt.ExecContext(
				ctx,
				run.ID,
				chunk.Position,
				chunk.Text,
				chunk.TokenStart,
				chunk.TokenCount,
				encodeVector(chunk.Embedding),
			); err != nil {
				return fmt.Errorf("insert chunk %d: %w", chunk.Position, err)
			}
		}
		return nil
	})
}

// GetRun fetches a run by ID or by an unambiguous ID prefix of at least four
// characters. A missing run yields nil without error.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if len(id) < minPrefixLen {
		return nil, nil
	}
	return s.getRunByPrefix(ctx, id)
}

func (s *Store) getRunByPrefix(ctx context.Context, prefix string) (*Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`,
		len(prefix),
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("get run by prefix: %w", err)
	}
	defer rows.Close()
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, services.Wrap(services.ErrValidation, "store", "get run", fmt.Sprintf("run id prefix %q is ambiguous", prefix), nil)
	}
}

// ListRuns returns stored runs, newest first. A non-positive limit returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LoadChunks returns the stored text chunks of a run ordered by position.
func (s *Store) LoadChunks(ctx context.Context, runID string) ([]index.TextChunk, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT position, text, token_start, token_count, embedding
           FROM text_chunks WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	defer rows.Close()
	var chunks []index.TextChunk
	for rows.Next() {
		var (
			chunk index.TextChunk
			blob  []byte
		)
		if err := rows.Scan(&chunk.Position, &chunk.Text, &chunk.TokenStart, &chunk.TokenCount, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if chunk.Embedding, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunk.Position, err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return chunks, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		createdRaw string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.SourceURL,
		&run.Transcript,
		&run.Summary,
		&run.EmbeddingModel,
		&run.ChunkCount,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	run.CreatedAt = parseTime(createdRaw)
	return &run, nil
}
