// Package pgindex stores transcript chunks in PostgreSQL with pgvector and
// serves nearest-neighbour queries from there.
//
// It is the alternative to the in-memory index for deployments that already
// run Postgres. Chunks are keyed by run ID; a run's chunks are replaced as a
// whole, matching the rebuild-wholesale rule of the in-memory index.
package pgindex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"vidrag/internal/index"
	"vidrag/internal/logging"
	"vidrag/internal/services"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS vidrag_chunks (
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    content TEXT NOT NULL,
    token_start INTEGER NOT NULL,
    token_count INTEGER NOT NULL,
    embedding vector NOT NULL,
    PRIMARY KEY (run_id, position)
);
`

// Store wraps a pgx connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to dsn, verifies the connection and ensures the schema.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgindex: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgindex: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgindex: ensure schema: %w", err)
	}
	return &Store{pool: pool, logger: logging.NewComponentLogger(logger, "pgindex")}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Save replaces the stored chunks of runID.
func (s *Store) Save(ctx context.Context, runID string, chunks []index.TextChunk) error {
	if len(chunks) == 0 {
		return services.Wrap(services.ErrIndexBuild, "indexing", "pgvector save", "no chunks", nil)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return services.Wrap(services.ErrIndexBuild, "indexing", "pgvector save", "begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM vidrag_chunks WHERE run_id = $1`, runID); err != nil {
		return services.Wrap(services.ErrIndexBuild, "indexing", "pgvector save", "clear run", err)
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(
			`INSERT INTO vidrag_chunks (run_id, position, content, token_start, token_count, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, c.Position, c.Text, c.TokenStart, c.TokenCount, pgvector.NewVector(c.Embedding),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return services.Wrap(services.ErrIndexBuild, "indexing", "pgvector save", "insert chunks", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return services.Wrap(services.ErrIndexBuild, "indexing", "pgvector save", "commit", err)
	}

	logging.WithContext(ctx, s.logger).Info("chunks stored in postgres",
		slog.String(logging.FieldRunID, runID),
		slog.Int("chunks", len(chunks)),
	)
	return nil
}

// ForRun returns a searcher restricted to the chunks of runID.
func (s *Store) ForRun(runID string) *RunSearcher {
	return &RunSearcher{store: s, runID: runID}
}

// RunSearcher implements index.Searcher over one run's chunks.
type RunSearcher struct {
	store *Store
	runID string
}

// Search orders chunks by cosine distance to query. k <= 0 returns every
// chunk of the run.
func (r *RunSearcher) Search(ctx context.Context, query []float32, k int) ([]index.Hit, error) {
	if r == nil || r.store == nil || r.store.pool == nil {
		return nil, services.Wrap(services.ErrRetrievalUnavailable, "retrieval", "pgvector search", "store not open", nil)
	}
	var limit any
	if k > 0 {
		limit = k
	}
	rows, err := r.store.pool.Query(ctx, `
		SELECT position, content, token_start, token_count, embedding,
		       1 - (embedding <=> $1) AS score
		FROM vidrag_chunks
		WHERE run_id = $2
		ORDER BY embedding <=> $1, position
		LIMIT $3`,
		pgvector.NewVector(query), r.runID, limit,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrRetrievalUnavailable, "retrieval", "pgvector search", "", err)
	}
	defer rows.Close()

	var hits []index.Hit
	for rows.Next() {
		var (
			h   index.Hit
			vec pgvector.Vector
		)
		if err := rows.Scan(&h.Chunk.Position, &h.Chunk.Text, &h.Chunk.TokenStart, &h.Chunk.TokenCount, &vec, &h.Score); err != nil {
			return nil, services.Wrap(services.ErrRetrievalUnavailable, "retrieval", "pgvector search", "scan", err)
		}
		h.Chunk.Embedding = vec.Slice()
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrRetrievalUnavailable, "retrieval", "pgvector search", "", err)
	}
	if len(hits) == 0 {
		return nil, services.Wrap(services.ErrRetrievalUnavailable, "retrieval", "pgvector search",
			fmt.Sprintf("no chunks stored for run %s", r.runID), nil)
	}
	return hits, nil
}

