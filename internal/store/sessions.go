package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidrag/internal/conversation"
	"vidrag/internal/services"
)

// Session is a chat conversation about one run.
type Session struct {
	ID        string
	RunID     string
	CreatedAt time.Time
}

// CreateSession starts a new session for an existing run.
func (s *Store) CreateSession(ctx context.Context, runID string) (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		RunID:     strings.TrimSpace(runID),
		CreatedAt: time.Now().UTC(),
	}
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(
			ctx,
			`INSERT INTO sessions (id, run_id, created_at) VALUES (?, ?, ?)`,
			session.ID,
			session.RunID,
			formatTime(session.CreatedAt),
		)
		return err
	})
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return nil, services.Wrap(services.ErrNotFound, "store", "create session", "run "+session.RunID+" does not exist", err)
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// GetSession fetches a session by ID. A missing session yields nil without error.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	var (
		session    Session
		createdRaw string
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, run_id, created_at FROM sessions WHERE id = ?`,
		strings.TrimSpace(id),
	).Scan(&session.ID, &session.RunID, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	session.CreatedAt = parseTime(createdRaw)
	return &session, nil
}

// ListSessions returns the sessions of a run, oldest first.
func (s *Store) ListSessions(ctx context.Context, runID string) ([]Session, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, created_at FROM sessions WHERE run_id = ? ORDER BY created_at, id`,
		strings.TrimSpace(runID),
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	var sessions []Session
	for rows.Next() {
		var (
			session    Session
			createdRaw string
		)
		if err := rows.Scan(&session.ID, &session.RunID, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.CreatedAt = parseTime(createdRaw)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// AppendTurn records turn as the next entry of the session and returns its
// sequence number, starting at 1.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, turn conversation.Turn) (int, error) {
	var seq int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(
			ctx,
			`SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE session_id = ?`,
			sessionID,
		).Scan(&seq); err != nil {
			return fmt.Errorf("next turn seq: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO turns (session_id, seq, question, answer, asked_at) VALUES (?, ?, ?, ?, ?)`,
			sessionID,
			seq,
			turn.Question,
			turn.Answer,
			formatTime(turn.AskedAt),
		); err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// ListTurns returns the turns of a session in the order they were appended.
func (s *Store) ListTurns(ctx context.Context, sessionID string) ([]conversation.Turn, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT question, answer, asked_at FROM turns WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()
	var turns []conversation.Turn
	for rows.Next() {
		var (
			turn     conversation.Turn
			askedRaw string
		)
		if err := rows.Scan(&turn.Question, &turn.Answer, &askedRaw); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.AskedAt = parseTime(askedRaw)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}
