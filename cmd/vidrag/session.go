package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"vidrag/internal/conversation"
	"vidrag/internal/index"
	"vidrag/internal/services"
	"vidrag/internal/services/embed"
	"vidrag/internal/store"
	"vidrag/internal/synth"
)

// qaSession answers questions about one stored run and records each turn
// under a persisted conversation session.
type qaSession struct {
	store       *store.Store
	run         *store.Run
	session     *store.Session
	history     *conversation.History
	retriever   *index.Retriever
	synthesizer *synth.Synthesizer
	topK        int
	release     func()
}

type qaAnswer struct {
	Turn conversation.Turn
	Hits []index.Hit
}

// openQASession resolves runRef and sessionID against st and prepares
// retrieval and synthesis. An empty sessionID starts a new session.
func openQASession(ctx context.Context, cmdCtx *commandContext, st *store.Store, runRef, sessionID string, topK int, logger *slog.Logger) (*qaSession, error) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return nil, err
	}
	run, err := st.GetRun(ctx, runRef)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, services.Wrap(services.ErrNotFound, "ask", "load run", fmt.Sprintf("run %q not found; list runs with `vidrag runs`", runRef), nil)
	}

	// An existing session is checked up front. A new one is only created once
	// retrieval and synthesis are ready, so a failed open leaves nothing behind.
	session, err := loadSession(ctx, st, run, sessionID)
	if err != nil {
		return nil, err
	}
	var turns []conversation.Turn
	if session != nil {
		if turns, err = st.ListTurns(ctx, session.ID); err != nil {
			return nil, err
		}
	}

	embedder, err := embed.FromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	retriever, release, err := openRetriever(ctx, cfg, st, run, embedder, logger)
	if err != nil {
		return nil, err
	}
	synthesizer, err := newSynthesizer(ctx, cfg, logger)
	if err != nil {
		release()
		return nil, err
	}
	if session == nil {
		if session, err = st.CreateSession(ctx, run.ID); err != nil {
			release()
			return nil, err
		}
	}
	if topK <= 0 {
		topK = cfg.Index.TopK
	}
	return &qaSession{
		store:       st,
		run:         run,
		session:     session,
		history:     conversation.NewHistory(turns...),
		retriever:   retriever,
		synthesizer: synthesizer,
		topK:        topK,
		release:     release,
	}, nil
}

// loadSession returns the session named by sessionID after checking it
// belongs to run. An empty sessionID yields nil.
func loadSession(ctx context.Context, st *store.Store, run *store.Run, sessionID string) (*store.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	session, err := st.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, services.Wrap(services.ErrNotFound, "ask", "load session", fmt.Sprintf("session %q not found", sessionID), nil)
	}
	if session.RunID != run.ID {
		return nil, services.Wrap(services.ErrValidation, "ask", "load session",
			fmt.Sprintf("session %s belongs to run %s, not %s", session.ID, shortID(session.RunID), shortID(run.ID)), nil)
	}
	return session, nil
}

func (q *qaSession) scoped(ctx context.Context) context.Context {
	ctx = services.WithRunID(ctx, q.run.ID)
	return services.WithSessionID(ctx, q.session.ID)
}

// Ask retrieves context for question, generates the answer and persists the
// turn. Generation failures come back as the answer text, not as an error.
func (q *qaSession) Ask(ctx context.Context, question string) (qaAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return qaAnswer{}, services.Wrap(services.ErrValidation, "ask", "validate", "question is required", nil)
	}
	ctx = services.WithRequestID(q.scoped(ctx), uuid.NewString())
	hits, err := q.retriever.Retrieve(ctx, question, q.topK)
	if err != nil {
		return qaAnswer{}, err
	}
	answer := q.synthesizer.Answer(ctx, hits, question)
	turn := q.history.NewTurn(question, answer)
	if _, err := q.store.AppendTurn(ctx, q.session.ID, turn); err != nil {
		return qaAnswer{}, err
	}
	q.history.Add(turn)
	return qaAnswer{Turn: turn, Hits: hits}, nil
}

// Suggest proposes follow-up questions from the hits of the latest answer.
func (q *qaSession) Suggest(ctx context.Context, hits []index.Hit) []string {
	return q.synthesizer.Suggest(q.scoped(ctx), synth.ContextText(hits), q.history.Turns())
}

func (q *qaSession) Close() {
	if q.release != nil {
		q.release()
	}
}
