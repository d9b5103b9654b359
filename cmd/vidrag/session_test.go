package main

import (
	"context"
	"testing"

	"vidrag/internal/logging"
	"vidrag/internal/store"
)

func openTestQASession(t *testing.T, env *cliTestEnv, runID string) (*qaSession, *store.Store) {
	t.Helper()
	configPath := env.configPath
	level := "error"
	cmdCtx := newCommandContext(&configPath, &level)
	st, err := cmdCtx.openStore()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	qa, err := openQASession(context.Background(), cmdCtx, st, runID, "", 0, logging.NewNop())
	if err != nil {
		t.Fatalf("openQASession: %v", err)
	}
	t.Cleanup(qa.Close)
	return qa, st
}

func TestAskKeepsHistoryInStepWithStore(t *testing.T) {
	env := setupCLITestEnv(t)
	run := env.seedRun(t, "run-persist-01", "cats are mammals")
	qa, st := openTestQASession(t, env, run.ID)

	if _, err := qa.Ask(context.Background(), "what is a mammal?"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if qa.history.Len() != 1 {
		t.Fatalf("history len = %d, want 1", qa.history.Len())
	}

	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
	if _, err := qa.Ask(context.Background(), "is the sky blue?"); err == nil {
		t.Fatal("expected Ask to fail once the store is closed")
	}
	if qa.history.Len() != 1 {
		t.Fatalf("history len = %d after failed write, want 1", qa.history.Len())
	}
}

func TestOpenQASessionCreatesSessionLast(t *testing.T) {
	env := setupCLITestEnv(t)
	run := env.seedRun(t, "run-open-01", "cats are mammals")
	qa, _ := openTestQASession(t, env, run.ID)

	sessions, err := env.store.ListSessions(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != qa.session.ID {
		t.Fatalf("sessions = %+v, want only %s", sessions, qa.session.ID)
	}
}
