package main

import (
	"context"
	"strings"
	"testing"
)

func TestChatAnswersAndAcceptsSuggestionNumbers(t *testing.T) {
	env := setupCLITestEnv(t)
	run := env.seedRun(t, "run-chat-0001", "cats are mammals", "the sky is blue")

	stdin := strings.NewReader("what is a mammal?\n\n1\nexit\n")
	out, _, err := runCLI(t, []string{"chat", run.ID}, env.configPath, stdin)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	requireContains(t, out, testAnswer)
	requireContains(t, out, "Suggested questions:")
	requireContains(t, out, "1. Why are cats mammals?")
	requireContains(t, out, "Q: Why are cats mammals?")

	sessionID := sessionFromOutput(t, out)
	turns, err := env.store.ListTurns(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("ListTurns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[1].Question != "Why are cats mammals?" {
		t.Fatalf("second question = %q", turns[1].Question)
	}
	// Two answers and two suggestion rounds.
	if env.llm.requestCount() != 4 {
		t.Fatalf("expected 4 generation requests, got %d", env.llm.requestCount())
	}
}

func TestChatStopsAtEOF(t *testing.T) {
	env := setupCLITestEnv(t)
	run := env.seedRun(t, "run-chat-0002", "cats are mammals")

	out, _, err := runCLI(t, []string{"chat", run.ID}, env.configPath, strings.NewReader(""))
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	requireContains(t, out, "Chatting about")
	if env.llm.requestCount() != 0 {
		t.Fatalf("expected no generation requests, got %d", env.llm.requestCount())
	}
}
