package synth

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"vidrag/internal/conversation"
	"vidrag/internal/index"
	"vidrag/internal/services/llm"
)

type fakeGenerator struct {
	reply string
	err   error
	calls []llm.Request
}

func (f *fakeGenerator) Complete(_ context.Context, req llm.Request) (string, error) {
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

func hits(texts ...string) []index.Hit {
	out := make([]index.Hit, len(texts))
	for i, text := range texts {
		out[i] = index.Hit{Chunk: index.TextChunk{Position: i, Text: text}, Score: 1}
	}
	return out
}

func TestAnswerUsesContextAndLimits(t *testing.T) {
	gen := &fakeGenerator{reply: "  Cats are mammals.\n"}
	s := New(gen)

	got := s.Answer(context.Background(), hits("cats are mammals", "the sky is blue"), "what is a mammal?")
	if got != "Cats are mammals." {
		t.Fatalf("Answer = %q", got)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(gen.calls))
	}
	req := gen.calls[0]
	if req.MaxTokens != DefaultAnswerTokens {
		t.Fatalf("MaxTokens = %d, want %d", req.MaxTokens, DefaultAnswerTokens)
	}
	if req.System != answerSystemPrompt {
		t.Fatalf("System = %q", req.System)
	}
	if !strings.Contains(req.User, "cats are mammals\n\nthe sky is blue") {
		t.Fatalf("context not joined with blank lines: %q", req.User)
	}
	if !strings.Contains(req.User, "what is a mammal?") {
		t.Fatalf("question missing from prompt: %q", req.User)
	}
}

func TestAnswerFailureBecomesMessage(t *testing.T) {
	s := New(&fakeGenerator{err: errors.New("rate limited")})
	got := s.Answer(context.Background(), hits("x"), "q")
	if got != "Error generating answer: rate limited" {
		t.Fatalf("Answer = %q", got)
	}
}

func TestAnswerWithoutGenerator(t *testing.T) {
	got := New(nil).Answer(context.Background(), nil, "q")
	if !strings.HasPrefix(got, "Error generating answer: ") {
		t.Fatalf("Answer = %q", got)
	}
}

func TestWithAnswerTokens(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	New(gen, WithAnswerTokens(120)).Answer(context.Background(), nil, "q")
	New(gen, WithAnswerTokens(0)).Answer(context.Background(), nil, "q")
	if gen.calls[0].MaxTokens != 120 || gen.calls[1].MaxTokens != DefaultAnswerTokens {
		t.Fatalf("unexpected limits %d, %d", gen.calls[0].MaxTokens, gen.calls[1].MaxTokens)
	}
}

func TestSummarizeTruncatesTranscript(t *testing.T) {
	gen := &fakeGenerator{reply: "summary"}
	transcript := strings.Repeat("é", SummaryInputRunes+500)

	if got := New(gen).Summarize(context.Background(), transcript); got != "summary" {
		t.Fatalf("Summarize = %q", got)
	}
	req := gen.calls[0]
	if req.MaxTokens != 250 || req.Temperature != 0.3 {
		t.Fatalf("unexpected parameters %+v", req)
	}
	if n := strings.Count(req.User, "é"); n != SummaryInputRunes {
		t.Fatalf("prompt carries %d transcript runes, want %d", n, SummaryInputRunes)
	}
	if !utf8.ValidString(req.User) {
		t.Fatal("truncation split a rune")
	}
}

func TestSummarizeFailure(t *testing.T) {
	got := New(&fakeGenerator{err: errors.New("boom")}).Summarize(context.Background(), "text")
	if got != "Error generating summary: boom" {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestSuggestParsesAndLimits(t *testing.T) {
	gen := &fakeGenerator{reply: "1. Why are cats mammals?\n\n- What is fur for?\n• How do mammals breathe?\n3. One too many?"}
	got := New(gen).Suggest(context.Background(), "cats are mammals", nil)
	want := []string{"Why are cats mammals?", "What is fur for?", "How do mammals breathe?"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Suggest = %q, want %q", got, want)
	}
	req := gen.calls[0]
	if req.MaxTokens != 100 || req.Temperature != 0.7 {
		t.Fatalf("unexpected parameters %+v", req)
	}
	if !strings.Contains(req.User, noHistory) {
		t.Fatalf("expected empty history marker in %q", req.User)
	}
}

func TestSuggestUsesLastThreeTurns(t *testing.T) {
	gen := &fakeGenerator{reply: "q"}
	history := []conversation.Turn{
		{Question: "first", Answer: "a1"},
		{Question: "second", Answer: "a2"},
		{Question: "third", Answer: "a3"},
		{Question: "fourth", Answer: "a4"},
	}
	New(gen).Suggest(context.Background(), "ctx", history)
	prompt := gen.calls[0].User
	if strings.Contains(prompt, "Q: first") {
		t.Fatalf("oldest turn should be dropped: %q", prompt)
	}
	for _, q := range []string{"Q: second", "Q: third", "Q: fourth"} {
		if !strings.Contains(prompt, q) {
			t.Fatalf("expected %q in prompt %q", q, prompt)
		}
	}
}

func TestSuggestFailureReturnsNil(t *testing.T) {
	if got := New(&fakeGenerator{err: errors.New("down")}).Suggest(context.Background(), "c", nil); got != nil {
		t.Fatalf("Suggest = %q, want nil", got)
	}
}

func TestContextTextSkipsBlankChunks(t *testing.T) {
	got := ContextText(hits("alpha", "   ", "beta"))
	if got != "alpha\n\nbeta" {
		t.Fatalf("ContextText = %q", got)
	}
}
