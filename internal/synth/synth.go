package synth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"vidrag/internal/conversation"
	"vidrag/internal/index"
	"vidrag/internal/logging"
	"vidrag/internal/services"
	"vidrag/internal/services/llm"
	"vidrag/internal/textutil"
)

const (
	// DefaultAnswerTokens caps answer length.
	DefaultAnswerTokens = 300
	// SummaryInputRunes is how much of the transcript is sent for summarizing.
	SummaryInputRunes = 8000
	// SuggestionCount is the number of follow-up questions requested and kept.
	SuggestionCount = 3
	// suggestHistoryTurns is how many recent turns shape the suggestions.
	suggestHistoryTurns = 3

	summaryTokens      = 250
	summaryTemperature = 0.3
	suggestTokens      = 100
	suggestTemperature = 0.7
)

// Generator produces text for a prompt pair. Both llm.Client and
// gemini.Client satisfy it.
type Generator interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Synthesizer renders the answer, summary and suggestion templates.
type Synthesizer struct {
	gen          Generator
	answerTokens int
	logger       *slog.Logger
}

// Option customizes a Synthesizer.
type Option func(*Synthesizer)

// WithAnswerTokens overrides the answer token limit. Non-positive values keep
// the default.
func WithAnswerTokens(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.answerTokens = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// New constructs a Synthesizer over gen.
func New(gen Generator, opts ...Option) *Synthesizer {
	s := &Synthesizer{gen: gen, answerTokens: DefaultAnswerTokens}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "synth")
	return s
}

// ContextText joins hit texts in rank order, separated by blank lines.
func ContextText(hits []index.Hit) string {
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		if text := strings.TrimSpace(hit.Chunk.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Answer asks the generator to answer question from the retrieved hits. A
// failed call yields "Error generating answer: <reason>".
func (s *Synthesizer) Answer(ctx context.Context, hits []index.Hit, question string) string {
	req := llm.Request{
		System:    answerSystemPrompt,
		User:      fmt.Sprintf(answerTemplate, ContextText(hits), strings.TrimSpace(question)),
		MaxTokens: s.answerTokens,
	}
	answer, err := s.complete(ctx, "answer", req)
	if err != nil {
		return "Error generating answer: " + err.Error()
	}
	return answer
}

// Summarize produces a short overview of the first SummaryInputRunes runes
// of transcript. A failed call yields "Error generating summary: <reason>".
func (s *Synthesizer) Summarize(ctx context.Context, transcript string) string {
	req := llm.Request{
		System:      summarySystemPrompt,
		User:        fmt.Sprintf(summaryTemplate, textutil.TruncateRunes(transcript, SummaryInputRunes)),
		MaxTokens:   summaryTokens,
		Temperature: summaryTemperature,
	}
	summary, err := s.complete(ctx, "summary", req)
	if err != nil {
		return "Error generating summary: " + err.Error()
	}
	return summary
}

// Suggest proposes up to SuggestionCount follow-up questions. It returns nil
// when generation fails.
func (s *Synthesizer) Suggest(ctx context.Context, contextText string, history []conversation.Turn) []string {
	req := llm.Request{
		System:      suggestSystemPrompt,
		User:        fmt.Sprintf(suggestTemplate, contextText, formatHistory(history)),
		MaxTokens:   suggestTokens,
		Temperature: suggestTemperature,
	}
	raw, err := s.complete(ctx, "suggest", req)
	if err != nil {
		return nil
	}
	return parseSuggestions(raw)
}

func (s *Synthesizer) complete(ctx context.Context, op string, req llm.Request) (string, error) {
	if s == nil || s.gen == nil {
		err := services.Wrap(services.ErrSynthesis, "synthesis", op, "no text generator configured", nil)
		return "", err
	}
	out, err := s.gen.Complete(ctx, req)
	if err != nil {
		logging.WithContext(ctx, s.logger).Warn("text generation failed",
			logging.Error(services.Wrap(services.ErrSynthesis, "synthesis", op, "generate", err)))
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func formatHistory(history []conversation.Turn) string {
	if len(history) > suggestHistoryTurns {
		history = history[len(history)-suggestHistoryTurns:]
	}
	if len(history) == 0 {
		return noHistory
	}
	var b strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", turn.Question, turn.Answer)
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseSuggestions keeps one question per non-blank line with list markers
// removed.
func parseSuggestions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		q := strings.TrimLeft(strings.TrimSpace(line), "123.-• ")
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == SuggestionCount {
			break
		}
	}
	return out
}
