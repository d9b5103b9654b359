// Package conversation keeps the question and answer turns of one chat session.
package conversation

import (
	"strings"
	"sync"
	"time"
)

// Turn is one answered question. Turns are never edited once recorded.
type Turn struct {
	Question string
	Answer   string
	AskedAt  time.Time
}

// History is an append-only, concurrency-safe log of turns.
type History struct {
	mu    sync.Mutex
	turns []Turn
	now   func() time.Time
}

// NewHistory returns a history seeded with previously recorded turns, oldest
// first.
func NewHistory(seed ...Turn) *History {
	h := &History{now: time.Now}
	h.turns = append(h.turns, seed...)
	return h
}

// Append builds a turn stamped with the current time and records it.
func (h *History) Append(question, answer string) Turn {
	turn := h.NewTurn(question, answer)
	h.Add(turn)
	return turn
}

// NewTurn builds a turn stamped with the current time without recording it,
// so callers can persist it before it becomes part of the history.
func (h *History) NewTurn(question, answer string) Turn {
	return Turn{
		Question: strings.TrimSpace(question),
		Answer:   answer,
		AskedAt:  h.now().UTC(),
	}
}

// Add records an already built turn.
func (h *History) Add(turn Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turn)
}

// Turns returns a copy of every turn, oldest first.
func (h *History) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Turn(nil), h.turns...)
}

// Last returns up to n of the most recent turns, oldest first.
func (h *History) Last(n int) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 {
		return nil
	}
	if n > len(h.turns) {
		n = len(h.turns)
	}
	return append([]Turn(nil), h.turns[len(h.turns)-n:]...)
}

// Len reports the number of recorded turns.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}
