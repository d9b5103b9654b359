package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Splitter defaults.
const (
	DefaultChunkTokens   = 256
	DefaultOverlapTokens = 32
	DefaultEncoding      = "cl100k_base"
)

// Tokenizer converts text to and from token IDs.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

func (t tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// NewTiktokenTokenizer loads the named BPE encoding.
func NewTiktokenTokenizer(encoding string) (Tokenizer, error) {
	encoding = strings.TrimSpace(encoding)
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load token encoding %s: %w", encoding, err)
	}
	return tiktokenTokenizer{enc: enc}, nil
}

// Splitter cuts text into windows of ChunkTokens tokens where consecutive
// windows share OverlapTokens tokens. Window edges are moved to word
// boundaries when one exists in the back half of the window.
type Splitter struct {
	tokenizer Tokenizer
	size      int
	overlap   int
}

// NewSplitter validates the window sizes.
func NewSplitter(tokenizer Tokenizer, chunkTokens, overlapTokens int) (*Splitter, error) {
	if tokenizer == nil {
		return nil, errors.New("splitter: tokenizer is required")
	}
	if chunkTokens <= 0 {
		chunkTokens = DefaultChunkTokens
	}
	if overlapTokens < 0 || overlapTokens >= chunkTokens {
		return nil, fmt.Errorf("splitter: overlap %d must be in [0, %d)", overlapTokens, chunkTokens)
	}
	return &Splitter{tokenizer: tokenizer, size: chunkTokens, overlap: overlapTokens}, nil
}

// Split returns the chunks of text in order. Blank text yields no chunks.
func (s *Splitter) Split(text string) []TextChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	tokens := s.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return nil
	}

	var chunks []TextChunk
	start := 0
	for start < len(tokens) {
		end := min(start+s.size, len(tokens))
		if end < len(tokens) {
			end = s.snapBack(tokens, start, end)
		}
		if body := strings.TrimSpace(s.tokenizer.Decode(tokens[start:end])); body != "" {
			chunks = append(chunks, TextChunk{
				Position:   len(chunks),
				Text:       body,
				TokenStart: start,
				TokenCount: end - start,
			})
		}
		if end >= len(tokens) {
			break
		}
		next := s.snapForward(tokens, end-s.overlap, end)
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// snapBack moves end left onto the start of a word, staying in the back half
// of the window.
func (s *Splitter) snapBack(tokens []int, start, end int) int {
	floor := start + s.size/2
	for b := end; b > floor; b-- {
		if s.startsWord(tokens[b]) {
			return b
		}
	}
	return end
}

// snapForward moves a window start right onto the start of a word, never
// reaching limit.
func (s *Splitter) snapForward(tokens []int, from, limit int) int {
	if from < 0 {
		from = 0
	}
	for f := from; f < limit; f++ {
		if s.startsWord(tokens[f]) {
			return f
		}
	}
	return from
}

func (s *Splitter) startsWord(token int) bool {
	piece := s.tokenizer.Decode([]int{token})
	if piece == "" {
		return false
	}
	switch piece[0] {
	case ' ', '\n', '\t', '\r':
		return true
	default:
		return false
	}
}
