package index

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var piecePattern = regexp.MustCompile(`\s*\S+|\s+$`)

// wordTokenizer emits one token per whitespace-prefixed word, split into
// pieces of at most four bytes, so long words span several tokens.
type wordTokenizer struct {
	vocab []string
	ids   map[string]int
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{ids: map[string]int{}}
}

func (w *wordTokenizer) Encode(text string) []int {
	var tokens []int
	for _, piece := range piecePattern.FindAllString(text, -1) {
		for len(piece) > 0 {
			n := min(4, len(piece))
			tokens = append(tokens, w.id(piece[:n]))
			piece = piece[n:]
		}
	}
	return tokens
}

func (w *wordTokenizer) Decode(tokens []int) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(w.vocab[t])
	}
	return b.String()
}

func (w *wordTokenizer) id(piece string) int {
	if id, ok := w.ids[piece]; ok {
		return id
	}
	w.ids[piece] = len(w.vocab)
	w.vocab = append(w.vocab, piece)
	return w.ids[piece]
}

// keywordEmbedder scores one dimension per keyword by occurrence.
type keywordEmbedder struct {
	keywords []string
	calls    [][]string
	err      error
	drop     bool
	ragged   bool
}

func (k *keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	k.calls = append(k.calls, texts)
	if k.err != nil {
		return nil, k.err
	}
	out := make([][]float32, 0, len(texts))
	for i, text := range texts {
		dims := len(k.keywords) + 1
		if k.ragged && i == len(texts)-1 {
			dims++
		}
		vec := make([]float32, dims)
		vec[len(k.keywords)] = 0.1
		lowered := strings.ToLower(text)
		for j, kw := range k.keywords {
			vec[j] = float32(strings.Count(lowered, kw))
		}
		out = append(out, vec)
	}
	if k.drop && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

var errEmbed = errors.New("embedding backend down")
