package index

import (
	"context"
	"log/slog"
	"strings"

	"vidrag/internal/logging"
	"vidrag/internal/services"
	"vidrag/internal/textutil"
)

// DefaultTopK is the number of chunks returned when the caller passes k <= 0.
const DefaultTopK = 5

// rrfK is the rank offset used by reciprocal rank fusion.
const rrfK = 60

// Retrieval modes.
const (
	ModeVector = "vector"
	ModeHybrid = "hybrid"
)

// Retriever answers questions with the most relevant transcript chunks.
type Retriever struct {
	searcher Searcher
	embedder Embedder
	topK     int
	lexical  *lexicalIndex
	logger   *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK sets the default result count.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithMode selects vector or hybrid ranking. Hybrid ranking needs the
// in-memory Index and falls back to vector ranking for other searchers.
func WithMode(mode string) RetrieverOption {
	return func(r *Retriever) {
		if !strings.EqualFold(strings.TrimSpace(mode), ModeHybrid) {
			r.lexical = nil
			return
		}
		if idx, ok := r.searcher.(*Index); ok && idx.Len() > 0 {
			r.lexical = newLexicalIndex(idx.chunks)
			return
		}
		r.logger.Warn("hybrid retrieval needs the in-memory index; using vector ranking")
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) RetrieverOption {
	return func(r *Retriever) {
		r.logger = logging.NewComponentLogger(logger, "retriever")
	}
}

// NewRetriever builds a Retriever over searcher. A nil *Index is accepted and
// reported as unavailable at query time.
func NewRetriever(searcher Searcher, embedder Embedder, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		searcher: searcher,
		embedder: embedder,
		topK:     DefaultTopK,
		logger:   logging.NewComponentLogger(nil, "retriever"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Retrieve returns up to k chunks for question, most relevant first.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]Hit, error) {
	if r == nil || r.searcher == nil || r.embedder == nil {
		return nil, services.Wrap(services.ErrRetrievalUnavailable, "retrieval", "retrieve", "no index loaded", nil)
	}
	if idx, ok := r.searcher.(*Index); ok && idx.Len() == 0 {
		return nil, services.Wrap(services.ErrRetrievalUnavailable, "retrieval", "retrieve", "index is empty", nil)
	}
	if k <= 0 {
		k = r.topK
	}

	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, services.Wrap(services.ErrEmbedding, "retrieval", "embed question", "", err)
	}
	if len(vectors) != 1 {
		return nil, services.Wrap(services.ErrEmbedding, "retrieval", "embed question", "embedder returned no vector", nil)
	}

	if r.lexical == nil {
		hits, err := r.searcher.Search(ctx, vectors[0], k)
		if err != nil {
			return nil, err
		}
		r.logHits(ctx, ModeVector, hits)
		return hits, nil
	}

	ranked, err := r.searcher.Search(ctx, vectors[0], 0)
	if err != nil {
		return nil, err
	}
	hits := fuse(ranked, r.lexical.rank(question))
	if len(hits) > k {
		hits = hits[:k]
	}
	r.logHits(ctx, ModeHybrid, hits)
	return hits, nil
}

func (r *Retriever) logHits(ctx context.Context, mode string, hits []Hit) {
	positions := make([]int, len(hits))
	for i, h := range hits {
		positions[i] = h.Chunk.Position
	}
	logging.WithContext(ctx, r.logger).Debug("retrieved chunks",
		slog.String("mode", mode),
		slog.Any("positions", positions),
	)
}

// lexicalIndex ranks chunks by TF-IDF cosine similarity.
type lexicalIndex struct {
	chunks       []TextChunk
	fingerprints []*textutil.Fingerprint
	idf          map[string]float64
}

func newLexicalIndex(chunks []TextChunk) *lexicalIndex {
	corpus := textutil.NewCorpus()
	raw := make([]*textutil.Fingerprint, len(chunks))
	for i, c := range chunks {
		raw[i] = textutil.NewFingerprint(c.Text)
		corpus.Add(raw[i])
	}
	idf := corpus.IDF()
	weighted := make([]*textutil.Fingerprint, len(raw))
	for i, fp := range raw {
		weighted[i] = fp.WithIDF(idf)
	}
	return &lexicalIndex{chunks: chunks, fingerprints: weighted, idf: idf}
}

// rank returns the chunks sharing at least one term with query, best first.
func (l *lexicalIndex) rank(query string) []Hit {
	q := textutil.NewFingerprint(query).WithIDF(l.idf)
	if q == nil {
		return nil
	}
	var hits []Hit
	for i, fp := range l.fingerprints {
		if score := textutil.CosineSimilarity(q, fp); score > 0 {
			hits = append(hits, Hit{Chunk: l.chunks[i], Score: score})
		}
	}
	sortHits(hits)
	return hits
}

// fuse combines rankings with reciprocal rank fusion. The returned Score is
// the fused score.
func fuse(rankings ...[]Hit) []Hit {
	scores := map[int]float64{}
	chunks := map[int]TextChunk{}
	for _, ranking := range rankings {
		for rank, h := range ranking {
			scores[h.Chunk.Position] += 1 / float64(rrfK+rank+1)
			chunks[h.Chunk.Position] = h.Chunk
		}
	}
	hits := make([]Hit, 0, len(scores))
	for pos, score := range scores {
		hits = append(hits, Hit{Chunk: chunks[pos], Score: score})
	}
	sortHits(hits)
	return hits
}
