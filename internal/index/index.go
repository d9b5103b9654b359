package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"vidrag/internal/logging"
	"vidrag/internal/services"
)

// DefaultBatchSize is the number of texts sent to an Embedder per call.
const DefaultBatchSize = 64

// TextChunk is one retrieval unit cut from a transcript.
type TextChunk struct {
	Position   int
	Text       string
	TokenStart int
	TokenCount int
	Embedding  []float32
}

// Hit is a ranked search result.
type Hit struct {
	Chunk TextChunk
	Score float64
}

// Embedder computes one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher returns the k chunks closest to a query vector.
type Searcher interface {
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
}

// Index is an immutable in-memory vector index.
type Index struct {
	chunks []TextChunk
	dims   int
}

// BuildOptions tunes Build.
type BuildOptions struct {
	BatchSize int
	Logger    *slog.Logger
}

// Build splits transcript, embeds every chunk and returns the index.
func Build(ctx context.Context, transcript string, splitter *Splitter, embedder Embedder, opts BuildOptions) (*Index, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "index"))
	if splitter == nil || embedder == nil {
		return nil, services.Wrap(services.ErrIndexBuild, "indexing", "setup", "splitter and embedder are required", nil)
	}

	chunks := splitter.Split(transcript)
	if len(chunks) == 0 {
		return nil, services.Wrap(services.ErrIndexBuild, "indexing", "split", "transcript has no text to index", nil)
	}

	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	for lo := 0; lo < len(chunks); lo += batch {
		hi := min(lo+batch, len(chunks))
		texts := make([]string, hi-lo)
		for i := range texts {
			texts[i] = chunks[lo+i].Text
		}
		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, services.Wrap(services.ErrIndexBuild, "indexing", "embed", fmt.Sprintf("chunks %d-%d", lo, hi-1), err)
		}
		if len(vectors) != len(texts) {
			return nil, services.Wrap(services.ErrIndexBuild, "indexing", "embed",
				fmt.Sprintf("embedder returned %d vectors for %d chunks", len(vectors), len(texts)), nil)
		}
		for i, v := range vectors {
			chunks[lo+i].Embedding = v
		}
		logger.Debug("embedded batch", slog.Int("from", lo), slog.Int("to", hi-1))
	}

	idx, err := NewIndex(chunks)
	if err != nil {
		return nil, err
	}
	logger.Info("index built",
		slog.Int("chunks", idx.Len()),
		slog.Int("dimensions", idx.Dimensions()),
	)
	return idx, nil
}

// NewIndex wraps already-embedded chunks, for example ones loaded from
// storage. Every chunk must carry a non-empty embedding of one shared length.
func NewIndex(chunks []TextChunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, services.Wrap(services.ErrIndexBuild, "indexing", "validate", "no chunks", nil)
	}
	dims := len(chunks[0].Embedding)
	if dims == 0 {
		return nil, services.Wrap(services.ErrIndexBuild, "indexing", "validate", "chunk 0 has an empty embedding", nil)
	}
	owned := make([]TextChunk, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) != dims {
			return nil, services.Wrap(services.ErrIndexBuild, "indexing", "validate",
				fmt.Sprintf("chunk %d has %d dimensions, expected %d", i, len(c.Embedding), dims), nil)
		}
		c.Embedding = append([]float32(nil), c.Embedding...)
		owned[i] = c
	}
	sort.SliceStable(owned, func(i, j int) bool { return owned[i].Position < owned[j].Position })
	return &Index{chunks: owned, dims: dims}, nil
}

// Len reports the number of chunks. A nil index has none.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.chunks)
}

// Dimensions reports the embedding width.
func (idx *Index) Dimensions() int {
	if idx == nil {
		return 0
	}
	return idx.dims
}

// Chunks returns a copy of the indexed chunks in position order.
func (idx *Index) Chunks() []TextChunk {
	if idx == nil {
		return nil
	}
	out := make([]TextChunk, len(idx.chunks))
	copy(out, idx.chunks)
	return out
}

// Search ranks every chunk by cosine similarity to query and returns the
// best k. k <= 0 returns every chunk.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]Hit, error) {
	if idx.Len() == 0 {
		return nil, services.Wrap(services.ErrRetrievalUnavailable, "retrieval", "search", "index is empty", nil)
	}
	if len(query) != idx.dims {
		return nil, services.Wrap(services.ErrRetrievalUnavailable, "retrieval", "search",
			fmt.Sprintf("query has %d dimensions, index has %d", len(query), idx.dims), nil)
	}
	hits := make([]Hit, len(idx.chunks))
	for i, c := range idx.chunks {
		hits[i] = Hit{Chunk: c, Score: Cosine(query, c.Embedding)}
	}
	sortHits(hits)
	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// sortHits orders by descending score, then ascending position.
func sortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.Position < hits[j].Chunk.Position
	})
}
