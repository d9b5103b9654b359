package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"vidrag/internal/textutil"
)

// DefaultLocalDimensions is the vector width of the local embedder.
const DefaultLocalDimensions = 512

// LocalModel names the local embedding scheme.
const LocalModel = "local-ngram"

// Local embeds text by hashing character trigrams and stemmed terms into a
// fixed number of buckets. Vectors are L2-normalized.
type Local struct {
	dims int
}

// NewLocal returns a Local embedder of width dims.
func NewLocal(dims int) *Local {
	if dims <= 0 {
		dims = DefaultLocalDimensions
	}
	return &Local{dims: dims}
}

// Model includes the width so indexes of different widths are never mixed.
func (l *Local) Model() string {
	return fmt.Sprintf("%s-%d", LocalModel, l.dims)
}

// Embed never fails except on a cancelled context.
func (l *Local) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = l.vector(text)
	}
	return out, nil
}

func (l *Local) vector(text string) []float32 {
	vec := make([]float32, l.dims)
	for _, gram := range textutil.CharNGrams(text, 3) {
		vec[l.bucket("g:"+gram)]++
	}
	for _, term := range textutil.Tokenize(text) {
		vec[l.bucket("t:"+term)] += 2
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

func (l *Local) bucket(feature string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	return int(h.Sum32() % uint32(l.dims))
}
