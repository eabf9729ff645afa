// Package embedding holds the embedder decorator chain: the deterministic
// offline embedder and the fallback decorator that degrades to it when the
// real provider is unavailable.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
	"strings"

	"github.com/chiefastro/gor/internal/domain"
)

// Deterministic produces reproducible embeddings from text alone, with no
// network and no shared state. Identical input text always yields a
// bit-identical vector, in every process, which keeps re-indexing
// idempotent and the whole pipeline testable offline.
type Deterministic struct {
	dim int
}

// NewDeterministic creates a deterministic embedder of the given dimension.
func NewDeterministic(dim int) *Deterministic {
	return &Deterministic{dim: dim}
}

// Dimensions returns the configured vector dimension.
func (d *Deterministic) Dimensions() int { return d.dim }

// Embed hashes the text into a seed and expands it into a unit-length
// pseudo-random vector. Empty or whitespace-only text yields a zero vector.
func (d *Deterministic) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	vec := make([]float32, d.dim)

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.EmbeddingResult{Embedding: vec, Fallback: true}, nil
	}

	h := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(h[:8])) //nolint:gosec // reproducibility, not security

	// math/rand's generator is stable across Go releases for a fixed seed.
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // seeded PRNG, not used for secrets

	var norm float64
	for i := range vec {
		v := rng.Float64()*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}

	return domain.EmbeddingResult{Embedding: vec, Fallback: true}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (d *Deterministic) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, d, texts)
}
