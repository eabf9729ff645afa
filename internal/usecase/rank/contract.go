package rank

import (
	"context"

	"github.com/chiefastro/gor/internal/domain"
	"github.com/chiefastro/gor/internal/domain/search"
)

// Index defines the retrieval contract for ranking.
type Index interface {
	VectorSearch(ctx context.Context, vector []float32, f search.Filter, k int, scoreThreshold float64) ([]search.Candidate, error)
	Scroll(ctx context.Context, f search.Filter, offset, limit int) ([]search.Candidate, int, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
