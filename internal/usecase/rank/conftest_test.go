package rank

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chiefastro/gor/internal/domain"
	"github.com/chiefastro/gor/internal/domain/offer"
	"github.com/chiefastro/gor/internal/domain/search"
)

// mockIndex implements Index for tests.
type mockIndex struct {
	vectorFn func(ctx context.Context, vector []float32, f search.Filter, k int, threshold float64) ([]search.Candidate, error)
	scrollFn func(ctx context.Context, f search.Filter, offset, limit int) ([]search.Candidate, int, error)
}

func (m *mockIndex) VectorSearch(
	ctx context.Context, vector []float32, f search.Filter, k int, threshold float64,
) ([]search.Candidate, error) {
	if m.vectorFn != nil {
		return m.vectorFn(ctx, vector, f, k, threshold)
	}
	return nil, nil
}

func (m *mockIndex) Scroll(
	ctx context.Context, f search.Filter, offset, limit int,
) ([]search.Candidate, int, error) {
	if m.scrollFn != nil {
		return m.scrollFn(ctx, f, offset, limit)
	}
	return nil, 0, nil
}

// mockEmbedder implements Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

// fixedNow is the reference clock used by scoring tests.
var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *mockIndex, *mockEmbedder) {
	t.Helper()
	mi := &mockIndex{}
	me := &mockEmbedder{}
	svc := New(mi, me, 0.3, zap.NewNop()).WithClock(func() time.Time { return fixedNow })
	return svc, mi, me
}

func mustParams(t *testing.T, query string, lat, lng *float64, radiusM int, labels []string, limit, offset int) search.Params {
	t.Helper()
	p, err := search.NewParams(query, lat, lng, radiusM, labels, "", limit, offset)
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	return p
}

func ptr(f float64) *float64 { return &f }

func candidateAt(id string, lat, lng float64, similarity float64) search.Candidate {
	return search.Candidate{
		Offer: &offer.Offer{
			OfferID: id,
			Merchant: &offer.Merchant{
				ID:       "m1",
				Location: &offer.Location{Lat: &lat, Lng: &lng},
			},
		},
		Similarity: similarity,
	}
}
