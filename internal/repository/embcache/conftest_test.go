package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chiefastro/gor/internal/domain"
	"github.com/chiefastro/gor/internal/metrics"
)

// mockKV implements the consumer interface for tests.
type mockKV struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockKV) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

// mockEmbedder is a configurable inner embedder.
type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

func newTestCachedEmbedder(t *testing.T, inner domain.Embedder) (*CachedEmbedder, *mockKV) {
	t.Helper()
	ms := &mockKV{}
	ce := New(inner, ms, time.Hour, metrics.EmbeddingCacheTotal, zap.NewNop())
	return ce, ms
}
