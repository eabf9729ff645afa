package embedding

import (
	"context"

	"go.uber.org/zap"

	"github.com/chiefastro/gor/internal/domain"
	"github.com/chiefastro/gor/internal/metrics"
)

// Fallback wraps the real embedding backend and silently degrades to the
// deterministic embedder when a call fails. Search must stay available,
// so a provider outage is logged and absorbed, never surfaced.
type Fallback struct {
	real   domain.Embedder
	mock   *Deterministic
	logger *zap.Logger
}

// NewFallback creates the degradation decorator. real may be nil when no
// credential is configured, in which case every call uses the
// deterministic embedder.
func NewFallback(real domain.Embedder, mock *Deterministic, logger *zap.Logger) *Fallback {
	return &Fallback{real: real, mock: mock, logger: logger}
}

// Embed tries the real backend first and falls back on any error.
func (f *Fallback) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if f.real == nil {
		return f.mock.Embed(ctx, text)
	}

	res, err := f.real.Embed(ctx, text)
	if err == nil {
		return res, nil
	}

	f.logger.Warn("embedding backend failed, using deterministic fallback", zap.Error(err))
	metrics.EmbeddingFallbackTotal.Inc()
	return f.mock.Embed(ctx, text)
}

// BatchEmbed tries the real backend first and falls back on any error.
func (f *Fallback) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if f.real == nil {
		return f.mock.BatchEmbed(ctx, texts)
	}

	if be, ok := f.real.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err == nil {
			return res, nil
		}
		f.logger.Warn("batch embedding backend failed, using deterministic fallback", zap.Error(err))
		metrics.EmbeddingFallbackTotal.Inc()
	}

	return f.mock.BatchEmbed(ctx, texts)
}

// HealthCheck reports the real backend's health; the fallback itself never fails.
func (f *Fallback) HealthCheck(ctx context.Context) error {
	if hc, ok := f.real.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
