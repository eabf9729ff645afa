package metrics

import "github.com/prometheus/client_golang/prometheus"

// Embedding Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gor",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gor",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gor",
			Name:      "embedding_fallback_total",
			Help:      "Embeddings served by the deterministic offline fallback",
		},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gor",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// Ingestion Prometheus metrics.
var (
	IngestOffersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gor",
			Name:      "ingest_offers_total",
			Help:      "Offers seen during ingestion by outcome",
		},
		[]string{"status"}, // "indexed" / "failed"
	)

	IngestRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gor",
			Name:      "ingest_runs_total",
			Help:      "Total number of ingestion runs",
		},
	)
)

var registered bool

// Register registers embedding and ingestion metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingFallbackTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(IngestOffersTotal)
	prometheus.MustRegister(IngestRunsTotal)
	registered = true
}
