package registry

import (
	"context"

	"github.com/chiefastro/gor/internal/domain"
	"github.com/chiefastro/gor/internal/domain/offer"
	"github.com/chiefastro/gor/internal/domain/search"
)

// Index defines the storage contract for indexed offer points.
type Index interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, p *offer.Point) (created bool, err error)
	GetByPointID(ctx context.Context, pointID string) (*offer.Offer, error)
	Scroll(ctx context.Context, f search.Filter, offset, limit int) ([]search.Candidate, int, error)
	Count(ctx context.Context, f search.Filter) (int, error)
	Collection() string
	VectorDim() int
	Distance() string
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Merchant is one entry in the source's merchant directory.
type Merchant struct {
	ID      string
	Name    string
	FeedURL string
}

// Source supplies raw offer documents for ingestion.
type Source interface {
	ListMerchants(ctx context.Context) ([]Merchant, error)
	FetchOffers(ctx context.Context, m Merchant) ([]*offer.Offer, error)
}

// Stats describes the registry's current index state.
type Stats struct {
	TotalOffers     int    `json:"total_offers"`
	CollectionName  string `json:"collection_name"`
	VectorDimension int    `json:"vector_dimension"`
	DistanceMetric  string `json:"distance_metric"`
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	RunID        string `json:"run_id"`
	TotalSeen    int    `json:"total_seen"`
	TotalIndexed int    `json:"total_indexed"`
}
