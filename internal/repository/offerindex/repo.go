// Package offerindex persists offer points in a Redis FT vector index and
// serves filtered retrieval for the registry and the ranking service.
package offerindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/chiefastro/gor/internal/db"
	"github.com/chiefastro/gor/internal/domain"
	"github.com/chiefastro/gor/internal/domain/offer"
	"github.com/chiefastro/gor/internal/domain/search"
)

// store is the consumer interface for the offer index (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index string, filter db.Filter, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, filter db.Filter) (int, error)
}

// HNSWConfig tunes the vector index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Config describes the collection this repository manages.
type Config struct {
	Collection string
	VectorDim  int
	Distance   db.DistanceMetric
	HNSW       HNSWConfig
}

// Repo implements the index store contract used by usecase/registry and
// usecase/rank.
type Repo struct {
	store store
	cfg   Config
}

// New creates an offer index repository.
func New(s store, cfg Config) *Repo {
	if cfg.Collection == "" {
		cfg.Collection = "offers"
	}
	if cfg.Distance == "" {
		cfg.Distance = db.DistanceCosine
	}
	return &Repo{store: s, cfg: cfg}
}

// Collection returns the collection name.
func (r *Repo) Collection() string { return r.cfg.Collection }

// VectorDim returns the configured vector dimension.
func (r *Repo) VectorDim() int { return r.cfg.VectorDim }

// Distance returns the configured distance metric.
func (r *Repo) Distance() string { return string(r.cfg.Distance) }

// EnsureCollection creates the FT index if absent. Safe to call on every
// startup; a concurrent create racing past the existence check is treated
// as success.
func (r *Repo) EnsureCollection(ctx context.Context) error {
	idx := r.indexName()

	exists, err := r.store.IndexExists(ctx, idx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", idx, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     idx,
		Prefixes: []string{r.keyPrefix()},
		Fields: []db.IndexField{
			{Name: fieldOfferID, Type: db.IndexFieldTag},
			{Name: fieldMerchantID, Type: db.IndexFieldTag},
			{Name: fieldLabels, Type: db.IndexFieldTag, TagSeparator: labelSeparator},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.cfg.VectorDim,
				VectorDistance:    r.cfg.Distance,
				VectorM:           r.cfg.HNSW.M,
				VectorEFConstruct: r.cfg.HNSW.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", idx, err)
	}
	return nil
}

// Upsert writes a point, overwriting any existing point with the same id.
// Returns true when the point was newly created.
func (r *Repo) Upsert(ctx context.Context, p *offer.Point) (bool, error) {
	if len(p.Vector) != r.cfg.VectorDim {
		return false, fmt.Errorf("point %s: got dim %d, want %d: %w",
			p.ID, len(p.Vector), r.cfg.VectorDim, domain.ErrVectorDimMismatch)
	}

	fields, err := pointFields(p)
	if err != nil {
		return false, fmt.Errorf("point %s: %w", p.ID, err)
	}

	key := r.pointKey(p.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, fields); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}
	return !exists, nil
}

// GetByPointID returns the stored payload for a point id.
func (r *Repo) GetByPointID(ctx context.Context, pointID string) (*offer.Offer, error) {
	key := r.pointKey(pointID)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}

	o, _, err := parsePayload(fields)
	if err != nil {
		return nil, fmt.Errorf("point %s: %w", pointID, err)
	}
	return o, nil
}

// Scroll returns unranked candidates matching the filter, paginated.
// The second return value is the total match count before pagination.
func (r *Repo) Scroll(ctx context.Context, f search.Filter, offset, limit int) ([]search.Candidate, int, error) {
	sr, err := r.store.SearchList(ctx, r.indexName(), buildDBFilter(f), offset, limit,
		[]string{fieldPayload, fieldSearchText})
	if err != nil {
		return nil, 0, fmt.Errorf("scroll %s: %w", r.cfg.Collection, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, 0, nil
	}

	candidates := make([]search.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		o, text, err := parsePayload(entry.Fields)
		if err != nil {
			continue
		}
		candidates = append(candidates, search.Candidate{
			Offer:      o,
			SearchText: text,
			Similarity: search.NoSimilarity,
		})
	}
	return candidates, sr.Total, nil
}

// VectorSearch returns the k nearest candidates ordered by descending
// cosine similarity. Hits below scoreThreshold are dropped, not merely
// deprioritized.
func (r *Repo) VectorSearch(
	ctx context.Context, vector []float32, f search.Filter, k int, scoreThreshold float64,
) ([]search.Candidate, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName(),
		Filter:       buildDBFilter(f),
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldPayload, fieldSearchText},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("vector search %s: %w", r.cfg.Collection, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	candidates := make([]search.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if entry.Score < scoreThreshold {
			continue
		}
		o, text, err := parsePayload(entry.Fields)
		if err != nil {
			continue
		}
		candidates = append(candidates, search.Candidate{
			Offer:      o,
			SearchText: text,
			Similarity: entry.Score,
		})
	}
	return candidates, nil
}

// Count returns the number of indexed points matching the filter.
func (r *Repo) Count(ctx context.Context, f search.Filter) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), buildDBFilter(f))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.cfg.Collection, err)
	}
	return n, nil
}

func (r *Repo) keyPrefix() string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, r.cfg.Collection)
}

func (r *Repo) pointKey(pointID string) string {
	return r.keyPrefix() + pointID
}

func (r *Repo) indexName() string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, r.cfg.Collection)
}

func buildDBFilter(f search.Filter) db.Filter {
	var out db.Filter
	if f.MerchantID != "" {
		out.Must = append(out.Must, db.Match{Field: fieldMerchantID, Value: f.MerchantID})
	}
	if f.OfferID != "" {
		out.Must = append(out.Must, db.Match{Field: fieldOfferID, Value: f.OfferID})
	}
	for _, l := range f.Labels {
		out.Any = append(out.Any, db.Match{Field: fieldLabels, Value: l})
	}
	return out
}
