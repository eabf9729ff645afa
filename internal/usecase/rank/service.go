// Package rank produces the ranked, paginated offer list for a query:
// candidate retrieval, hybrid semantic/geo/time scoring, stable sort,
// then pagination over the full pool.
package rank

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/chiefastro/gor/internal/domain/offer"
	"github.com/chiefastro/gor/internal/domain/search"
)

// Method is reported in query responses.
const Method = "hybrid_semantic_geo_time"

const defaultMaxCandidates = 200

// Service ranks offers. Stateless between requests: concurrent searches
// share nothing and run fully in parallel.
type Service struct {
	index          Index
	embedder       Embedder
	logger         *zap.Logger
	maxCandidates  int
	scoreThreshold float64
	now            func() time.Time
}

// New creates a ranking service.
func New(index Index, embedder Embedder, scoreThreshold float64, logger *zap.Logger) *Service {
	return &Service{
		index:          index,
		embedder:       embedder,
		logger:         logger,
		maxCandidates:  defaultMaxCandidates,
		scoreThreshold: scoreThreshold,
		now:            time.Now,
	}
}

// WithMaxCandidates caps the candidate pool drawn for re-ranking.
func (s *Service) WithMaxCandidates(n int) *Service {
	if n > 0 {
		s.maxCandidates = n
	}
	return s
}

// WithClock overrides the time source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Search runs the ranking pipeline. Retrieval failures degrade to an
// empty result with total=0; they are logged, never surfaced, so
// discovery stays available when the index store is down.
func (s *Service) Search(ctx context.Context, p search.Params) (search.Results, error) {
	candidates, err := s.retrieve(ctx, p)
	if err != nil {
		s.logger.Warn("Candidate retrieval failed, returning empty results",
			zap.String("query", p.Query), zap.Error(err))
		return search.Empty(p), nil
	}
	if len(candidates) == 0 {
		return search.Empty(p), nil
	}

	now := s.now()
	ranked := make([]search.Ranked, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, search.Ranked{
			Offer:  c.Offer,
			Scores: scoreCandidate(c, p, now),
		})
	}

	// Stable: ties keep retrieval order, so identical queries against
	// unchanged data are deterministic.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Scores.Combined > ranked[j].Scores.Combined
	})

	return paginate(ranked, p), nil
}

// retrieve draws the candidate pool. A free-text query goes through
// vector search with the similarity threshold; an empty query is a pure
// filter-and-browse scroll.
func (s *Service) retrieve(ctx context.Context, p search.Params) ([]search.Candidate, error) {
	f := search.Filter{MerchantID: p.MerchantID, Labels: p.Labels}

	if !p.HasQuery() {
		return s.scroll(ctx, f)
	}

	result, err := s.embedder.Embed(ctx, p.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Offline vectors are reproducible but carry no semantic geometry, so
	// KNN similarity over them is noise and the threshold would drop every
	// hit. A degraded query scrolls the filtered pool instead and the
	// term-overlap heuristic does the ranking.
	if result.Fallback {
		return s.scroll(ctx, f)
	}

	candidates, err := s.index.VectorSearch(ctx, result.Embedding, f, s.maxCandidates, s.scoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return candidates, nil
}

func (s *Service) scroll(ctx context.Context, f search.Filter) ([]search.Candidate, error) {
	candidates, _, err := s.index.Scroll(ctx, f, 0, s.maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("scroll candidates: %w", err)
	}
	return candidates, nil
}

// paginate applies offset then limit after sorting, never before: rank
// is computed over the full candidate pool, not per page.
func paginate(ranked []search.Ranked, p search.Params) search.Results {
	total := len(ranked)

	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}

	offers := make([]*offer.Offer, 0, end-start)
	for _, r := range ranked[start:end] {
		offers = append(offers, r.Offer)
	}

	return search.Results{
		Offers: offers,
		Total:  total,
		Limit:  p.Limit,
		Offset: p.Offset,
	}
}
