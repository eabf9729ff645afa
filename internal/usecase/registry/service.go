// Package registry translates raw offer documents into indexed points
// and serves registry-level reads.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chiefastro/gor/internal/domain"
	"github.com/chiefastro/gor/internal/domain/offer"
	"github.com/chiefastro/gor/internal/domain/search"
	"github.com/chiefastro/gor/internal/metrics"
)

const defaultIngestConcurrency = 4

// Service handles offer indexing and registry reads.
type Service struct {
	index       Index
	embedder    Embedder
	logger      *zap.Logger
	concurrency int
}

// New creates a registry service.
func New(index Index, embedder Embedder, logger *zap.Logger) *Service {
	return &Service{
		index:       index,
		embedder:    embedder,
		logger:      logger,
		concurrency: defaultIngestConcurrency,
	}
}

// WithConcurrency sets the number of merchants ingested in parallel.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// IndexOffer embeds an offer's search text and upserts it into the
// index. Safe to call repeatedly for the same offer: the point id is a
// pure function of (merchant_id, offer_id), so re-indexing overwrites.
// Embedding and store failures propagate as errors.
func (s *Service) IndexOffer(ctx context.Context, o *offer.Offer) (bool, error) {
	if o == nil || o.OfferID == "" {
		return false, fmt.Errorf("offer id is required: %w", domain.ErrMalformedInput)
	}

	searchText := DeriveSearchText(o)
	result, err := s.embedder.Embed(ctx, searchText)
	if err != nil {
		return false, fmt.Errorf("embed offer %s: %w", o.OfferID, err)
	}

	point := &offer.Point{
		ID:         offer.PointID(o.MerchantID(), o.OfferID),
		Vector:     result.Embedding,
		Offer:      o,
		SearchText: searchText,
	}

	created, err := s.index.Upsert(ctx, point)
	if err != nil {
		return false, fmt.Errorf("upsert offer %s: %w", o.OfferID, err)
	}
	return created, nil
}

// IngestAll pulls the merchant directory and every merchant's offers
// from the source, indexing each offer. Per-offer and per-merchant
// failures are logged and skipped; they never abort the batch.
func (s *Service) IngestAll(ctx context.Context, src Source) (IngestReport, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))

	merchants, err := src.ListMerchants(ctx)
	if err != nil {
		return IngestReport{RunID: runID}, fmt.Errorf("list merchants: %w", err)
	}

	metrics.IngestRunsTotal.Inc()
	log.Info("Ingestion started", zap.Int("merchants", len(merchants)))

	var seen, indexed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, m := range merchants {
		g.Go(func() error {
			offers, err := src.FetchOffers(gctx, m)
			if err != nil {
				log.Error("Failed to fetch merchant feed",
					zap.String("merchant_id", m.ID), zap.Error(err))
				return nil
			}

			for _, o := range offers {
				seen.Add(1)
				if _, err := s.IndexOffer(gctx, o); err != nil {
					metrics.IngestOffersTotal.WithLabelValues("failed").Inc()
					log.Error("Failed to index offer",
						zap.String("merchant_id", m.ID),
						zap.String("offer_id", o.OfferID),
						zap.Error(err))
					continue
				}
				metrics.IngestOffersTotal.WithLabelValues("indexed").Inc()
				indexed.Add(1)
			}
			return nil
		})
	}

	// Workers swallow their own errors; Wait only propagates ctx cancellation.
	if err := g.Wait(); err != nil {
		return IngestReport{RunID: runID}, fmt.Errorf("ingest run %s: %w", runID, err)
	}

	report := IngestReport{
		RunID:        runID,
		TotalSeen:    int(seen.Load()),
		TotalIndexed: int(indexed.Load()),
	}
	log.Info("Ingestion complete",
		zap.Int("total_seen", report.TotalSeen),
		zap.Int("total_indexed", report.TotalIndexed))
	return report, nil
}

// GetByID resolves an offer. With a merchant qualifier it tries the
// deterministic point id first; otherwise (or on a miss) it falls back
// to an unranked scroll filtered by the bare offer id. Both failing is
// not found, not an error.
func (s *Service) GetByID(ctx context.Context, merchantID, offerID string) (*offer.Offer, error) {
	if offerID == "" {
		return nil, fmt.Errorf("offer id is required: %w", domain.ErrMalformedInput)
	}

	if merchantID != "" {
		o, err := s.index.GetByPointID(ctx, offer.PointID(merchantID, offerID))
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get offer %s: %w", offerID, err)
		}
	}

	candidates, _, err := s.index.Scroll(ctx, search.Filter{OfferID: offerID}, 0, 1)
	if err != nil {
		return nil, fmt.Errorf("scroll offer %s: %w", offerID, err)
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNotFound
	}
	return candidates[0].Offer, nil
}

// GetByMerchant returns a merchant's offers, unranked and paginated.
// The second return value is the merchant's total offer count.
func (s *Service) GetByMerchant(ctx context.Context, merchantID string, offset, limit int) ([]*offer.Offer, int, error) {
	if merchantID == "" {
		return nil, 0, fmt.Errorf("merchant id is required: %w", domain.ErrMalformedInput)
	}

	candidates, total, err := s.index.Scroll(ctx, search.Filter{MerchantID: merchantID}, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("scroll merchant %s: %w", merchantID, err)
	}

	offers := make([]*offer.Offer, 0, len(candidates))
	for _, c := range candidates {
		offers = append(offers, c.Offer)
	}
	return offers, total, nil
}

// Stats returns the registry's index statistics.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	total, err := s.index.Count(ctx, search.Filter{})
	if err != nil {
		return Stats{}, fmt.Errorf("count offers: %w", err)
	}
	return Stats{
		TotalOffers:     total,
		CollectionName:  s.index.Collection(),
		VectorDimension: s.index.VectorDim(),
		DistanceMetric:  s.index.Distance(),
	}, nil
}
