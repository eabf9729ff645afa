// Package chi exposes the discovery API over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chiefastro/gor/internal/domain"
	"github.com/chiefastro/gor/internal/domain/offer"
	"github.com/chiefastro/gor/internal/domain/search"
	logpkg "github.com/chiefastro/gor/internal/logger"
	healthuc "github.com/chiefastro/gor/internal/usecase/health"
	"github.com/chiefastro/gor/internal/usecase/rank"
	registryuc "github.com/chiefastro/gor/internal/usecase/registry"
)

// Error codes returned in the body of non-2xx responses.
const (
	codeBadRequest         = "bad_request"
	codeOfferNotFound      = "offer_not_found"
	codeEmbeddingProvider  = "embedding_provider_error"
	codeBackendUnavailable = "backend_unavailable"
	codeInternalError      = "internal_error"
)

// offerRegistry is the registry surface the HTTP layer consumes.
type offerRegistry interface {
	GetByID(ctx context.Context, merchantID, offerID string) (*offer.Offer, error)
	GetByMerchant(ctx context.Context, merchantID string, offset, limit int) ([]*offer.Offer, int, error)
	Stats(ctx context.Context) (registryuc.Stats, error)
	IngestAll(ctx context.Context, src registryuc.Source) (registryuc.IngestReport, error)
}

// offerRanker runs ranked discovery queries.
type offerRanker interface {
	Search(ctx context.Context, p search.Params) (search.Results, error)
}

// healthChecker reports component health.
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the discovery HTTP API.
type Server struct {
	registry      offerRegistry
	ranker        offerRanker
	health        healthChecker
	source        registryuc.Source
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. source feeds POST /ingest.
func NewServer(
	registry offerRegistry,
	ranker offerRanker,
	health healthChecker,
	source registryuc.Source,
	logger *zap.Logger,
) *Server {
	s := &Server{
		registry: registry,
		ranker:   ranker,
		health:   health,
		source:   source,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeOfferNotFound),
		sentinelHandler(domain.ErrMalformedInput, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusInternalServerError, codeBackendUnavailable),
	}
	return s
}

// Routes mounts all API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/offers", s.SearchOffers)
	r.Get("/offers/{offer_id}", s.GetOffer)
	r.Get("/merchants/{merchant_id}/offers", s.GetMerchantOffers)
	r.Get("/stats", s.GetStats)
	r.Post("/ingest", s.Ingest)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type searchMetadata struct {
	SearchTimeMs  float64 `json:"search_time_ms"`
	RankingMethod string  `json:"ranking_method"`
}

type searchResponse struct {
	Success  bool           `json:"success"`
	Query    search.Params  `json:"query"`
	Results  search.Results `json:"results"`
	Metadata searchMetadata `json:"metadata"`
}

// SearchOffers handles GET /offers.
func (s *Server) SearchOffers(w http.ResponseWriter, r *http.Request) {
	p, err := parseSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	start := time.Now()
	results, err := s.ranker.Search(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Success: true,
		Query:   p,
		Results: results,
		Metadata: searchMetadata{
			SearchTimeMs:  float64(time.Since(start).Microseconds()) / 1000.0,
			RankingMethod: rank.Method,
		},
	})
}

// GetOffer handles GET /offers/{offer_id}. An optional merchant_id query
// parameter enables the exact point lookup path.
func (s *Server) GetOffer(w http.ResponseWriter, r *http.Request) {
	offerID := chi.URLParam(r, "offer_id")
	merchantID := r.URL.Query().Get("merchant_id")

	o, err := s.registry.GetByID(r.Context(), merchantID, offerID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"offer":   o,
	})
}

// GetMerchantOffers handles GET /merchants/{merchant_id}/offers.
func (s *Server) GetMerchantOffers(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchant_id")

	offset, err := parseIntParam(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	limit, err := parseIntParam(r, "limit", search.DefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	offers, total, err := s.registry.GetByMerchant(r.Context(), merchantID, offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"merchant_id": merchantID,
		"offers":      offers,
		"total":       total,
	})
}

// GetStats handles GET /stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.registry.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

// Ingest handles POST /ingest. Runs a full ingestion pass synchronously.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	report, err := s.registry.IngestAll(r.Context(), s.source)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// The request-scoped logger ties the run id to the request id.
	logpkg.FromContext(r.Context()).Info("ingestion run completed",
		zap.String("run_id", report.RunID),
		zap.Int("total_seen", report.TotalSeen),
		zap.Int("total_indexed", report.TotalIndexed))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Ingestion completed",
		"result":  report,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// parseSearchParams extracts and validates /offers query parameters.
func parseSearchParams(r *http.Request) (search.Params, error) {
	q := r.URL.Query()

	lat, err := parseFloatParam(r, "lat")
	if err != nil {
		return search.Params{}, err
	}
	lng, err := parseFloatParam(r, "lng")
	if err != nil {
		return search.Params{}, err
	}
	radiusM, err := parseIntParam(r, "radius_m", 0)
	if err != nil {
		return search.Params{}, err
	}
	limit, err := parseIntParam(r, "limit", 0)
	if err != nil {
		return search.Params{}, err
	}
	offset, err := parseIntParam(r, "offset", 0)
	if err != nil {
		return search.Params{}, err
	}

	var labels []string
	if raw := q.Get("labels"); raw != "" {
		labels = strings.Split(raw, ",")
	}

	return search.NewParams(
		q.Get("query"), lat, lng, radiusM,
		labels, q.Get("merchant_id"), limit, offset,
	)
}

func parseFloatParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(name + " must be a number")
	}
	return &v, nil
}

func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrMalformedInput,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrBackendUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
