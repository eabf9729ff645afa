package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/chiefastro/gor/internal/config"
	"github.com/chiefastro/gor/internal/db"
	dbRedis "github.com/chiefastro/gor/internal/db/redis"
	"github.com/chiefastro/gor/internal/domain"
	logpkg "github.com/chiefastro/gor/internal/logger"
	"github.com/chiefastro/gor/internal/metrics"
	"github.com/chiefastro/gor/internal/repository/embcache"
	"github.com/chiefastro/gor/internal/repository/offerindex"
	chiTransport "github.com/chiefastro/gor/internal/transport/chi"
	"github.com/chiefastro/gor/internal/transport/feed"
	openaiEmb "github.com/chiefastro/gor/internal/transport/openai"
	embeddinguc "github.com/chiefastro/gor/internal/usecase/embedding"
	healthuc "github.com/chiefastro/gor/internal/usecase/health"
	rankuc "github.com/chiefastro/gor/internal/usecase/rank"
	registryuc "github.com/chiefastro/gor/internal/usecase/registry"
	"github.com/chiefastro/gor/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gor API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register embedding/ingestion metrics explicitly (no init())
	metrics.Register()

	embedder := buildEmbedder(cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("offline", cfg.Embedding.APIKey == ""),
	)

	// Index repository over the shared collection
	idx := offerindex.New(store, offerindex.Config{
		Collection: cfg.Index.Collection,
		VectorDim:  cfg.Embedding.Dimensions,
		Distance:   db.DistanceCosine,
		HNSW: offerindex.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		},
	})
	if err := idx.EnsureCollection(ctx); err != nil {
		logger.Fatal("Failed to ensure collection", zap.Error(err))
	}

	// Use case services
	registrySvc := registryuc.New(idx, embedder, logger).
		WithConcurrency(cfg.Ingest.Concurrency)
	rankSvc := rankuc.New(idx, embedder, cfg.Search.ScoreThreshold, logger).
		WithMaxCandidates(cfg.Search.MaxCandidates)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder))

	// Ingestion source
	source := feed.NewClient(&feed.Config{
		DirectoryURL:      cfg.Ingest.DirectoryURL,
		RequestTimeout:    time.Duration(cfg.Ingest.RequestTimeoutSec) * time.Second,
		RequestsPerSecond: cfg.Ingest.RequestsPerSecond,
		Logger:            logger,
	})

	server := chiTransport.NewServer(registrySvc, rankSvc, healthSvc, source, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Fallback.
// Without an API key the deterministic offline embedder runs alone.
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) domain.Embedder {
	offline := embeddinguc.NewDeterministic(cfg.Embedding.Dimensions)

	if cfg.Embedding.APIKey == "" {
		logger.Warn("No embedding API key configured, using deterministic offline embedder")
		return offline
	}

	var real domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	if cfg.Embedding.CacheTTLSec > 0 {
		ttl := time.Duration(cfg.Embedding.CacheTTLSec) * time.Second
		real = embcache.New(real, store, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewFallback(real, offline, logger)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.ProviderChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
