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

	"github.com/vendora-cloud/semsearch/internal/config"
	dbRedis "github.com/vendora-cloud/semsearch/internal/db/redis"
	"github.com/vendora-cloud/semsearch/internal/domain"
	"github.com/vendora-cloud/semsearch/internal/domain/search/measure"
	logpkg "github.com/vendora-cloud/semsearch/internal/logger"
	"github.com/vendora-cloud/semsearch/internal/metrics"
	"github.com/vendora-cloud/semsearch/internal/repository/catalog"
	"github.com/vendora-cloud/semsearch/internal/repository/embcache"
	chiTransport "github.com/vendora-cloud/semsearch/internal/transport/chi"
	openaiEmb "github.com/vendora-cloud/semsearch/internal/transport/openai"
	embeddinguc "github.com/vendora-cloud/semsearch/internal/usecase/embedding"
	healthuc "github.com/vendora-cloud/semsearch/internal/usecase/health"
	searchuc "github.com/vendora-cloud/semsearch/internal/usecase/search"
	"github.com/vendora-cloud/semsearch/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting semsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create catalog store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Catalog store not ready", zap.Error(err))
	}
	logger.Info("Connected to catalog store")

	metrics.RegisterSearchMetrics()

	// The catalog pipeline owns the listing hashes; we only guarantee the
	// search index over them exists.
	m := measure.Measure(cfg.Search.DistanceMetric)
	indexDef := catalog.ListingIndex(
		cfg.Search.IndexName, cfg.Search.KeyPrefix,
		cfg.Embedding.Dimensions, m,
		catalog.HNSWConfig{M: cfg.Search.HNSWM, EFConstruct: cfg.Search.HNSWEFConstruct},
	)
	if err := store.EnsureIndex(ctx, indexDef); err != nil {
		logger.Fatal("Failed to ensure listing index", zap.Error(err))
	}
	logger.Info("Listing index ready", zap.String("index", cfg.Search.IndexName))

	embedder, baseEmbedder := buildEmbedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	repo := catalog.New(store, cfg.Search.IndexName, cfg.Search.KeyPrefix)

	searchSvc, err := searchuc.New(repo, embedder, searchuc.Config{
		TopK:         cfg.Search.TopK,
		EmbedTimeout: time.Duration(cfg.Embedding.TimeoutMS) * time.Millisecond,
		StoreTimeout: time.Duration(cfg.Search.StoreTimeoutMS) * time.Millisecond,
		ResponseTTL:  time.Duration(cfg.Search.ResponseTTLSec) * time.Second,
		CacheEntries: cfg.Search.ResponseCacheSize,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create search service", zap.Error(err))
	}
	defer searchSvc.Close()

	healthSvc := healthuc.New(store, baseEmbedder, cfg.Search.IndexName, version.Version, logger)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiTransport.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Use(chiMiddleware.Timeout(time.Duration(cfg.Search.RequestTimeoutMS) * time.Millisecond))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain:
// OpenAI -> Cached -> Retrying -> Breaker. The breaker sits outermost so a
// tripped circuit skips both retries and cache writes. The base embedder is
// returned separately for health probing: probes must not trip the breaker
// or poison the cache.
func buildEmbedder(
	cfg config.EmbeddingConfig,
	store interface {
		Get(ctx context.Context, key string) ([]byte, error)
		SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error
	},
	logger *zap.Logger,
) (domain.Embedder, *openaiEmb.Embedder) {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	embedder = embcache.New(embedder, store,
		time.Duration(cfg.CacheTTLSec)*time.Second, metrics.EmbeddingCacheTotal, logger)
	embedder = embeddinguc.NewRetryingEmbedder(embedder, embeddinguc.RetryConfig{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: time.Duration(cfg.RetryInitialMS) * time.Millisecond,
	}, logger)
	embedder = embeddinguc.NewBreakerEmbedder(embedder, logger)

	return embedder, base
}

// jsonRecoverer returns JSON instead of a plain text stacktrace on panic.
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
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error": map[string]string{
							"code":    "INTERNAL_ERROR",
							"message": "internal error",
						},
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiTransport.RequestIDFromContext(r.Context())
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
