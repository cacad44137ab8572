package health

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Check statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckResult is one dependency's verdict.
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Detail    string `json:"detail,omitempty"`
}

// Report is the aggregated health of the service. Healthy means it can
// serve search traffic: the embedding provider is not load bearing, since
// keyword retrieval still works without it, so an embedding-only failure
// leaves Healthy true with a degraded status.
type Report struct {
	Healthy bool                   `json:"healthy"`
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Checks  map[string]CheckResult `json:"services"`
}

// Service probes the store and the embedding provider.
type Service struct {
	store     StoreProber
	embedding EmbeddingProber
	indexName string
	version   string
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates the health service.
func New(
	store StoreProber, embedding EmbeddingProber,
	indexName, version string, logger *zap.Logger,
) *Service {
	return &Service{
		store:     store,
		embedding: embedding,
		indexName: indexName,
		version:   version,
		timeout:   5 * time.Second,
		logger:    logger,
	}
}

// Check runs all probes and aggregates the verdict.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report := Report{
		Status:  StatusHealthy,
		Version: s.version,
		Checks:  make(map[string]CheckResult, 3),
	}

	report.Checks["textStore"] = s.checkPing(ctx)
	report.Checks["vectorSearch"] = s.checkIndex(ctx)
	report.Checks["embedding"] = s.checkEmbedding(ctx)

	if report.Checks["textStore"].Status == StatusUnhealthy ||
		report.Checks["vectorSearch"].Status == StatusUnhealthy {
		report.Status = StatusUnhealthy
	} else if report.Checks["embedding"].Status == StatusUnhealthy {
		report.Status = StatusDegraded
	}
	report.Healthy = report.Status != StatusUnhealthy

	if report.Status != StatusHealthy {
		s.logger.Warn("health check not clean", zap.String("status", report.Status))
	}
	return report
}

func (s *Service) checkPing(ctx context.Context) CheckResult {
	start := time.Now()
	if err := s.store.Ping(ctx); err != nil {
		return CheckResult{
			Status:    StatusUnhealthy,
			LatencyMS: time.Since(start).Milliseconds(),
			Detail:    err.Error(),
		}
	}
	return CheckResult{Status: StatusHealthy, LatencyMS: time.Since(start).Milliseconds()}
}

func (s *Service) checkIndex(ctx context.Context) CheckResult {
	start := time.Now()
	exists, err := s.store.IndexExists(ctx, s.indexName)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, LatencyMS: latency, Detail: err.Error()}
	}
	if !exists {
		return CheckResult{Status: StatusUnhealthy, LatencyMS: latency, Detail: "search index missing"}
	}
	return CheckResult{Status: StatusHealthy, LatencyMS: latency}
}

func (s *Service) checkEmbedding(ctx context.Context) CheckResult {
	h := s.embedding.HealthCheck(ctx)
	if !h.Healthy {
		return CheckResult{Status: StatusUnhealthy, LatencyMS: h.LatencyMS, Detail: h.Detail}
	}
	return CheckResult{Status: StatusHealthy, LatencyMS: h.LatencyMS}
}
