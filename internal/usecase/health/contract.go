// Package health aggregates dependency probes into one service verdict.
package health

import (
	"context"

	"github.com/vendora-cloud/semsearch/internal/domain"
)

// StoreProber exposes the two store probes health needs.
type StoreProber interface {
	Ping(ctx context.Context) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// EmbeddingProber reports the embedding provider's health.
type EmbeddingProber interface {
	HealthCheck(ctx context.Context) domain.EmbeddingHealth
}
