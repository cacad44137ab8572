// Package embedding holds the embedder decorators composed in main.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/vendora-cloud/semsearch/internal/domain"
)

// RetryConfig bounds the retry behavior.
type RetryConfig struct {
	// MaxRetries counts retries after the first attempt.
	MaxRetries      int
	InitialInterval time.Duration
}

// RetryingEmbedder retries transient provider failures with jittered
// exponential backoff. The budget is deliberately small: a search request
// waiting on embeddings has a keyword fallback, not patience.
type RetryingEmbedder struct {
	inner  domain.Embedder
	cfg    RetryConfig
	logger *zap.Logger
}

// NewRetryingEmbedder creates a retry decorator.
func NewRetryingEmbedder(inner domain.Embedder, cfg RetryConfig, logger *zap.Logger) *RetryingEmbedder {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	return &RetryingEmbedder{inner: inner, cfg: cfg, logger: logger}
}

// Embed delegates to the inner embedder, retrying failures until the retry
// budget or the context runs out.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var result domain.EmbeddingResult

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.InitialInterval
	bo.RandomizationFactor = 0.5

	attempt := 0
	operation := func() error {
		attempt++
		res, err := r.inner.Embed(ctx, text)
		if err != nil {
			r.logger.Warn("embedding attempt failed",
				zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		result = res
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(r.cfg.MaxRetries)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed after %d attempts: %w", attempt, err)
	}
	return result, nil
}
