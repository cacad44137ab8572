package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/vendora-cloud/semsearch/internal/domain"
)

// BreakerEmbedder wraps the embedder in a circuit breaker. When the
// provider is down, an open breaker turns every search into an immediate
// keyword-only fallback instead of a per-request timeout wait.
type BreakerEmbedder struct {
	inner   domain.Embedder
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerEmbedder creates the circuit breaker decorator.
func NewBreakerEmbedder(inner domain.Embedder, logger *zap.Logger) *BreakerEmbedder {
	settings := gobreaker.Settings{
		Name:        "embedding-provider",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedding breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerEmbedder{inner: inner, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Embed delegates through the breaker. An open breaker surfaces as
// ErrEmbeddingUnavailable like any other provider failure.
func (b *BreakerEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	out, err := b.breaker.Execute(func() (any, error) {
		return b.inner.Embed(ctx, text)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return domain.EmbeddingResult{}, fmt.Errorf("breaker open: %w", domain.ErrEmbeddingUnavailable)
		}
		return domain.EmbeddingResult{}, err
	}

	res, ok := out.(domain.EmbeddingResult)
	if !ok {
		return domain.EmbeddingResult{}, fmt.Errorf("unexpected breaker result type %T", out)
	}
	return res, nil
}
