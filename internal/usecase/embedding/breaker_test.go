package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/vendora-cloud/semsearch/internal/domain"
)

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := &flakyEmbedder{}
	b := NewBreakerEmbedder(inner, zap.NewNop())

	res, err := b.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("result lost through breaker: %+v", res)
	}
}

func TestBreakerPassesThroughFailures(t *testing.T) {
	innerErr := errors.New("provider error")
	inner := &flakyEmbedder{failures: 100, err: innerErr}
	b := NewBreakerEmbedder(inner, zap.NewNop())

	_, err := b.Embed(context.Background(), "x")
	if !errors.Is(err, innerErr) {
		t.Errorf("error = %v, want inner error while breaker closed", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyEmbedder{failures: 1000, err: errors.New("down")}
	b := NewBreakerEmbedder(inner, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, _ = b.Embed(context.Background(), "x")
	}
	callsWhenOpened := inner.calls

	_, err := b.Embed(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("open breaker error = %v, want ErrEmbeddingUnavailable", err)
	}
	if inner.calls != callsWhenOpened {
		t.Errorf("open breaker still called the provider (%d -> %d)", callsWhenOpened, inner.calls)
	}
}
