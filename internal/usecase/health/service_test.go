package health

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/vendora-cloud/semsearch/internal/domain"
)

type fakeStore struct {
	pingErr     error
	indexExists bool
	indexErr    error
}

func (f *fakeStore) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return f.indexExists, f.indexErr
}

type fakeEmbedding struct {
	health domain.EmbeddingHealth
}

func (f *fakeEmbedding) HealthCheck(_ context.Context) domain.EmbeddingHealth {
	return f.health
}

func newService(store *fakeStore, emb *fakeEmbedding) *Service {
	return New(store, emb, "idx", "test", zap.NewNop())
}

func TestCheckAllHealthy(t *testing.T) {
	svc := newService(
		&fakeStore{indexExists: true},
		&fakeEmbedding{health: domain.EmbeddingHealth{Healthy: true, Dimensions: 1536}},
	)

	report := svc.Check(context.Background())
	if report.Status != StatusHealthy {
		t.Errorf("status = %s, want healthy", report.Status)
	}
	if !report.Healthy {
		t.Error("Healthy = false")
	}
	if len(report.Checks) != 3 {
		t.Errorf("checks = %d, want 3", len(report.Checks))
	}
}

func TestCheckStoreDownIsUnhealthy(t *testing.T) {
	svc := newService(
		&fakeStore{pingErr: errors.New("refused"), indexExists: true},
		&fakeEmbedding{health: domain.EmbeddingHealth{Healthy: true}},
	)

	report := svc.Check(context.Background())
	if report.Status != StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", report.Status)
	}
	if report.Healthy {
		t.Error("Healthy = true with the store down")
	}
}

func TestCheckMissingIndexIsUnhealthy(t *testing.T) {
	svc := newService(
		&fakeStore{indexExists: false},
		&fakeEmbedding{health: domain.EmbeddingHealth{Healthy: true}},
	)

	report := svc.Check(context.Background())
	if report.Status != StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", report.Status)
	}
	if report.Checks["vectorSearch"].Detail == "" {
		t.Error("missing index carries no detail")
	}
}

func TestCheckEmbeddingDownOnlyDegrades(t *testing.T) {
	svc := newService(
		&fakeStore{indexExists: true},
		&fakeEmbedding{health: domain.EmbeddingHealth{Healthy: false, Detail: "401"}},
	)

	report := svc.Check(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("status = %s, want degraded", report.Status)
	}
	// Keyword search still works, so the service stays serviceable.
	if !report.Healthy {
		t.Error("embedding-only failure must not take the service down")
	}
}
