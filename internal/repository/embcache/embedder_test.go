package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vendora-cloud/semsearch/internal/db"
	"github.com/vendora-cloud/semsearch/internal/domain"
)

type fakeKV struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) SetEx(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.lastTTL = ttl
	return nil
}

type countingEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	c.calls++
	if c.err != nil {
		return domain.EmbeddingResult{}, c.err
	}
	return domain.EmbeddingResult{Embedding: c.vec, Model: "m", TotalTokens: 7}, nil
}

func TestCachedEmbedderMissThenHit(t *testing.T) {
	kv := newFakeKV()
	inner := &countingEmbedder{vec: []float32{0.25, -1.5, 3}}
	c := New(inner, kv, time.Hour, nil, zap.NewNop())

	first, err := c.Embed(context.Background(), "invoice ocr")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
	if kv.lastTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", kv.lastTTL)
	}

	second, err := c.Embed(context.Background(), "invoice ocr")
	if err != nil {
		t.Fatalf("Embed (cached): %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("cache hit still called provider, calls = %d", inner.calls)
	}
	if len(second.Embedding) != len(first.Embedding) {
		t.Fatalf("cached vector length differs")
	}
	for i := range first.Embedding {
		if first.Embedding[i] != second.Embedding[i] {
			t.Errorf("component %d: %v != %v", i, first.Embedding[i], second.Embedding[i])
		}
	}
	// A hit reports no fresh token usage.
	if second.TotalTokens != 0 {
		t.Errorf("cached result reports token usage: %d", second.TotalTokens)
	}
}

func TestCachedEmbedderDifferentTextsDifferentKeys(t *testing.T) {
	kv := newFakeKV()
	inner := &countingEmbedder{vec: []float32{1}}
	c := New(inner, kv, time.Hour, nil, zap.NewNop())

	_, _ = c.Embed(context.Background(), "alpha")
	_, _ = c.Embed(context.Background(), "beta")
	if inner.calls != 2 {
		t.Errorf("distinct texts shared a cache entry, calls = %d", inner.calls)
	}
}

func TestCachedEmbedderStoreErrorsAreNonFatal(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("redis down")
	kv.setErr = errors.New("redis down")
	inner := &countingEmbedder{vec: []float32{1}}
	c := New(inner, kv, time.Hour, nil, zap.NewNop())

	res, err := c.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("cache errors must not fail embedding: %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("result lost: %+v", res)
	}
}

func TestCachedEmbedderPropagatesProviderError(t *testing.T) {
	kv := newFakeKV()
	providerErr := errors.New("quota exceeded")
	inner := &countingEmbedder{err: providerErr}
	c := New(inner, kv, time.Hour, nil, zap.NewNop())

	_, err := c.Embed(context.Background(), "x")
	if !errors.Is(err, providerErr) {
		t.Errorf("error = %v, want provider error", err)
	}
	if len(kv.data) != 0 {
		t.Error("failed embedding was cached")
	}
}

func TestVectorRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 1e-7}
	out, err := bytesToVector(vectorToCacheBytes(in))
	if err != nil {
		t.Fatalf("bytesToVector: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("component %d: %v != %v", i, in[i], out[i])
		}
	}

	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Error("truncated payload accepted")
	}
}
