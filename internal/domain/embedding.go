package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingHealth reports the outcome of an embedding provider round-trip.
type EmbeddingHealth struct {
	Healthy    bool
	LatencyMS  int64
	Dimensions int
	Detail     string
}

// EmbeddingHealthChecker verifies embedding provider availability.
type EmbeddingHealthChecker interface {
	HealthCheck(ctx context.Context) EmbeddingHealth
}

// EmbeddingResult carries the query vector and token usage through the
// embedder decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	Model        string
	PromptTokens int
	TotalTokens  int
}
