package search

import (
	"context"

	"github.com/vendora-cloud/semsearch/internal/domain"
	"github.com/vendora-cloud/semsearch/internal/domain/search/filter"
	"github.com/vendora-cloud/semsearch/internal/domain/search/measure"
	"github.com/vendora-cloud/semsearch/internal/domain/search/result"
)

// Repository defines the retrieval contract for both search paths.
type Repository interface {
	SearchVector(
		ctx context.Context, vector []float32, filters filter.FilterSet,
		m measure.Measure, topK int,
	) ([]result.Candidate, error)

	SearchKeyword(
		ctx context.Context, terms string, filters filter.FilterSet, topK int,
	) ([]result.Candidate, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
