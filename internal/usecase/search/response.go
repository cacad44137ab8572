package search

import (
	"github.com/vendora-cloud/semsearch/internal/domain/search/intent"
	"github.com/vendora-cloud/semsearch/internal/domain/search/result"
)

// Cache status values reported in performance metadata.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Search modes reported in query metadata. ModeNone labels requests where
// no retrieval path succeeded; it never appears in a served response.
const (
	ModeHybrid      = "hybrid"
	ModeVectorOnly  = "vector_only"
	ModeKeywordOnly = "keyword_only"
	ModeNone        = "none"
)

// QueryMetadata describes how a request was interpreted and served.
type QueryMetadata struct {
	OriginalQuery   string
	NormalizedQuery string
	Intent          intent.Intent
	Mode            string
	// Degraded is set when a retrieval path failed and the response was
	// assembled from the surviving one.
	Degraded       bool
	DegradedReason string
	FiltersApplied bool
}

// Performance carries per-stage timings and the cache outcome.
type Performance struct {
	TotalMS       int64
	EmbeddingMS   int64
	VectorMS      int64
	KeywordMS     int64
	FusionMS      int64
	CacheStatus   string
	CandidateHits int
}

// Response is the pipeline outcome. Instances are immutable once built;
// the cache hands the same instance to concurrent readers.
type Response struct {
	Results     []result.Ranked
	TotalCount  int
	Query       QueryMetadata
	Performance Performance
}

// withCacheStatus returns a shallow copy carrying the given cache status,
// leaving the stored entry untouched.
func (r *Response) withCacheStatus(status string, totalMS int64) *Response {
	cp := *r
	cp.Performance.CacheStatus = status
	cp.Performance.TotalMS = totalMS
	return &cp
}
