// Package search runs the retrieval pipeline: cache lookup, intent
// classification, concurrent embedding and keyword retrieval, filtered
// vector search, weighted fusion and response caching.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vendora-cloud/semsearch/internal/domain"
	"github.com/vendora-cloud/semsearch/internal/domain/search/intent"
	"github.com/vendora-cloud/semsearch/internal/domain/search/query"
	"github.com/vendora-cloud/semsearch/internal/domain/search/result"
	"github.com/vendora-cloud/semsearch/internal/metrics"
)

// Config tunes the pipeline.
type Config struct {
	// TopK is the candidate pool fetched from each path before fusion.
	TopK         int
	EmbedTimeout time.Duration
	StoreTimeout time.Duration
	ResponseTTL  time.Duration
	CacheEntries int
}

// Service orchestrates one search request end to end. It is stateless
// apart from the shared response cache.
type Service struct {
	repo   Repository
	embed  Embedder
	cache  *responseCache
	cfg    Config
	logger *zap.Logger
}

// New creates the search service.
func New(repo Repository, embed Embedder, cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.TopK <= 0 {
		cfg.TopK = 50
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 3 * time.Second
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 2 * time.Second
	}
	if cfg.ResponseTTL <= 0 {
		cfg.ResponseTTL = 5 * time.Minute
	}
	if cfg.CacheEntries <= 0 {
		cfg.CacheEntries = 10000
	}

	cache, err := newResponseCache(cfg.CacheEntries, cfg.ResponseTTL)
	if err != nil {
		return nil, err
	}

	return &Service{repo: repo, embed: embed, cache: cache, cfg: cfg, logger: logger}, nil
}

// Close releases the response cache.
func (s *Service) Close() {
	s.cache.close()
}

// pathOutcome collects one retrieval path's results and timing.
type pathOutcome struct {
	candidates []result.Candidate
	err        error
	elapsed    time.Duration
	ran        bool
}

// Execute runs the pipeline for a validated query.
func (s *Service) Execute(ctx context.Context, q *query.Query) (*Response, error) {
	start := time.Now()
	key := q.CacheKey()

	if cached, ok := s.cache.get(key); ok {
		metrics.ResponseCacheTotal.WithLabelValues(CacheHit).Inc()
		return cached.withCacheStatus(CacheHit, time.Since(start).Milliseconds()), nil
	}
	metrics.ResponseCacheTotal.WithLabelValues(CacheMiss).Inc()

	it := intent.Classify(q.Text())
	opts := q.Options()
	filters := q.Filters()

	// Embedding and keyword retrieval are independent network calls; run
	// them concurrently and join before fusion. Neither cancels the other:
	// a failed path degrades, it does not abort the request.
	var embRes domain.EmbeddingResult
	var embErr error
	var embElapsed time.Duration
	var keyword pathOutcome

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		embStart := time.Now()
		ectx, cancel := context.WithTimeout(gctx, s.cfg.EmbedTimeout)
		defer cancel()
		embRes, embErr = s.embed.Embed(ectx, q.Text())
		embElapsed = time.Since(embStart)
		return nil
	})

	if opts.IncludeTextSearch {
		g.Go(func() error {
			keyword = s.runKeyword(gctx, q)
			return nil
		})
	}

	_ = g.Wait()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("search aborted: %w", ctx.Err())
	}

	// Vector search needs the embedding, so it runs after the join.
	var vector pathOutcome
	if embErr == nil {
		vStart := time.Now()
		vctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		vector.candidates, vector.err = s.repo.SearchVector(
			vctx, embRes.Embedding, filters, opts.Measure, s.cfg.TopK)
		cancel()
		vector.elapsed = time.Since(vStart)
		vector.ran = true
	} else {
		s.logger.Warn("embedding unavailable, degrading to keyword-only",
			zap.Error(embErr))
		metrics.SearchDegradedTotal.Inc()
	}

	// Keyword-only fallback when embeddings are down and the caller did
	// not request the text path.
	if embErr != nil && !keyword.ran {
		keyword = s.runKeyword(ctx, q)
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("search aborted: %w", ctx.Err())
	}

	vectorOK := vector.ran && vector.err == nil
	keywordOK := keyword.ran && keyword.err == nil

	if !vectorOK && !keywordOK {
		metrics.SearchRequestsTotal.WithLabelValues(modeOf(vectorOK, keywordOK), "error").Inc()
		if vector.err != nil {
			return nil, fmt.Errorf("no search path succeeded: %w", vector.err)
		}
		if keyword.err != nil {
			return nil, fmt.Errorf("no search path succeeded: %w", keyword.err)
		}
		return nil, fmt.Errorf("no search path succeeded: %w", domain.ErrStoreUnavailable)
	}

	fusionStart := time.Now()
	var vCands, kCands []result.Candidate
	if vectorOK {
		vCands = vector.candidates
	}
	if keywordOK {
		kCands = keyword.candidates
	}
	ranked, total := fuse(fuseInput{
		vector:    vCands,
		keyword:   kCands,
		intent:    it,
		filters:   filters,
		options:   opts,
		vectorRan: vectorOK,
	})
	fusionElapsed := time.Since(fusionStart)

	degraded, reason := degradation(embErr, &vector, &keyword, opts.IncludeTextSearch)

	resp := &Response{
		Results:    ranked,
		TotalCount: total,
		Query: QueryMetadata{
			OriginalQuery:   q.Text(),
			NormalizedQuery: q.Normalized(),
			Intent:          it,
			Mode:            modeOf(vectorOK, keywordOK),
			Degraded:        degraded,
			DegradedReason:  reason,
			FiltersApplied:  !filters.IsEmpty(),
		},
		Performance: Performance{
			TotalMS:       time.Since(start).Milliseconds(),
			EmbeddingMS:   embElapsed.Milliseconds(),
			VectorMS:      vector.elapsed.Milliseconds(),
			KeywordMS:     keyword.elapsed.Milliseconds(),
			FusionMS:      fusionElapsed.Milliseconds(),
			CacheStatus:   CacheMiss,
			CandidateHits: len(vCands) + len(kCands),
		},
	}

	observeStages(resp)
	metrics.SearchRequestsTotal.WithLabelValues(resp.Query.Mode, "success").Inc()

	// A cancelled request must not populate the cache with whatever it
	// managed to compute.
	if ctx.Err() == nil {
		s.cache.set(key, resp)
	}

	return resp, nil
}

func (s *Service) runKeyword(ctx context.Context, q *query.Query) pathOutcome {
	var out pathOutcome
	out.ran = true
	kwStart := time.Now()
	kctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	out.candidates, out.err = s.repo.SearchKeyword(
		kctx, q.Normalized(), q.Filters(), s.cfg.TopK)
	out.elapsed = time.Since(kwStart)
	if out.err != nil {
		s.logger.Warn("keyword search failed", zap.Error(out.err))
	}
	return out
}

func modeOf(vectorOK, keywordOK bool) string {
	switch {
	case vectorOK && keywordOK:
		return ModeHybrid
	case vectorOK:
		return ModeVectorOnly
	case keywordOK:
		return ModeKeywordOnly
	default:
		return ModeNone
	}
}

func degradation(embErr error, vector, keyword *pathOutcome, textRequested bool) (bool, string) {
	switch {
	case embErr != nil:
		return true, "embedding unavailable, keyword-only results"
	case vector.ran && vector.err != nil:
		return true, "vector search failed, keyword-only results"
	case textRequested && keyword.ran && keyword.err != nil:
		return true, "keyword search failed, vector-only results"
	default:
		return false, ""
	}
}

func observeStages(resp *Response) {
	obs := func(stage string, ms int64) {
		metrics.SearchStageDuration.WithLabelValues(stage).Observe(float64(ms) / 1000)
	}
	obs("embedding", resp.Performance.EmbeddingMS)
	obs("vector", resp.Performance.VectorMS)
	obs("keyword", resp.Performance.KeywordMS)
	obs("fusion", resp.Performance.FusionMS)
	obs("total", resp.Performance.TotalMS)
}
