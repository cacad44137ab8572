// Package query holds the validated, normalized search request.
package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/vendora-cloud/semsearch/internal/domain"
	"github.com/vendora-cloud/semsearch/internal/domain/search/filter"
	"github.com/vendora-cloud/semsearch/internal/domain/search/measure"
)

// Search parameter limits.
const (
	MaxQueryLength = 2048
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Options are the per-request search knobs after normalization.
type Options struct {
	Limit              int
	Offset             int
	Threshold          float64
	Measure            measure.Measure
	IncludeTextSearch  bool
	IncludeExplanation bool
	Diversify          bool
}

// Query is a validated search request. Constructed once per request and
// immutable afterwards.
type Query struct {
	text       string
	normalized string
	filters    filter.FilterSet
	options    Options
}

// New validates and normalizes a search request.
// Defaults: limit=20, measure=cosine, text search enabled. Limit and offset
// are clamped into range rather than silently dropped; explicitly
// out-of-range caller values are rejected at the transport boundary.
func New(text string, filters filter.FilterSet, opts Options) (Query, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Query{}, domain.NewValidationError("query", "query cannot be empty")
	}
	if len(trimmed) > MaxQueryLength {
		return Query{}, domain.NewValidationError("query",
			fmt.Sprintf("query too long (max %d chars)", MaxQueryLength))
	}

	if err := filters.Validate(); err != nil {
		return Query{}, err
	}

	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.Measure == "" {
		opts.Measure = measure.Cosine
	}
	if !opts.Measure.IsValid() {
		return Query{}, domain.NewValidationError("options.distanceMeasure",
			fmt.Sprintf("distanceMeasure must be one of cosine, euclidean, dot, got %q", opts.Measure))
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return Query{}, domain.NewValidationError("options.threshold",
			"threshold must be between 0 and 1")
	}

	return Query{
		text:       trimmed,
		normalized: strings.ToLower(trimmed),
		filters:    filters.Canonical(),
		options:    opts,
	}, nil
}

// Text returns the trimmed query text.
func (q *Query) Text() string { return q.text }

// Normalized returns the trimmed, lowercased query text.
func (q *Query) Normalized() string { return q.normalized }

// Filters returns the canonical filter set.
func (q *Query) Filters() filter.FilterSet { return q.filters }

// Options returns the normalized options.
func (q *Query) Options() Options { return q.options }

// CacheKey computes the deterministic response cache key. Two requests that
// differ only in text case, surrounding whitespace or filter ordering map
// to the same key.
func (q *Query) CacheKey() string {
	o := q.options
	payload := strings.Join([]string{
		q.normalized,
		q.filters.String(),
		fmt.Sprintf("limit=%d|offset=%d|threshold=%g|measure=%s|text=%t|explain=%t|diversify=%t",
			o.Limit, o.Offset, o.Threshold, o.Measure,
			o.IncludeTextSearch, o.IncludeExplanation, o.Diversify),
	}, "\x1f")
	h := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(h[:])
}
