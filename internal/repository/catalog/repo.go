// Package catalog adapts the store's raw search primitives to the listing
// domain: filter translation, result parsing and score normalization.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vendora-cloud/semsearch/internal/db"
	"github.com/vendora-cloud/semsearch/internal/domain"
	"github.com/vendora-cloud/semsearch/internal/domain/search/filter"
	"github.com/vendora-cloud/semsearch/internal/domain/search/measure"
	"github.com/vendora-cloud/semsearch/internal/domain/search/result"
)

// Listing hash field names, shared with the index schema.
const (
	fieldName         = "name"
	fieldDescription  = "description"
	fieldCategory     = "category"
	fieldIndustries   = "industries"
	fieldProviderID   = "provider_id"
	fieldProviderName = "provider_name"
	fieldProviderType = "provider_type"
	fieldPrice        = "price"
	fieldRating       = "rating"
	fieldReviewCount  = "review_count"
	fieldPopularity   = "popularity"
	fieldLocation     = "location"
	fieldTechnologies = "technologies"
	fieldFeatures     = "features"
	fieldCompliance   = "compliance"
)

var returnFields = []string{
	fieldName, fieldDescription, fieldCategory, fieldIndustries,
	fieldProviderID, fieldProviderName, fieldProviderType,
	fieldPrice, fieldRating, fieldReviewCount, fieldPopularity,
	fieldLocation, fieldTechnologies, fieldFeatures, fieldCompliance,
}

// store is the consumer interface for catalog searches (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements the search usecase's vector and keyword retrieval.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
}

// New creates a catalog repository.
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix}
}

// SearchVector retrieves the topK nearest listings for the query embedding,
// pre-filtered so topK stays meaningful against the filtered population.
// An empty result is not an error.
func (r *Repo) SearchVector(
	ctx context.Context, vector []float32, filters filter.FilterSet,
	m measure.Measure, topK int,
) ([]result.Candidate, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName,
		Prefilter:    BuildPrefilter(filters),
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search knn: %w", domain.ErrStoreUnavailable, err)
	}

	candidates := make([]result.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, r.keyPrefix)
		candidates = append(candidates, result.Candidate{
			ListingID:   id,
			VectorScore: m.Score(entry.Score),
			Distance:    entry.Score,
			HasVector:   true,
			Listing:     parseListing(id, entry.Fields),
		})
	}

	sortCandidates(candidates, func(c *result.Candidate) float64 { return c.VectorScore })
	return candidates, nil
}

// SearchKeyword retrieves the topK best lexical matches over listing names
// and descriptions. Scores are raw relevance values; fusion normalizes them.
func (r *Repo) SearchKeyword(
	ctx context.Context, terms string, filters filter.FilterSet, topK int,
) ([]result.Candidate, error) {
	q := &db.TextQuery{
		IndexName:    r.indexName,
		TextFields:   []string{fieldName, fieldDescription},
		Terms:        terms,
		Prefilter:    BuildPrefilter(filters),
		TopK:         topK,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchText(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search text: %w", domain.ErrStoreUnavailable, err)
	}

	candidates := make([]result.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, r.keyPrefix)
		candidates = append(candidates, result.Candidate{
			ListingID:    id,
			KeywordScore: entry.Score,
			HasKeyword:   true,
			Listing:      parseListing(id, entry.Fields),
		})
	}

	sortCandidates(candidates, func(c *result.Candidate) float64 { return c.KeywordScore })
	return candidates, nil
}

// sortCandidates orders by score descending with listing id as the
// secondary key, so equal-score output is deterministic.
func sortCandidates(cs []result.Candidate, score func(*result.Candidate) float64) {
	sort.SliceStable(cs, func(i, j int) bool {
		si, sj := score(&cs[i]), score(&cs[j])
		if si != sj {
			return si > sj
		}
		return cs[i].ListingID < cs[j].ListingID
	})
}

func parseListing(id string, fields map[string]string) domain.Listing {
	return domain.Listing{
		ID:           id,
		Name:         fields[fieldName],
		Description:  fields[fieldDescription],
		Category:     fields[fieldCategory],
		Industries:   splitSet(fields[fieldIndustries]),
		ProviderID:   fields[fieldProviderID],
		ProviderName: fields[fieldProviderName],
		ProviderType: fields[fieldProviderType],
		Price:        parseFloat(fields[fieldPrice]),
		Rating:       parseFloat(fields[fieldRating]),
		ReviewCount:  int(parseFloat(fields[fieldReviewCount])),
		Popularity:   parseFloat(fields[fieldPopularity]),
		Location:     fields[fieldLocation],
		Technologies: splitSet(fields[fieldTechnologies]),
		Features:     splitSet(fields[fieldFeatures]),
		Compliance:   splitSet(fields[fieldCompliance]),
	}
}

func splitSet(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(v, 64)
	return f
}
