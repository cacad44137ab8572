package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vendora-cloud/semsearch/internal/domain"
	"github.com/vendora-cloud/semsearch/internal/domain/search/filter"
	"github.com/vendora-cloud/semsearch/internal/domain/search/intent"
	"github.com/vendora-cloud/semsearch/internal/domain/search/query"
	"github.com/vendora-cloud/semsearch/internal/domain/search/result"
)

// weightProfile picks the fusion weights for a classified intent.
// Navigational queries lean on lexical matching, comparison queries on the
// popularity prior; everything else favors semantic similarity.
func weightProfile(cat intent.Category) result.Weights {
	switch cat {
	case intent.Navigational:
		return result.Weights{Vector: 0.30, Keyword: 0.50, Category: 0.10, Popularity: 0.10}
	case intent.Comparison:
		return result.Weights{Vector: 0.45, Keyword: 0.20, Category: 0.10, Popularity: 0.25}
	case intent.ProviderSearch:
		return result.Weights{Vector: 0.45, Keyword: 0.30, Category: 0.15, Popularity: 0.10}
	case intent.ServiceSearch:
		return result.Weights{Vector: 0.60, Keyword: 0.20, Category: 0.12, Popularity: 0.08}
	default:
		return result.Weights{Vector: 0.55, Keyword: 0.25, Category: 0.12, Popularity: 0.08}
	}
}

// fuseInput bundles the per-request context fusion needs.
type fuseInput struct {
	vector    []result.Candidate
	keyword   []result.Candidate
	intent    intent.Intent
	filters   filter.FilterSet
	options   query.Options
	vectorRan bool
}

// fuse merges the two candidate sets into one ranked, paginated list and
// returns it with the pre-pagination total.
//
// A listing present in both sets carries both signals; a missing signal
// contributes zero, it never disqualifies. Keyword scores are normalized by
// the batch maximum so they share the [0,1] scale with vector scores.
func fuse(in fuseInput) ([]result.Ranked, int) {
	weights := weightProfile(in.intent.Category)
	kwMax := maxKeywordScore(in.keyword)

	merged := make(map[string]*result.Candidate, len(in.vector)+len(in.keyword))
	order := make([]string, 0, len(in.vector)+len(in.keyword))

	for i := range in.vector {
		c := in.vector[i]
		merged[c.ListingID] = &c
		order = append(order, c.ListingID)
	}
	for i := range in.keyword {
		c := in.keyword[i]
		if existing, ok := merged[c.ListingID]; ok {
			existing.KeywordScore = c.KeywordScore
			existing.HasKeyword = true
		} else {
			merged[c.ListingID] = &c
			order = append(order, c.ListingID)
		}
	}

	applyThreshold := in.vectorRan &&
		in.options.Threshold > 0 && in.options.Measure.ThresholdComparable()

	ranked := make([]result.Ranked, 0, len(order))
	for _, id := range order {
		c := merged[id]

		kw := 0.0
		if c.HasKeyword && kwMax > 0 {
			kw = c.KeywordScore / kwMax
		}
		catBoost := categoryBoost(&c.Listing, in.filters, in.intent)
		pop := clamp01(c.Listing.Popularity)

		combined := weights.Vector*c.VectorScore +
			weights.Keyword*kw +
			weights.Category*catBoost +
			weights.Popularity*pop

		if applyThreshold && combined < in.options.Threshold {
			continue
		}

		var expl *result.Explanation
		if in.options.IncludeExplanation {
			expl = explain(c, kw, catBoost, pop, weights, combined)
		}

		ranked = append(ranked, result.NewRanked(id, combined, c.Listing, expl))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score() != ranked[j].Score() {
			return ranked[i].Score() > ranked[j].Score()
		}
		return ranked[i].ListingID() < ranked[j].ListingID()
	})

	total := len(ranked)
	page := paginate(ranked, in.options.Offset, in.options.Limit)
	if in.options.Diversify {
		page = diversify(page)
	}
	return page, total
}

// categoryBoost is 1 when the listing's category was asked for, either via
// an explicit filter or a term recognized in the query text.
func categoryBoost(l *domain.Listing, filters filter.FilterSet, it intent.Intent) float64 {
	cat := normalizeCategory(l.Category)
	if cat == "" {
		return 0
	}
	for _, c := range filters.Categories {
		if normalizeCategory(c) == cat {
			return 1
		}
	}
	for _, e := range it.Entities {
		if normalizeCategory(e) == cat {
			return 1
		}
	}
	return 0
}

// normalizeCategory folds "Machine Learning" and "machine_learning" into
// one comparable form.
func normalizeCategory(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.ReplaceAll(v, "_", " ")
	v = strings.ReplaceAll(v, "-", " ")
	return strings.Join(strings.Fields(v), " ")
}

func maxKeywordScore(cs []result.Candidate) float64 {
	m := 0.0
	for i := range cs {
		if cs[i].KeywordScore > m {
			m = cs[i].KeywordScore
		}
	}
	return m
}

// diversify round-robins the returned page across categories so a single
// category cannot dominate it. It runs after pagination and only reorders:
// the page holds the same listings whether or not it is applied.
func diversify(ranked []result.Ranked) []result.Ranked {
	if len(ranked) < 3 {
		return ranked
	}

	groups := make(map[string][]result.Ranked)
	var groupOrder []string
	for _, r := range ranked {
		cat := r.Listing().Category
		if _, ok := groups[cat]; !ok {
			groupOrder = append(groupOrder, cat)
		}
		groups[cat] = append(groups[cat], r)
	}

	if len(groupOrder) < 2 {
		return ranked
	}

	out := make([]result.Ranked, 0, len(ranked))
	for len(out) < len(ranked) {
		for _, cat := range groupOrder {
			if len(groups[cat]) == 0 {
				continue
			}
			out = append(out, groups[cat][0])
			groups[cat] = groups[cat][1:]
		}
	}
	return out
}

func paginate(ranked []result.Ranked, offset, limit int) []result.Ranked {
	if offset >= len(ranked) {
		return nil
	}
	end := offset + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[offset:end]
}

func explain(
	c *result.Candidate, kwNorm, catBoost, pop float64,
	weights result.Weights, combined float64,
) *result.Explanation {
	var parts []string
	if c.HasVector {
		parts = append(parts, fmt.Sprintf("vector %.3f×%.2f", c.VectorScore, weights.Vector))
	}
	if c.HasKeyword {
		parts = append(parts, fmt.Sprintf("keyword %.3f×%.2f", kwNorm, weights.Keyword))
	}
	if catBoost > 0 {
		parts = append(parts, fmt.Sprintf("category %.1f×%.2f", catBoost, weights.Category))
	}
	if pop > 0 {
		parts = append(parts, fmt.Sprintf("popularity %.3f×%.2f", pop, weights.Popularity))
	}

	return &result.Explanation{
		VectorScore:     c.VectorScore,
		KeywordScore:    kwNorm,
		CategoryBoost:   catBoost,
		PopularityPrior: pop,
		Weights:         weights,
		Summary:         fmt.Sprintf("%.4f = %s", combined, strings.Join(parts, " + ")),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
