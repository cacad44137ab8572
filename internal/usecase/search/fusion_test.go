package search

import (
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/vendora-cloud/semsearch/internal/domain"
	"github.com/vendora-cloud/semsearch/internal/domain/search/filter"
	"github.com/vendora-cloud/semsearch/internal/domain/search/intent"
	"github.com/vendora-cloud/semsearch/internal/domain/search/measure"
	"github.com/vendora-cloud/semsearch/internal/domain/search/query"
	"github.com/vendora-cloud/semsearch/internal/domain/search/result"
)

func vectorCand(id string, score float64, category string) result.Candidate {
	return result.Candidate{
		ListingID:   id,
		VectorScore: score,
		HasVector:   true,
		Listing:     domain.Listing{ID: id, Category: category},
	}
}

func keywordCand(id string, score float64, category string) result.Candidate {
	return result.Candidate{
		ListingID:    id,
		KeywordScore: score,
		HasKeyword:   true,
		Listing:      domain.Listing{ID: id, Category: category},
	}
}

func defaultOptions() query.Options {
	return query.Options{Limit: 20, Measure: measure.Cosine, IncludeTextSearch: true}
}

func TestFuseMergesByListingID(t *testing.T) {
	in := fuseInput{
		vector: []result.Candidate{
			vectorCand("a", 0.9, "nlp"),
			vectorCand("b", 0.5, "nlp"),
		},
		keyword:   []result.Candidate{keywordCand("a", 10, "nlp"), keywordCand("c", 5, "nlp")},
		intent:    intent.Intent{Category: intent.General},
		options:   defaultOptions(),
		vectorRan: true,
	}

	ranked, total := fuse(in)
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	// "a" carries both signals and must outrank the single-signal hits.
	if ranked[0].ListingID() != "a" {
		t.Errorf("top result = %s, want a", ranked[0].ListingID())
	}
}

func TestFuseMissingSignalNeverDisqualifies(t *testing.T) {
	in := fuseInput{
		keyword:   []result.Candidate{keywordCand("k", 3, "nlp")},
		intent:    intent.Intent{Category: intent.General},
		options:   defaultOptions(),
		vectorRan: false,
	}

	ranked, _ := fuse(in)
	if len(ranked) != 1 || ranked[0].ListingID() != "k" {
		t.Fatalf("keyword-only candidate dropped: %v", ranked)
	}
	if ranked[0].Score() <= 0 {
		t.Errorf("keyword-only score = %v, want > 0", ranked[0].Score())
	}
}

func TestFuseDeterministic(t *testing.T) {
	in := fuseInput{
		vector: []result.Candidate{
			vectorCand("a", 0.8, "nlp"),
			vectorCand("b", 0.8, "vision"),
			vectorCand("c", 0.3, "nlp"),
		},
		keyword:   []result.Candidate{keywordCand("b", 7, "vision"), keywordCand("d", 2, "nlp")},
		intent:    intent.Intent{Category: intent.ServiceSearch},
		options:   defaultOptions(),
		vectorRan: true,
	}

	first, _ := fuse(in)
	for i := 0; i < 10; i++ {
		again, _ := fuse(in)
		if !reflect.DeepEqual(ids(first), ids(again)) {
			t.Fatalf("run %d produced different order: %v vs %v", i, ids(first), ids(again))
		}
	}
}

func TestFuseTieBreaksOnListingID(t *testing.T) {
	in := fuseInput{
		vector: []result.Candidate{
			vectorCand("zeta", 0.7, "nlp"),
			vectorCand("alpha", 0.7, "nlp"),
		},
		intent:    intent.Intent{Category: intent.General},
		options:   defaultOptions(),
		vectorRan: true,
	}

	ranked, _ := fuse(in)
	if ranked[0].ListingID() != "alpha" {
		t.Errorf("equal scores must order by listing ID, got %v", ids(ranked))
	}
}

func TestFuseThresholdAppliesToCombinedScore(t *testing.T) {
	opts := defaultOptions()
	opts.Threshold = 0.5

	in := fuseInput{
		vector: []result.Candidate{
			vectorCand("strong", 0.95, "nlp"),
			vectorCand("weak", 0.1, "nlp"),
		},
		intent:    intent.Intent{Category: intent.General},
		options:   opts,
		vectorRan: true,
	}

	ranked, total := fuse(in)
	if total != 1 || ranked[0].ListingID() != "strong" {
		t.Fatalf("threshold filtering wrong: %v", ids(ranked))
	}
}

func TestFuseThresholdSkippedWhenVectorDidNotRun(t *testing.T) {
	opts := defaultOptions()
	opts.Threshold = 0.9

	in := fuseInput{
		keyword:   []result.Candidate{keywordCand("k", 3, "nlp")},
		intent:    intent.Intent{Category: intent.General},
		options:   opts,
		vectorRan: false,
	}

	// Keyword-only scores are not on the similarity scale; filtering by the
	// threshold would empty every degraded response.
	ranked, _ := fuse(in)
	if len(ranked) != 1 {
		t.Fatalf("degraded response emptied by threshold: %v", ids(ranked))
	}
}

func TestFuseThresholdSkippedForDotMeasure(t *testing.T) {
	opts := defaultOptions()
	opts.Threshold = 0.9
	opts.Measure = measure.Dot

	in := fuseInput{
		vector:    []result.Candidate{vectorCand("a", 0.2, "nlp")},
		intent:    intent.Intent{Category: intent.General},
		options:   opts,
		vectorRan: true,
	}

	ranked, _ := fuse(in)
	if len(ranked) != 1 {
		t.Fatalf("dot scores are not threshold comparable, result dropped: %v", ids(ranked))
	}
}

func TestFuseKeywordNormalization(t *testing.T) {
	in := fuseInput{
		keyword: []result.Candidate{
			keywordCand("best", 40, "nlp"),
			keywordCand("half", 20, "nlp"),
		},
		intent:    intent.Intent{Category: intent.General},
		options:   defaultOptions(),
		vectorRan: false,
	}

	ranked, _ := fuse(in)
	w := weightProfile(intent.General)
	if got, want := ranked[0].Score(), w.Keyword*1.0; !approxEq(got, want) {
		t.Errorf("max keyword score = %v, want %v", got, want)
	}
	if got, want := ranked[1].Score(), w.Keyword*0.5; !approxEq(got, want) {
		t.Errorf("half keyword score = %v, want %v", got, want)
	}
}

func TestFuseCategoryBoostFromFilter(t *testing.T) {
	in := fuseInput{
		vector: []result.Candidate{
			vectorCand("match", 0.5, "nlp"),
			vectorCand("other", 0.5, "vision"),
		},
		intent:    intent.Intent{Category: intent.General},
		filters:   filter.FilterSet{Categories: []string{"NLP"}},
		options:   defaultOptions(),
		vectorRan: true,
	}

	ranked, _ := fuse(in)
	if ranked[0].ListingID() != "match" {
		t.Errorf("category boost did not promote filtered category: %v", ids(ranked))
	}
}

func TestDiversifyPreservesResultSet(t *testing.T) {
	var ranked []result.Ranked
	for i := 0; i < 9; i++ {
		cat := fmt.Sprintf("cat%d", i%3)
		ranked = append(ranked, result.NewRanked(
			fmt.Sprintf("l%d", i), 1-float64(i)*0.1,
			domain.Listing{ID: fmt.Sprintf("l%d", i), Category: cat}, nil))
	}

	out := diversify(ranked)
	if len(out) != len(ranked) {
		t.Fatalf("diversify changed result count: %d -> %d", len(ranked), len(out))
	}

	before, after := ids(ranked), ids(out)
	sort.Strings(before)
	sort.Strings(after)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("diversify changed the result set: %v vs %v", before, after)
	}

	// Round-robin: the first three come from three distinct categories.
	seen := map[string]bool{}
	for _, r := range out[:3] {
		seen[r.Listing().Category] = true
	}
	if len(seen) != 3 {
		t.Errorf("first page not diversified: %v", seen)
	}
}

func TestFuseDiversifyPreservesPageMembership(t *testing.T) {
	// Six nlp candidates outscore four vision ones, so the undiversified
	// page is all nlp. Diversification must reorder that page, never pull
	// listings in from beyond the limit.
	var vector []result.Candidate
	for i := 0; i < 6; i++ {
		vector = append(vector, vectorCand(fmt.Sprintf("a%d", i), 0.9-float64(i)*0.01, "nlp"))
	}
	for i := 0; i < 4; i++ {
		vector = append(vector, vectorCand(fmt.Sprintf("b%d", i), 0.5-float64(i)*0.01, "vision"))
	}

	opts := defaultOptions()
	opts.Limit = 4

	plain, plainTotal := fuse(fuseInput{
		vector:    vector,
		intent:    intent.Intent{Category: intent.General},
		options:   opts,
		vectorRan: true,
	})

	opts.Diversify = true
	diversified, divTotal := fuse(fuseInput{
		vector:    vector,
		intent:    intent.Intent{Category: intent.General},
		options:   opts,
		vectorRan: true,
	})

	if plainTotal != divTotal {
		t.Errorf("total changed with diversify: %d vs %d", plainTotal, divTotal)
	}
	before, after := ids(plain), ids(diversified)
	sort.Strings(before)
	sort.Strings(after)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("diversify changed the page membership: %v vs %v", before, after)
	}
}

func TestDiversifyNoopForSmallOrUniformInput(t *testing.T) {
	small := []result.Ranked{
		result.NewRanked("a", 0.9, domain.Listing{Category: "x"}, nil),
		result.NewRanked("b", 0.8, domain.Listing{Category: "y"}, nil),
	}
	if got := diversify(small); !reflect.DeepEqual(ids(got), ids(small)) {
		t.Errorf("small input reordered: %v", ids(got))
	}

	uniform := []result.Ranked{
		result.NewRanked("a", 0.9, domain.Listing{Category: "x"}, nil),
		result.NewRanked("b", 0.8, domain.Listing{Category: "x"}, nil),
		result.NewRanked("c", 0.7, domain.Listing{Category: "x"}, nil),
	}
	if got := diversify(uniform); !reflect.DeepEqual(ids(got), ids(uniform)) {
		t.Errorf("single-category input reordered: %v", ids(got))
	}
}

func TestFusePagination(t *testing.T) {
	var vector []result.Candidate
	for i := 0; i < 10; i++ {
		vector = append(vector, vectorCand(fmt.Sprintf("l%02d", i), 1-float64(i)*0.05, "nlp"))
	}

	opts := defaultOptions()
	opts.Limit = 3
	opts.Offset = 4

	ranked, total := fuse(fuseInput{
		vector:    vector,
		intent:    intent.Intent{Category: intent.General},
		options:   opts,
		vectorRan: true,
	})

	if total != 10 {
		t.Errorf("total = %d, want pre-pagination count 10", total)
	}
	if want := []string{"l04", "l05", "l06"}; !reflect.DeepEqual(ids(ranked), want) {
		t.Errorf("page = %v, want %v", ids(ranked), want)
	}

	opts.Offset = 50
	ranked, _ = fuse(fuseInput{
		vector:    vector,
		intent:    intent.Intent{Category: intent.General},
		options:   opts,
		vectorRan: true,
	})
	if len(ranked) != 0 {
		t.Errorf("offset past end should return empty page, got %v", ids(ranked))
	}
}

func TestFuseExplanationOnlyOnRequest(t *testing.T) {
	in := fuseInput{
		vector:    []result.Candidate{vectorCand("a", 0.9, "nlp")},
		intent:    intent.Intent{Category: intent.General},
		options:   defaultOptions(),
		vectorRan: true,
	}

	ranked, _ := fuse(in)
	if ranked[0].Explanation() != nil {
		t.Error("explanation attached without request")
	}

	in.options.IncludeExplanation = true
	ranked, _ = fuse(in)
	if ranked[0].Explanation() == nil {
		t.Fatal("explanation missing")
	}
	if ranked[0].Explanation().Weights != weightProfile(intent.General) {
		t.Error("explanation carries wrong weights")
	}
}

func ids(rs []result.Ranked) []string {
	out := make([]string, len(rs))
	for i := range rs {
		out[i] = rs[i].ListingID()
	}
	return out
}

func approxEq(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
