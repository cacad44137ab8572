// Package intent classifies the coarse purpose of a search query. The
// category only biases ranking weights downstream; it never gates whether
// a search runs.
package intent

import "strings"

// Category is the coarse query purpose.
type Category string

// Known categories.
const (
	ServiceSearch  Category = "service_search"
	ProviderSearch Category = "provider_search"
	Comparison     Category = "comparison"
	Navigational   Category = "navigational"
	General        Category = "general"
)

// Intent is the classification outcome.
type Intent struct {
	Category   Category
	Confidence float64
	Entities   []string
}

var providerTerms = []string{
	"provider", "providers", "vendor", "vendors", "company", "companies",
	"agency", "agencies", "consultancy", "firm",
}

var comparisonTerms = []string{
	"vs", "versus", "compare", "comparison", "best", "top", "alternative",
	"alternatives", "better than",
}

var serviceTerms = []string{
	"service", "services", "api", "tool", "tools", "platform", "solution",
	"solutions", "model", "software",
}

// domainTerms are catalog vocabulary recognized as entities.
var domainTerms = []string{
	"machine learning", "deep learning", "nlp", "natural language",
	"computer vision", "speech", "chatbot", "recommendation", "forecasting",
	"embedding", "generative", "llm", "ocr", "translation", "sentiment",
	"anomaly detection", "data labeling",
}

// Classify inspects the raw query text and returns its likely purpose with
// a confidence in [0,1]. It is a total function: any input, including the
// empty string, yields the general category rather than an error.
func Classify(text string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Intent{Category: General, Confidence: 0}
	}

	entities := extractEntities(normalized)
	words := strings.Fields(normalized)

	// Quoted phrases and very short queries look navigational: the caller
	// knows what they want and keyword matching serves them best.
	if strings.Contains(text, `"`) || (len(words) <= 2 && len(entities) == 0) {
		return Intent{Category: Navigational, Confidence: 0.6, Entities: entities}
	}

	if hits := countHits(normalized, comparisonTerms); hits > 0 {
		return Intent{Category: Comparison, Confidence: confidence(hits, len(words)), Entities: entities}
	}
	if hits := countHits(normalized, providerTerms); hits > 0 {
		return Intent{Category: ProviderSearch, Confidence: confidence(hits, len(words)), Entities: entities}
	}
	if hits := countHits(normalized, serviceTerms); hits > 0 || len(entities) > 0 {
		return Intent{
			Category:   ServiceSearch,
			Confidence: confidence(hits+len(entities), len(words)),
			Entities:   entities,
		}
	}

	return Intent{Category: General, Confidence: 0.3, Entities: entities}
}

func extractEntities(normalized string) []string {
	var out []string
	for _, term := range domainTerms {
		if strings.Contains(normalized, term) {
			out = append(out, term)
		}
	}
	return out
}

func countHits(normalized string, terms []string) int {
	hits := 0
	for _, term := range terms {
		if containsWord(normalized, term) {
			hits++
		}
	}
	return hits
}

// containsWord matches term on word boundaries so "vs" does not fire
// inside "supervised".
func containsWord(haystack, term string) bool {
	if strings.Contains(term, " ") {
		return strings.Contains(haystack, term)
	}
	for _, w := range strings.Fields(haystack) {
		if strings.Trim(w, `.,!?()"'`) == term {
			return true
		}
	}
	return false
}

func confidence(hits, words int) float64 {
	if words == 0 {
		return 0
	}
	c := 0.5 + 0.15*float64(hits)
	if c > 0.95 {
		c = 0.95
	}
	return c
}
