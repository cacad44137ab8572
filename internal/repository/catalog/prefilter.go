package catalog

import (
	"fmt"
	"strings"

	"github.com/vendora-cloud/semsearch/internal/domain/search/filter"
)

// BuildPrefilter translates a FilterSet into an FT.SEARCH filter expression
// applied before distance computation. The expression mirrors
// FilterSet.Matches: both paths see the same filtered population.
func BuildPrefilter(f filter.FilterSet) string {
	var parts []string

	appendTag := func(field string, vals []string) {
		if clause := tagClause(field, vals); clause != "" {
			parts = append(parts, clause)
		}
	}

	appendTag(fieldCategory, f.Categories)
	appendTag(fieldIndustries, f.Industries)
	appendTag(fieldProviderType, f.ProviderTypes)
	appendTag(fieldLocation, f.Locations)
	appendTag(fieldTechnologies, f.Technologies)
	appendTag(fieldFeatures, f.Features)

	// Compliance is conjunctive: every requested tag must be present.
	for _, tag := range f.Compliance {
		if clause := tagClause(fieldCompliance, []string{tag}); clause != "" {
			parts = append(parts, clause)
		}
	}

	if f.PriceRange != nil {
		lo, hi := "-inf", "+inf"
		if f.PriceRange.Min != nil {
			lo = formatBound(*f.PriceRange.Min)
		}
		if f.PriceRange.Max != nil {
			hi = formatBound(*f.PriceRange.Max)
		}
		parts = append(parts, fmt.Sprintf("@%s:[%s %s]", fieldPrice, lo, hi))
	}

	if f.MinRating != nil {
		parts = append(parts, fmt.Sprintf("@%s:[%s +inf]", fieldRating, formatBound(*f.MinRating)))
	}

	return strings.Join(parts, " ")
}

func tagClause(field string, vals []string) string {
	escaped := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			escaped = append(escaped, escapeTag(v))
		}
	}
	if len(escaped) == 0 {
		return ""
	}
	return fmt.Sprintf("@%s:{%s}", field, strings.Join(escaped, "|"))
}

// escapeTag backslash-escapes the characters RediSearch treats as syntax
// inside a TAG clause.
func escapeTag(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatBound(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
}
