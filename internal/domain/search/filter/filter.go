// Package filter implements the structured catalog filters shared by the
// vector and keyword search paths.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vendora-cloud/semsearch/internal/domain"
)

// PriceRange bounds the listing price. Either bound may be absent.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// FilterSet holds the optional structured constraints of a search request.
// A nil/empty field means "no constraint". Set-valued fields are treated as
// membership tests; order and duplicates are irrelevant.
type FilterSet struct {
	Categories    []string    `json:"categories,omitempty"`
	Industries    []string    `json:"industries,omitempty"`
	ProviderTypes []string    `json:"providerTypes,omitempty"`
	Locations     []string    `json:"locations,omitempty"`
	Technologies  []string    `json:"technologies,omitempty"`
	Features      []string    `json:"features,omitempty"`
	Compliance    []string    `json:"complianceTags,omitempty"`
	PriceRange    *PriceRange `json:"priceRange,omitempty"`
	MinRating     *float64    `json:"minRating,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (f *FilterSet) IsEmpty() bool {
	return len(f.Categories) == 0 && len(f.Industries) == 0 &&
		len(f.ProviderTypes) == 0 && len(f.Locations) == 0 &&
		len(f.Technologies) == 0 && len(f.Features) == 0 &&
		len(f.Compliance) == 0 && f.PriceRange == nil && f.MinRating == nil
}

// Validate checks the filter constraints. Messages are caller-facing and
// surfaced verbatim by the API layer.
func (f *FilterSet) Validate() error {
	if f.PriceRange != nil {
		if f.PriceRange.Min != nil && *f.PriceRange.Min < 0 {
			return domain.NewValidationError("filters.priceRange",
				"priceRange.min must be a non-negative number")
		}
		if f.PriceRange.Max != nil && *f.PriceRange.Max < 0 {
			return domain.NewValidationError("filters.priceRange",
				"priceRange.max must be a non-negative number")
		}
		if f.PriceRange.Min != nil && f.PriceRange.Max != nil &&
			*f.PriceRange.Min > *f.PriceRange.Max {
			return domain.NewValidationError("filters.priceRange",
				"priceRange.min cannot be greater than priceRange.max")
		}
	}
	if f.MinRating != nil && (*f.MinRating < 0 || *f.MinRating > 5) {
		return domain.NewValidationError("filters.minRating",
			"minRating must be a number between 0 and 5")
	}
	return nil
}

// Matches reports whether a listing satisfies every constraint. The same
// predicate backs the index pre-filter and any post-hoc pass, so membership
// is identical regardless of which search path applied it.
func (f *FilterSet) Matches(l *domain.Listing) bool {
	if !memberOf(l.Category, f.Categories) {
		return false
	}
	if !intersects(l.Industries, f.Industries) {
		return false
	}
	if !memberOf(l.ProviderType, f.ProviderTypes) {
		return false
	}
	if !memberOf(l.Location, f.Locations) {
		return false
	}
	if !intersects(l.Technologies, f.Technologies) {
		return false
	}
	if !intersects(l.Features, f.Features) {
		return false
	}
	if !containsAll(l.Compliance, f.Compliance) {
		return false
	}
	if f.PriceRange != nil {
		if f.PriceRange.Min != nil && l.Price < *f.PriceRange.Min {
			return false
		}
		if f.PriceRange.Max != nil && l.Price > *f.PriceRange.Max {
			return false
		}
	}
	if f.MinRating != nil && l.Rating < *f.MinRating {
		return false
	}
	return true
}

// Apply filters a listing slice through Matches.
func (f *FilterSet) Apply(listings []domain.Listing) []domain.Listing {
	if f.IsEmpty() {
		return listings
	}
	out := make([]domain.Listing, 0, len(listings))
	for i := range listings {
		if f.Matches(&listings[i]) {
			out = append(out, listings[i])
		}
	}
	return out
}

// Canonical returns a copy with every set sorted, deduplicated and
// lowercased, so that equivalent filter sets produce identical cache keys.
func (f *FilterSet) Canonical() FilterSet {
	out := FilterSet{
		Categories:    canonicalSet(f.Categories),
		Industries:    canonicalSet(f.Industries),
		ProviderTypes: canonicalSet(f.ProviderTypes),
		Locations:     canonicalSet(f.Locations),
		Technologies:  canonicalSet(f.Technologies),
		Features:      canonicalSet(f.Features),
		Compliance:    canonicalSet(f.Compliance),
	}
	if f.PriceRange != nil {
		pr := *f.PriceRange
		out.PriceRange = &pr
	}
	if f.MinRating != nil {
		mr := *f.MinRating
		out.MinRating = &mr
	}
	return out
}

// String renders a compact deterministic description, used in cache keys
// and explanations.
func (f *FilterSet) String() string {
	c := f.Canonical()
	var parts []string
	appendSet := func(name string, vals []string) {
		if len(vals) > 0 {
			parts = append(parts, name+"="+strings.Join(vals, ","))
		}
	}
	appendSet("categories", c.Categories)
	appendSet("industries", c.Industries)
	appendSet("providerTypes", c.ProviderTypes)
	appendSet("locations", c.Locations)
	appendSet("technologies", c.Technologies)
	appendSet("features", c.Features)
	appendSet("compliance", c.Compliance)
	if c.PriceRange != nil {
		parts = append(parts, "price="+rangeString(c.PriceRange))
	}
	if c.MinRating != nil {
		parts = append(parts, fmt.Sprintf("minRating=%g", *c.MinRating))
	}
	return strings.Join(parts, ";")
}

func rangeString(pr *PriceRange) string {
	lo, hi := "-inf", "+inf"
	if pr.Min != nil {
		lo = fmt.Sprintf("%g", *pr.Min)
	}
	if pr.Max != nil {
		hi = fmt.Sprintf("%g", *pr.Max)
	}
	return lo + ".." + hi
}

func canonicalSet(vals []string) []string {
	if len(vals) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func memberOf(val string, set []string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if strings.EqualFold(val, s) {
			return true
		}
	}
	return false
}

// intersects reports whether the listing values share at least one element
// with the requested set.
func intersects(vals, set []string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		for _, v := range vals {
			if strings.EqualFold(v, s) {
				return true
			}
		}
	}
	return false
}

// containsAll requires every requested compliance tag to be present.
func containsAll(vals, set []string) bool {
	for _, s := range set {
		found := false
		for _, v := range vals {
			if strings.EqualFold(v, s) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
