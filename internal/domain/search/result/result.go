// Package result holds the intermediate and final search result types.
package result

import "github.com/vendora-cloud/semsearch/internal/domain"

// Candidate is a single hit from one search path. Candidates are transient:
// the two paths produce them independently and fusion discards them.
type Candidate struct {
	ListingID    string
	VectorScore  float64
	KeywordScore float64
	Distance     float64
	HasVector    bool
	HasKeyword   bool
	Listing      domain.Listing
}

// Explanation is the per-signal score breakdown attached on request.
type Explanation struct {
	VectorScore     float64 `json:"vectorScore"`
	KeywordScore    float64 `json:"keywordScore"`
	CategoryBoost   float64 `json:"categoryBoost"`
	PopularityPrior float64 `json:"popularityPrior"`
	Weights         Weights `json:"weights"`
	Summary         string  `json:"summary"`
}

// Weights are the fusion weights that produced a combined score.
type Weights struct {
	Vector     float64 `json:"vector"`
	Keyword    float64 `json:"keyword"`
	Category   float64 `json:"category"`
	Popularity float64 `json:"popularity"`
}

// Ranked is a final, ordered search hit. Immutable once produced.
type Ranked struct {
	listingID   string
	score       float64
	listing     domain.Listing
	explanation *Explanation
}

// NewRanked creates a ranked result.
func NewRanked(listingID string, score float64, listing domain.Listing, expl *Explanation) Ranked {
	return Ranked{listingID: listingID, score: score, listing: listing, explanation: expl}
}

// ListingID returns the listing identifier.
func (r *Ranked) ListingID() string { return r.listingID }

// Score returns the combined relevance score.
func (r *Ranked) Score() float64 { return r.score }

// Listing returns the source listing.
func (r *Ranked) Listing() domain.Listing { return r.listing }

// Explanation returns the score breakdown, nil unless requested.
func (r *Ranked) Explanation() *Explanation { return r.explanation }
