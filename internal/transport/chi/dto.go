package chi

import (
	"github.com/vendora-cloud/semsearch/internal/domain"
	"github.com/vendora-cloud/semsearch/internal/domain/search/filter"
	"github.com/vendora-cloud/semsearch/internal/domain/search/result"
	searchuc "github.com/vendora-cloud/semsearch/internal/usecase/search"
)

// searchRequest is the POST /api/v1/search body. Optional fields are
// pointers so "absent" and "explicit zero" stay distinguishable: absent
// values take defaults, explicit out-of-range values are rejected.
type searchRequest struct {
	Query   string            `json:"query"`
	Filters *filter.FilterSet `json:"filters,omitempty"`
	Options *searchOptions    `json:"options,omitempty"`
}

type searchOptions struct {
	Limit              *int     `json:"limit,omitempty"`
	Offset             *int     `json:"offset,omitempty"`
	Threshold          *float64 `json:"threshold,omitempty"`
	DistanceMeasure    *string  `json:"distanceMeasure,omitempty"`
	IncludeTextSearch  *bool    `json:"includeTextSearch,omitempty"`
	IncludeExplanation *bool    `json:"includeExplanation,omitempty"`
	Diversify          *bool    `json:"diversify,omitempty"`
}

type providerDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type listingDTO struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Category       string      `json:"category"`
	Industries     []string    `json:"industries,omitempty"`
	Provider       providerDTO `json:"provider"`
	Price          float64     `json:"price"`
	Rating         float64     `json:"rating"`
	ReviewCount    int         `json:"reviewCount"`
	Location       string      `json:"location,omitempty"`
	Technologies   []string    `json:"technologies,omitempty"`
	Features       []string    `json:"features,omitempty"`
	ComplianceTags []string    `json:"complianceTags,omitempty"`
}

type resultDTO struct {
	ListingID   string              `json:"listingId"`
	Score       float64             `json:"score"`
	Listing     listingDTO          `json:"listing"`
	Explanation *result.Explanation `json:"explanation,omitempty"`
}

type intentDTO struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Entities   []string `json:"entities,omitempty"`
}

type queryMetadataDTO struct {
	OriginalQuery   string    `json:"originalQuery"`
	NormalizedQuery string    `json:"normalizedQuery"`
	Intent          intentDTO `json:"intent"`
	Mode            string    `json:"mode"`
	Degraded        bool      `json:"degraded"`
	DegradedReason  string    `json:"degradedReason,omitempty"`
	FiltersApplied  bool      `json:"filtersApplied"`
}

type performanceDTO struct {
	TotalMS       int64  `json:"totalMs"`
	EmbeddingMS   int64  `json:"embeddingMs"`
	VectorMS      int64  `json:"vectorMs"`
	KeywordMS     int64  `json:"keywordMs"`
	FusionMS      int64  `json:"fusionMs"`
	CacheStatus   string `json:"cacheStatus"`
	CandidateHits int    `json:"candidateHits"`
}

type searchResponseDTO struct {
	Results       []resultDTO      `json:"results"`
	TotalCount    int              `json:"totalCount"`
	QueryMetadata queryMetadataDTO `json:"queryMetadata"`
	Performance   performanceDTO   `json:"performance"`
}

func listingToDTO(l domain.Listing) listingDTO {
	return listingDTO{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Category:    l.Category,
		Industries:  l.Industries,
		Provider: providerDTO{
			ID:   l.ProviderID,
			Name: l.ProviderName,
			Type: l.ProviderType,
		},
		Price:          l.Price,
		Rating:         l.Rating,
		ReviewCount:    l.ReviewCount,
		Location:       l.Location,
		Technologies:   l.Technologies,
		Features:       l.Features,
		ComplianceTags: l.Compliance,
	}
}

func searchResponseToDTO(resp *searchuc.Response) searchResponseDTO {
	results := make([]resultDTO, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		results[i] = resultDTO{
			ListingID:   r.ListingID(),
			Score:       r.Score(),
			Listing:     listingToDTO(r.Listing()),
			Explanation: r.Explanation(),
		}
	}

	return searchResponseDTO{
		Results:    results,
		TotalCount: resp.TotalCount,
		QueryMetadata: queryMetadataDTO{
			OriginalQuery:   resp.Query.OriginalQuery,
			NormalizedQuery: resp.Query.NormalizedQuery,
			Intent: intentDTO{
				Category:   string(resp.Query.Intent.Category),
				Confidence: resp.Query.Intent.Confidence,
				Entities:   resp.Query.Intent.Entities,
			},
			Mode:           resp.Query.Mode,
			Degraded:       resp.Query.Degraded,
			DegradedReason: resp.Query.DegradedReason,
			FiltersApplied: resp.Query.FiltersApplied,
		},
		Performance: performanceDTO{
			TotalMS:       resp.Performance.TotalMS,
			EmbeddingMS:   resp.Performance.EmbeddingMS,
			VectorMS:      resp.Performance.VectorMS,
			KeywordMS:     resp.Performance.KeywordMS,
			FusionMS:      resp.Performance.FusionMS,
			CacheStatus:   resp.Performance.CacheStatus,
			CandidateHits: resp.Performance.CandidateHits,
		},
	}
}
