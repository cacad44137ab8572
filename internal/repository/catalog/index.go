package catalog

import (
	"github.com/vendora-cloud/semsearch/internal/db"
	redisdb "github.com/vendora-cloud/semsearch/internal/db/redis"
	"github.com/vendora-cloud/semsearch/internal/domain/search/measure"
)

// HNSWConfig tunes the vector index build.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// ListingIndex describes the FT index over listing hashes. The catalog
// pipeline writes the hashes; this service only guarantees the index exists.
func ListingIndex(name, keyPrefix string, dims int, m measure.Measure, hnsw HNSWConfig) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:   name,
		Prefix: keyPrefix,
		Fields: []db.IndexField{
			{Name: fieldName, Type: db.IndexFieldText},
			{Name: fieldDescription, Type: db.IndexFieldText},
			{Name: fieldCategory, Type: db.IndexFieldTag},
			{Name: fieldIndustries, Type: db.IndexFieldTag},
			{Name: fieldProviderID, Type: db.IndexFieldTag},
			{Name: fieldProviderType, Type: db.IndexFieldTag},
			{Name: fieldLocation, Type: db.IndexFieldTag},
			{Name: fieldTechnologies, Type: db.IndexFieldTag},
			{Name: fieldFeatures, Type: db.IndexFieldTag},
			{Name: fieldCompliance, Type: db.IndexFieldTag},
			{Name: fieldPrice, Type: db.IndexFieldNumeric},
			{Name: fieldRating, Type: db.IndexFieldNumeric},
			{Name: fieldPopularity, Type: db.IndexFieldNumeric},
			{
				Name:              redisdb.VectorField,
				Type:              db.IndexFieldVector,
				VectorDim:         dims,
				VectorMetric:      m.IndexMetric(),
				VectorM:           hnsw.M,
				VectorEFConstruct: hnsw.EFConstruct,
			},
		},
	}
}
