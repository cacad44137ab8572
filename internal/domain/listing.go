package domain

// Listing is a marketplace catalog entry: an AI service offered by a vendor.
// The catalog is owned by an external system; this service only reads it.
type Listing struct {
	ID           string
	Name         string
	Description  string
	Category     string
	Industries   []string
	ProviderID   string
	ProviderName string
	ProviderType string
	Price        float64
	Rating       float64
	ReviewCount  int
	Popularity   float64 // precomputed 0..1 prior maintained by the catalog pipeline
	Location     string
	Technologies []string
	Features     []string
	Compliance   []string
}
