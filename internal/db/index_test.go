package db

import (
	"strings"
	"testing"
)

func listingIndexDef() *IndexDefinition {
	return &IndexDefinition{
		Name:   "idx",
		Prefix: "p:",
		Fields: []IndexField{
			{Name: "name", Type: IndexFieldText},
			{Name: "category", Type: IndexFieldTag},
			{Name: "price", Type: IndexFieldNumeric},
			{Name: "embedding", Type: IndexFieldVector,
				VectorDim: 1536, VectorMetric: "COSINE", VectorM: 32, VectorEFConstruct: 400},
		},
	}
}

func TestIndexDefinitionValidate(t *testing.T) {
	def := listingIndexDef()
	if err := def.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := *def
	bad.Name = ""
	if err := bad.Validate(); err == nil {
		t.Error("missing name accepted")
	}

	bad = *def
	bad.Fields = []IndexField{{Name: "v", Type: IndexFieldVector, VectorDim: 0, VectorMetric: "COSINE"}}
	if err := bad.Validate(); err == nil {
		t.Error("zero-dimension vector accepted")
	}

	bad = *def
	bad.Fields = []IndexField{{Name: "v", Type: IndexFieldVector, VectorDim: 8, VectorMetric: "HAMMING"}}
	if err := bad.Validate(); err == nil {
		t.Error("unknown metric accepted")
	}
}

func TestIndexDefinitionArgs(t *testing.T) {
	got := strings.Join(listingIndexDef().Args(), " ")

	want := "idx ON HASH PREFIX 1 p: SCHEMA " +
		"name TEXT category TAG SEPARATOR , price NUMERIC " +
		"embedding VECTOR HNSW 10 TYPE FLOAT32 DIM 1536 DISTANCE_METRIC COSINE M 32 EF_CONSTRUCTION 400"
	if got != want {
		t.Errorf("args:\n got %q\nwant %q", got, want)
	}
}
