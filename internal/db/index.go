package db

import (
	"fmt"
	"strconv"
)

// Index field types.
type IndexFieldType string

// Supported FT field types.
const (
	IndexFieldTag     IndexFieldType = "TAG"
	IndexFieldNumeric IndexFieldType = "NUMERIC"
	IndexFieldText    IndexFieldType = "TEXT"
	IndexFieldVector  IndexFieldType = "VECTOR"
)

// IndexField describes one field of an FT index over hash documents.
type IndexField struct {
	Name string
	Type IndexFieldType

	// TAG options.
	TagSeparator string

	// VECTOR (HNSW) options.
	VectorDim         int
	VectorMetric      string // COSINE, L2, IP
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition describes an FT index over hash documents.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []IndexField
}

// Validate checks the definition before FT.CREATE.
func (d *IndexDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("index name is required")
	}
	if d.Prefix == "" {
		return fmt.Errorf("index prefix is required")
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("index needs at least one field")
	}
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("index field name is required")
		}
		if f.Type == IndexFieldVector {
			if f.VectorDim <= 0 {
				return fmt.Errorf("vector field %q: dimensions must be positive", f.Name)
			}
			switch f.VectorMetric {
			case "COSINE", "L2", "IP":
			default:
				return fmt.Errorf("vector field %q: unknown metric %q", f.Name, f.VectorMetric)
			}
		}
	}
	return nil
}

// Args renders the FT.CREATE argument list after the command name.
func (d *IndexDefinition) Args() []string {
	args := []string{
		d.Name,
		"ON", "HASH",
		"PREFIX", "1", d.Prefix,
		"SCHEMA",
	}
	for _, f := range d.Fields {
		switch f.Type {
		case IndexFieldVector:
			m := f.VectorM
			if m <= 0 {
				m = 16
			}
			ef := f.VectorEFConstruct
			if ef <= 0 {
				ef = 200
			}
			args = append(args, f.Name, "VECTOR", "HNSW", "10",
				"TYPE", "FLOAT32",
				"DIM", strconv.Itoa(f.VectorDim),
				"DISTANCE_METRIC", f.VectorMetric,
				"M", strconv.Itoa(m),
				"EF_CONSTRUCTION", strconv.Itoa(ef),
			)
		case IndexFieldTag:
			sep := f.TagSeparator
			if sep == "" {
				sep = ","
			}
			args = append(args, f.Name, "TAG", "SEPARATOR", sep)
		default:
			args = append(args, f.Name, string(f.Type))
		}
	}
	return args
}
