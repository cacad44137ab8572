// Package measure defines the vector distance measures and their mapping
// from raw index distances to comparable relevance scores.
package measure

import "math"

// Measure is a vector distance measure.
type Measure string

// Supported measures.
const (
	Cosine    Measure = "cosine"
	Euclidean Measure = "euclidean"
	Dot       Measure = "dot"
)

// IsValid checks if the measure is one of the supported values.
func (m Measure) IsValid() bool {
	return m == Cosine || m == Euclidean || m == Dot
}

// Score converts a raw index distance into a score where higher is better.
// Cosine and euclidean scores land in [0,1] so they are comparable to the
// similarity threshold. Dot-product has no bounded distance, so the raw
// inner product is squashed through a logistic curve instead.
func (m Measure) Score(distance float64) float64 {
	switch m {
	case Cosine:
		// Index reports 1 - cos(a,b); clamp the negative-similarity tail.
		return clamp01(1 - distance)
	case Euclidean:
		return 1 / (1 + distance)
	case Dot:
		// Index reports 1 - <a,b>; recover the inner product first.
		return 1 / (1 + math.Exp(-(1 - distance)))
	default:
		return 0
	}
}

// ThresholdComparable reports whether scores derived from this measure are
// on the [0,1] similarity scale that options.threshold is defined on.
func (m Measure) ThresholdComparable() bool {
	return m == Cosine || m == Euclidean
}

// IndexMetric returns the FT.CREATE DISTANCE_METRIC name for the measure.
func (m Measure) IndexMetric() string {
	switch m {
	case Euclidean:
		return "L2"
	case Dot:
		return "IP"
	default:
		return "COSINE"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
