package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	assert.True(t, Cosine.IsValid())
	assert.True(t, Euclidean.IsValid())
	assert.True(t, Dot.IsValid())
	assert.False(t, Measure("manhattan").IsValid())
	assert.False(t, Measure("").IsValid())
}

func TestScoreCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine.Score(0), 1e-9)
	assert.InDelta(t, 0.5, Cosine.Score(0.5), 1e-9)
	// Opposite vectors report distance 2; score clamps at 0.
	assert.Equal(t, 0.0, Cosine.Score(2))
}

func TestScoreEuclidean(t *testing.T) {
	assert.InDelta(t, 1.0, Euclidean.Score(0), 1e-9)
	assert.InDelta(t, 0.5, Euclidean.Score(1), 1e-9)
	// Monotonically decreasing, never negative.
	assert.Greater(t, Euclidean.Score(1), Euclidean.Score(10))
	assert.Greater(t, Euclidean.Score(10), 0.0)
}

func TestScoreDot(t *testing.T) {
	// Larger inner product (smaller reported distance) scores higher.
	assert.Greater(t, Dot.Score(-5), Dot.Score(0))
	assert.Greater(t, Dot.Score(0), Dot.Score(5))
	// Logistic output stays within [0,1]; extreme inputs saturate to the
	// float64 bounds.
	assert.Greater(t, Dot.Score(100), 0.0)
	assert.Less(t, Dot.Score(-5), 1.0)
	assert.LessOrEqual(t, Dot.Score(-100), 1.0)
}

func TestThresholdComparable(t *testing.T) {
	assert.True(t, Cosine.ThresholdComparable())
	assert.True(t, Euclidean.ThresholdComparable())
	assert.False(t, Dot.ThresholdComparable())
}

func TestIndexMetric(t *testing.T) {
	assert.Equal(t, "COSINE", Cosine.IndexMetric())
	assert.Equal(t, "L2", Euclidean.IndexMetric())
	assert.Equal(t, "IP", Dot.IndexMetric())
}
