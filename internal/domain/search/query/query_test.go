package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-cloud/semsearch/internal/domain"
	"github.com/vendora-cloud/semsearch/internal/domain/search/filter"
	"github.com/vendora-cloud/semsearch/internal/domain/search/measure"
)

func TestNewRejectsEmptyQuery(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := New(text, filter.FilterSet{}, Options{})
		require.Error(t, err, "text %q", text)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, domain.ValidationMessage(err), "empty")
	}
}

func TestNewRejectsOverlongQuery(t *testing.T) {
	_, err := New(strings.Repeat("a", MaxQueryLength+1), filter.FilterSet{}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewAppliesDefaults(t *testing.T) {
	q, err := New("image recognition", filter.FilterSet{}, Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultLimit, q.Options().Limit)
	assert.Equal(t, 0, q.Options().Offset)
	assert.Equal(t, measure.Cosine, q.Options().Measure)
}

func TestNewClampsLimitAndOffset(t *testing.T) {
	q, err := New("x y z", filter.FilterSet{}, Options{Limit: 100000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, q.Options().Limit)
	assert.Equal(t, 0, q.Options().Offset)
}

func TestNewRejectsBadThreshold(t *testing.T) {
	_, err := New("x", filter.FilterSet{}, Options{Threshold: 1.5})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewRejectsBadMeasure(t *testing.T) {
	_, err := New("x", filter.FilterSet{}, Options{Measure: "hamming"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewSurfacesFilterErrors(t *testing.T) {
	minR := 9.0
	_, err := New("x", filter.FilterSet{MinRating: &minR}, Options{})
	require.Error(t, err)
	assert.Equal(t, "minRating must be a number between 0 and 5", domain.ValidationMessage(err))
}

func TestNormalization(t *testing.T) {
	q, err := New("  Machine Learning API  ", filter.FilterSet{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning API", q.Text())
	assert.Equal(t, "machine learning api", q.Normalized())
}

func TestCacheKeyInvariance(t *testing.T) {
	mk := func(text string, fs filter.FilterSet) string {
		q, err := New(text, fs, Options{})
		require.NoError(t, err)
		return q.CacheKey()
	}

	base := mk("sentiment analysis", filter.FilterSet{Categories: []string{"nlp", "vision"}})

	// Case, surrounding whitespace and filter ordering do not change the key.
	assert.Equal(t, base, mk("  Sentiment ANALYSIS ",
		filter.FilterSet{Categories: []string{"Vision", "NLP"}}))

	// Different text or filters do.
	assert.NotEqual(t, base, mk("sentiment analysis", filter.FilterSet{}))
	assert.NotEqual(t, base, mk("entity extraction",
		filter.FilterSet{Categories: []string{"nlp", "vision"}}))
}

func TestCacheKeyDependsOnOptions(t *testing.T) {
	q1, err := New("ocr", filter.FilterSet{}, Options{Limit: 10})
	require.NoError(t, err)
	q2, err := New("ocr", filter.FilterSet{}, Options{Limit: 20})
	require.NoError(t, err)
	assert.NotEqual(t, q1.CacheKey(), q2.CacheKey())
}
