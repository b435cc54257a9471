package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devexhq/pulse/schema"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"median of two interpolates", []float64{7200, 21600}, 50, 14400},
		{"median of odd sample", []float64{1, 2, 3}, 50, 2},
		{"p25 interpolates", []float64{1, 2, 3, 4}, 25, 1.75},
		{"p90 of ten", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 90, 9.1},
		{"p0 is min", []float64{5, 1, 9}, 0, 1},
		{"p100 is max", []float64{5, 1, 9}, 100, 9},
		{"single value", []float64{42}, 90, 42},
		{"unsorted input", []float64{3, 1, 2}, 50, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Percentile(tc.values, tc.p), 1e-9)
		})
	}
}

func TestPercentileEmpty(t *testing.T) {
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
	assert.True(t, math.IsNaN(Mean(nil)))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{7200, 21600})
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 7200, s.Min, 1e-9)
	assert.InDelta(t, 14400, s.P50, 1e-9)
	assert.InDelta(t, 21600, s.Max, 1e-9)
	assert.InDelta(t, 14400, s.Mean, 1e-9)

	assert.Nil(t, Summarize(nil))
}

func TestSummarizeDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_ = Summarize(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name     string
		series   []float64
		expected string
	}{
		{"rising series", []float64{1, 2, 3, 4, 5}, schema.TrendIncreasing},
		{"falling series", []float64{5, 4, 3, 2, 1}, schema.TrendDecreasing},
		{"flat series", []float64{3, 3, 3, 3}, schema.TrendStable},
		{"noise within threshold", []float64{100, 101, 100, 101}, schema.TrendStable},
		{"too few points", []float64{9}, schema.TrendStable},
		{"empty series", nil, schema.TrendStable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			trend := Trend(tc.series)
			require.NotNil(t, trend)
			assert.Equal(t, tc.expected, trend.Direction)
		})
	}
}

func TestTrendPercentChange(t *testing.T) {
	trend := Trend([]float64{1, 2, 3})
	// Slope 1 over 2 steps against a mean of 2 is a 100% move.
	assert.InDelta(t, 100, trend.PercentChange, 1e-9)
}
