// Package stats has the shared numeric helpers for metric computations:
// order statistics, distribution summaries and trend slopes.
package stats

import (
	"math"
	"sort"

	"github.com/devexhq/pulse/schema"
)

// Percentile returns the p-th percentile (0 <= p <= 100) of values using
// linear interpolation between closest ranks. With n sorted values, the
// rank is h = (n-1)*p/100 and the result interpolates between the values
// at floor(h) and floor(h)+1. Matches the estimator spreadsheets and
// numpy use by default.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	h := float64(len(sorted)-1) * p / 100
	lower := int(math.Floor(h))
	frac := h - float64(lower)
	if frac == 0 || lower+1 >= len(sorted) {
		return sorted[lower]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// Mean returns the arithmetic mean of values, or NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Summarize builds the five-point distribution summary used by every
// duration and count metric. Returns nil for an empty sample so callers
// can mark the result as having no data.
func Summarize(values []float64) *schema.DistributionSummary {
	if len(values) == 0 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return &schema.DistributionSummary{
		Count: len(sorted),
		Min:   sorted[0],
		P50:   Percentile(sorted, 50),
		P90:   Percentile(sorted, 90),
		Max:   sorted[len(sorted)-1],
		Mean:  Mean(sorted),
	}
}

// Trend thresholds. Slopes translating to less than this relative change
// over the sample are reported as stable.
const trendStableThreshold = 5.0 // percent

// Trend fits a least-squares line through the series (indexed 0..n-1)
// and classifies the direction of movement. Fewer than two points, or a
// flat baseline, yields a stable trend with no percent change.
func Trend(series []float64) *schema.TrendInfo {
	info := &schema.TrendInfo{Direction: schema.TrendStable}
	n := len(series)
	if n < 2 {
		return info
	}

	// 1. Fit slope via least squares over x = 0..n-1.
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return info
	}
	slope := (fn*sumXY - sumX*sumY) / denom

	// 2. Express the fitted movement relative to the series mean.
	mean := sumY / fn
	if mean == 0 {
		return info
	}
	info.PercentChange = slope * float64(n-1) / mean * 100

	// 3. Classify.
	switch {
	case info.PercentChange > trendStableThreshold:
		info.Direction = schema.TrendIncreasing
	case info.PercentChange < -trendStableThreshold:
		info.Direction = schema.TrendDecreasing
	}
	return info
}
