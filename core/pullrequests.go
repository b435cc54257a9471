package core

import (
	"context"

	"github.com/devexhq/pulse/core/stats"
	"github.com/devexhq/pulse/schema"
)

// LeadTime computes the distribution of merge latency, in seconds, for
// pull requests merged inside the window. Open and unmerged PRs carry
// no sample.
func (e *Engine) LeadTime(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricLeadTime, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.PullRequestSource)
		if err != nil {
			return nil, err
		}

		samples := make(map[string][]float64)
		for i := range records {
			pr := records[i].PullRequest
			if pr == nil || pr.MergedAt == nil || !e.cfg.Window.Contains(*pr.MergedAt) {
				continue
			}
			seconds := int64(pr.MergedAt.Sub(records[i].CreatedAt).Seconds())
			if seconds < 0 {
				continue
			}
			key := e.groupKey(&records[i])
			samples[key] = append(samples[key], float64(seconds))
		}
		return e.distributionResults(schema.MetricLeadTime, schema.UnitSeconds, samples), nil
	})
}

// ReviewCycles computes the distribution of review rounds per pull
// request created inside the window.
func (e *Engine) ReviewCycles(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricReviewCycles, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.PullRequestSource)
		if err != nil {
			return nil, err
		}

		samples := make(map[string][]float64)
		for i := range records {
			if records[i].PullRequest == nil || !e.cfg.Window.Contains(records[i].CreatedAt) {
				continue
			}
			key := e.groupKey(&records[i])
			samples[key] = append(samples[key], float64(records[i].PullRequest.ReviewCount))
		}
		return e.distributionResults(schema.MetricReviewCycles, schema.UnitCount, samples), nil
	})
}

// SizeDistribution counts pull requests created inside the window per
// size bucket. Every bucket appears in the output, zero-filled, so
// consumers can chart without key checks.
func (e *Engine) SizeDistribution(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricSizeDistribution, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.PullRequestSource)
		if err != nil {
			return nil, err
		}

		buckets := make(map[string]map[string]int)
		for i := range records {
			if records[i].PullRequest == nil || !e.cfg.Window.Contains(records[i].CreatedAt) {
				continue
			}
			key := e.groupKey(&records[i])
			if buckets[key] == nil {
				buckets[key] = make(map[string]int)
				for _, b := range schema.AllSizeBuckets {
					buckets[key][string(b)] = 0
				}
			}
			bucket := e.cfg.SizeThresholds.BucketFor(records[i].Churn())
			buckets[key][string(bucket)]++
		}

		if len(buckets) == 0 {
			return e.noDataOnly(schema.MetricSizeDistribution), nil
		}

		var results []schema.MetricResult
		for _, group := range sortedKeys(buckets) {
			results = append(results, schema.MetricResult{
				Metric:  schema.MetricSizeDistribution,
				Group:   group,
				Window:  e.cfg.Window,
				Unit:    schema.UnitCount,
				Buckets: buckets[group],
			})
		}
		return results, nil
	})
}

// MergeRate computes merged-over-total for pull requests created inside
// the window. Groups with no PRs report no data rather than zero.
func (e *Engine) MergeRate(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricMergeRate, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.PullRequestSource)
		if err != nil {
			return nil, err
		}

		type tally struct{ merged, total int }
		counts := make(map[string]*tally)
		for i := range records {
			if records[i].PullRequest == nil || !e.cfg.Window.Contains(records[i].CreatedAt) {
				continue
			}
			key := e.groupKey(&records[i])
			if counts[key] == nil {
				counts[key] = &tally{}
			}
			counts[key].total++
			if records[i].PullRequest.MergedAt != nil {
				counts[key].merged++
			}
		}

		if len(counts) == 0 {
			return e.noDataOnly(schema.MetricMergeRate), nil
		}

		var results []schema.MetricResult
		for _, group := range sortedKeys(counts) {
			c := counts[group]
			results = append(results, schema.MetricResult{
				Metric: schema.MetricMergeRate,
				Group:  group,
				Window: e.cfg.Window,
				Unit:   schema.UnitRatio,
				Value:  float64(c.merged) / float64(c.total),
			})
		}
		return results, nil
	})
}

// Throughput computes merged pull requests per day, with a trend fitted
// over the zero-filled daily series.
func (e *Engine) Throughput(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricThroughput, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.PullRequestSource)
		if err != nil {
			return nil, err
		}

		merges := make(map[string][]float64)
		for i := range records {
			pr := records[i].PullRequest
			if pr == nil || pr.MergedAt == nil || !e.cfg.Window.Contains(*pr.MergedAt) {
				continue
			}
			key := e.groupKey(&records[i])
			if merges[key] == nil {
				merges[key] = dailySeries(e.cfg.Window)
			}
			merges[key][dayIndex(e.cfg.Window, *pr.MergedAt)]++
		}

		if len(merges) == 0 {
			return e.noDataOnly(schema.MetricThroughput), nil
		}

		days := e.cfg.Window.Days()
		var results []schema.MetricResult
		for _, group := range sortedKeys(merges) {
			series := merges[group]
			var total float64
			for _, v := range series {
				total += v
			}
			results = append(results, schema.MetricResult{
				Metric: schema.MetricThroughput,
				Group:  group,
				Window: e.cfg.Window,
				Unit:   schema.UnitPerDay,
				Value:  total / days,
				Trend:  stats.Trend(series),
			})
		}
		return results, nil
	})
}
