package core

import (
	"context"

	"github.com/devexhq/pulse/core/stats"
	"github.com/devexhq/pulse/schema"
)

// CommitChurn totals lines added plus removed across commits authored
// inside the window. Value carries the line total; Summary describes
// churn per commit, so outliers stand out against the median.
func (e *Engine) CommitChurn(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricCommitChurn, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.CommitSource)
		if err != nil {
			return nil, err
		}

		samples := make(map[string][]float64)
		for i := range records {
			if records[i].Commit == nil || !e.cfg.Window.Contains(records[i].CreatedAt) {
				continue
			}
			key := e.groupKey(&records[i])
			samples[key] = append(samples[key], float64(records[i].Churn()))
		}

		if len(samples) == 0 {
			return e.noDataOnly(schema.MetricCommitChurn), nil
		}

		var results []schema.MetricResult
		for _, group := range sortedKeys(samples) {
			var total float64
			for _, churn := range samples[group] {
				total += churn
			}
			results = append(results, schema.MetricResult{
				Metric:  schema.MetricCommitChurn,
				Group:   group,
				Window:  e.cfg.Window,
				Unit:    schema.UnitLines,
				Value:   total,
				Summary: stats.Summarize(samples[group]),
			})
		}
		return results, nil
	})
}
