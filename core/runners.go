package core

import (
	"context"

	"github.com/devexhq/pulse/schema"
)

// RunnerPickup computes the distribution of queue time, in seconds,
// between run creation and execution start, grouped by runner type.
// Runner metrics always group by runner type rather than the
// configured dimension, since a runner fleet cuts across repos and
// teams.
func (e *Engine) RunnerPickup(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricRunnerPickup, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.WorkflowRunSource)
		if err != nil {
			return nil, err
		}

		samples := make(map[string][]float64)
		for i := range records {
			run := records[i].WorkflowRun
			if run == nil || run.StartedAt == nil || !e.cfg.Window.Contains(records[i].CreatedAt) {
				continue
			}
			seconds := int64(run.StartedAt.Sub(records[i].CreatedAt).Seconds())
			if seconds < 0 {
				continue
			}
			samples[runnerKey(run)] = append(samples[runnerKey(run)], float64(seconds))
		}
		return e.distributionResults(schema.MetricRunnerPickup, schema.UnitSeconds, samples), nil
	})
}

// RunnerExecution computes the distribution of run duration, in
// seconds, grouped by runner type.
func (e *Engine) RunnerExecution(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricRunnerExecution, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.WorkflowRunSource)
		if err != nil {
			return nil, err
		}

		samples := make(map[string][]float64)
		for i := range records {
			run := records[i].WorkflowRun
			if run == nil || run.DurationSeconds <= 0 || !e.cfg.Window.Contains(records[i].CreatedAt) {
				continue
			}
			samples[runnerKey(run)] = append(samples[runnerKey(run)], float64(run.DurationSeconds))
		}
		return e.distributionResults(schema.MetricRunnerExecution, schema.UnitSeconds, samples), nil
	})
}

// RunnerSuccess computes the share of finished runs that succeeded,
// grouped by runner type. Cancelled runs count as neither.
func (e *Engine) RunnerSuccess(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricRunnerSuccess, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.WorkflowRunSource)
		if err != nil {
			return nil, err
		}

		success := make(map[string]int)
		finished := make(map[string]int)
		for i := range records {
			run := records[i].WorkflowRun
			if run == nil || !e.cfg.Window.Contains(records[i].CreatedAt) {
				continue
			}
			switch run.Conclusion {
			case schema.RunSuccess:
				success[runnerKey(run)]++
				finished[runnerKey(run)]++
			case schema.RunFailure:
				finished[runnerKey(run)]++
			}
		}
		if len(finished) == 0 {
			return e.noDataOnly(schema.MetricRunnerSuccess), nil
		}

		var results []schema.MetricResult
		for _, key := range sortedKeys(finished) {
			result := schema.MetricResult{
				Metric: schema.MetricRunnerSuccess,
				Group:  key,
				Window: e.cfg.Window,
				Value:  float64(success[key]) / float64(finished[key]),
				Unit:   schema.UnitRatio,
			}
			results = append(results, result)
		}
		return results, nil
	})
}

// runnerKey buckets a run by runner type, with a fallback for sources
// that do not report one.
func runnerKey(run *schema.WorkflowRunMeta) string {
	if run.RunnerType != "" {
		return run.RunnerType
	}
	return "unknown"
}
