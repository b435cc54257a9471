package core

import (
	"context"
	"fmt"

	"github.com/devexhq/pulse/schema"
)

// MetricFunc computes one metric across all groups.
type MetricFunc func(ctx context.Context) ([]schema.MetricResult, error)

// Metric families as exposed by the CLI subcommands.
var (
	PullRequestMetrics = []schema.MetricName{
		schema.MetricLeadTime,
		schema.MetricReviewCycles,
		schema.MetricSizeDistribution,
		schema.MetricMergeRate,
		schema.MetricThroughput,
	}
	IssueMetrics = []schema.MetricName{
		schema.MetricIssueVelocity,
		schema.MetricBacklogHealth,
	}
	CommitMetrics = []schema.MetricName{
		schema.MetricCommitChurn,
	}
	DORAMetrics = []schema.MetricName{
		schema.MetricDeployFrequency,
		schema.MetricChangeLeadTime,
		schema.MetricChangeFailure,
		schema.MetricTimeToRestore,
	}
	RunnerMetrics = []schema.MetricName{
		schema.MetricRunnerPickup,
		schema.MetricRunnerExecution,
		schema.MetricRunnerSuccess,
	}
)

// registry maps metric names to their implementations.
func (e *Engine) registry() map[schema.MetricName]MetricFunc {
	return map[schema.MetricName]MetricFunc{
		schema.MetricLeadTime:         e.LeadTime,
		schema.MetricReviewCycles:     e.ReviewCycles,
		schema.MetricSizeDistribution: e.SizeDistribution,
		schema.MetricMergeRate:        e.MergeRate,
		schema.MetricThroughput:       e.Throughput,
		schema.MetricIssueVelocity:    e.IssueVelocity,
		schema.MetricBacklogHealth:    e.BacklogHealth,
		schema.MetricCommitChurn:      e.CommitChurn,
		schema.MetricDeployFrequency:  e.DeploymentFrequency,
		schema.MetricChangeLeadTime:   e.LeadTimeForChanges,
		schema.MetricChangeFailure:    e.ChangeFailureRate,
		schema.MetricTimeToRestore:    e.TimeToRestore,
		schema.MetricRunnerPickup:     e.RunnerPickup,
		schema.MetricRunnerExecution:  e.RunnerExecution,
		schema.MetricRunnerSuccess:    e.RunnerSuccess,
	}
}

// Compute runs the named metrics in order and concatenates their
// per-group results. Unknown names fail fast before any computation.
func (e *Engine) Compute(ctx context.Context, names []schema.MetricName) ([]schema.MetricResult, error) {
	registry := e.registry()
	for _, name := range names {
		if _, ok := registry[name]; !ok {
			return nil, fmt.Errorf("unknown metric: %s", name)
		}
	}

	var all []schema.MetricResult
	for _, name := range names {
		results, err := registry[name](ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to compute %s: %w", name, err)
		}
		all = append(all, results...)
	}
	return all, nil
}

// AllMetricNames lists every metric the engine can compute, in the
// order the families are documented.
func AllMetricNames() []schema.MetricName {
	var names []schema.MetricName
	names = append(names, PullRequestMetrics...)
	names = append(names, IssueMetrics...)
	names = append(names, CommitMetrics...)
	names = append(names, DORAMetrics...)
	names = append(names, RunnerMetrics...)
	return names
}
