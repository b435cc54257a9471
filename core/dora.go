package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/devexhq/pulse/core/stats"
	"github.com/devexhq/pulse/schema"
)

// deployRun is a workflow run recognized as a deployment, reduced to
// the fields the joins need.
type deployRun struct {
	repository string
	conclusion string
	createdAt  time.Time
	finishedAt time.Time
	groupKey   string
}

// isDeployRun reports whether a workflow run is a deployment, by
// case-insensitive keyword match on the workflow name.
func (e *Engine) isDeployRun(run *schema.WorkflowRunMeta) bool {
	name := strings.ToLower(run.WorkflowName)
	for _, keyword := range e.cfg.DeployKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

// runFinishedAt picks the timestamp a run is attributed to: completion
// when known, creation otherwise.
func runFinishedAt(record *schema.EventRecord) time.Time {
	if record.WorkflowRun.CompletedAt != nil {
		return *record.WorkflowRun.CompletedAt
	}
	return record.CreatedAt
}

// collectDeploys extracts deploy runs from workflow records, sorted by
// finish time. Joins scan this slice per repository.
func (e *Engine) collectDeploys(records []schema.EventRecord) []deployRun {
	var deploys []deployRun
	for i := range records {
		run := records[i].WorkflowRun
		if run == nil || !e.isDeployRun(run) {
			continue
		}
		deploys = append(deploys, deployRun{
			repository: records[i].Repository,
			conclusion: run.Conclusion,
			createdAt:  records[i].CreatedAt,
			finishedAt: runFinishedAt(&records[i]),
			groupKey:   e.groupKey(&records[i]),
		})
	}
	sort.Slice(deploys, func(i, j int) bool {
		return deploys[i].finishedAt.Before(deploys[j].finishedAt)
	})
	return deploys
}

// DeploymentFrequency computes successful deploy runs per day, with a
// trend fitted over the zero-filled daily series.
func (e *Engine) DeploymentFrequency(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricDeployFrequency, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.WorkflowRunSource)
		if err != nil {
			return nil, err
		}

		series := make(map[string][]float64)
		for _, deploy := range e.collectDeploys(records) {
			if deploy.conclusion != schema.RunSuccess || !e.cfg.Window.Contains(deploy.finishedAt) {
				continue
			}
			if series[deploy.groupKey] == nil {
				series[deploy.groupKey] = dailySeries(e.cfg.Window)
			}
			series[deploy.groupKey][dayIndex(e.cfg.Window, deploy.finishedAt)]++
		}

		if len(series) == 0 {
			return e.noDataOnly(schema.MetricDeployFrequency), nil
		}

		days := e.cfg.Window.Days()
		var results []schema.MetricResult
		for _, group := range sortedKeys(series) {
			var total float64
			for _, v := range series[group] {
				total += v
			}
			results = append(results, schema.MetricResult{
				Metric: schema.MetricDeployFrequency,
				Group:  group,
				Window: e.cfg.Window,
				Unit:   schema.UnitPerDay,
				Value:  total / days,
				Trend:  stats.Trend(series[group]),
			})
		}
		return results, nil
	})
}

// LeadTimeForChanges measures, for each pull request merged inside the
// window, its own open-to-merge time, restricted to merges followed by
// a successful deploy run of the repository created within the
// lookahead. Merged PRs with no qualifying deploy are excluded from
// the sample.
func (e *Engine) LeadTimeForChanges(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricChangeLeadTime, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.PullRequestSource, schema.WorkflowRunSource)
		if err != nil {
			return nil, err
		}
		deploys := e.collectDeploys(records)

		samples := make(map[string][]float64)
		for i := range records {
			pr := records[i].PullRequest
			if pr == nil || pr.MergedAt == nil || !e.cfg.Window.Contains(*pr.MergedAt) {
				continue
			}
			if !deployFollows(deploys, records[i].Repository, *pr.MergedAt, e.cfg.DeployLookahead) {
				continue
			}
			seconds := int64(pr.MergedAt.Sub(records[i].CreatedAt).Seconds())
			if seconds < 0 {
				continue
			}
			key := e.groupKey(&records[i])
			samples[key] = append(samples[key], float64(seconds))
		}
		return e.distributionResults(schema.MetricChangeLeadTime, schema.UnitSeconds, samples), nil
	})
}

// deployFollows reports whether repository has a successful deploy run
// created in [after, after+lookahead]. The match is on run creation,
// not completion, so the finish-time sort order gives no early exit.
func deployFollows(deploys []deployRun, repository string, after time.Time, lookahead time.Duration) bool {
	deadline := after.Add(lookahead)
	for _, deploy := range deploys {
		if deploy.repository != repository || deploy.conclusion != schema.RunSuccess {
			continue
		}
		if deploy.createdAt.Before(after) || deploy.createdAt.After(deadline) {
			continue
		}
		return true
	}
	return false
}

// ChangeFailureRate computes failed deploys over all finished deploys
// inside the window. Cancelled runs count toward neither side. A group
// with no finished deploys is genuinely undefined and reports no data.
func (e *Engine) ChangeFailureRate(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricChangeFailure, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.WorkflowRunSource)
		if err != nil {
			return nil, err
		}

		type tally struct{ failed, total int }
		counts := make(map[string]*tally)
		for _, deploy := range e.collectDeploys(records) {
			if !e.cfg.Window.Contains(deploy.finishedAt) {
				continue
			}
			if deploy.conclusion != schema.RunSuccess && deploy.conclusion != schema.RunFailure {
				continue
			}
			if counts[deploy.groupKey] == nil {
				counts[deploy.groupKey] = &tally{}
			}
			counts[deploy.groupKey].total++
			if deploy.conclusion == schema.RunFailure {
				counts[deploy.groupKey].failed++
			}
		}

		if len(counts) == 0 {
			return e.noDataOnly(schema.MetricChangeFailure), nil
		}

		var results []schema.MetricResult
		for _, group := range sortedKeys(counts) {
			c := counts[group]
			results = append(results, schema.MetricResult{
				Metric: schema.MetricChangeFailure,
				Group:  group,
				Window: e.cfg.Window,
				Unit:   schema.UnitRatio,
				Value:  float64(c.failed) / float64(c.total),
			})
		}
		return results, nil
	})
}

// TimeToRestore measures, for each failed deploy inside the window, the
// time until the next successful deploy of the same repository. The
// search is unbounded past the window end. Failures with no later
// success are excluded from the distribution and surfaced through the
// Unresolved count.
func (e *Engine) TimeToRestore(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricTimeToRestore, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.WorkflowRunSource)
		if err != nil {
			return nil, err
		}
		deploys := e.collectDeploys(records)

		samples := make(map[string][]float64)
		unresolved := make(map[string]int)
		for _, deploy := range deploys {
			if deploy.conclusion != schema.RunFailure || !e.cfg.Window.Contains(deploy.finishedAt) {
				continue
			}
			restoredAt, ok := nextSuccessAfter(deploys, deploy.repository, deploy.finishedAt)
			if !ok {
				unresolved[deploy.groupKey]++
				if _, seen := samples[deploy.groupKey]; !seen {
					samples[deploy.groupKey] = nil
				}
				continue
			}
			seconds := int64(restoredAt.Sub(deploy.finishedAt).Seconds())
			samples[deploy.groupKey] = append(samples[deploy.groupKey], float64(seconds))
		}

		if len(samples) == 0 {
			return e.noDataOnly(schema.MetricTimeToRestore), nil
		}

		var results []schema.MetricResult
		for _, group := range sortedKeys(samples) {
			summary := stats.Summarize(samples[group])
			result := schema.MetricResult{
				Metric:     schema.MetricTimeToRestore,
				Group:      group,
				Window:     e.cfg.Window,
				Unit:       schema.UnitSeconds,
				Summary:    summary,
				Unresolved: unresolved[group],
			}
			result.NoData = summary == nil
			results = append(results, result)
		}
		return results, nil
	})
}

// nextSuccessAfter finds the earliest successful deploy of repository
// strictly after the given failure time, however far out it is.
func nextSuccessAfter(deploys []deployRun, repository string, after time.Time) (time.Time, bool) {
	for _, deploy := range deploys {
		if deploy.repository != repository || deploy.conclusion != schema.RunSuccess {
			continue
		}
		if deploy.finishedAt.After(after) {
			return deploy.finishedAt, true
		}
	}
	return time.Time{}, false
}
