package core

import (
	"context"
	"time"

	"github.com/devexhq/pulse/core/stats"
	"github.com/devexhq/pulse/schema"
)

// IssueVelocity counts issues completed inside the window. Value is
// the completed count; Summary describes the spread of story points
// per completed issue, so Mean times Count recovers the point total.
func (e *Engine) IssueVelocity(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricIssueVelocity, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.IssueSource)
		if err != nil {
			return nil, err
		}

		samples := make(map[string][]float64)
		for i := range records {
			record := &records[i]
			if record.Issue == nil || record.State != schema.IssueStateDone {
				continue
			}
			if record.ClosedAt == nil || !e.cfg.Window.Contains(*record.ClosedAt) {
				continue
			}
			key := e.groupKey(record)
			samples[key] = append(samples[key], record.Issue.StoryPoints)
		}

		if len(samples) == 0 {
			return e.noDataOnly(schema.MetricIssueVelocity), nil
		}

		var results []schema.MetricResult
		for _, group := range sortedKeys(samples) {
			results = append(results, schema.MetricResult{
				Metric:  schema.MetricIssueVelocity,
				Group:   group,
				Window:  e.cfg.Window,
				Unit:    schema.UnitCount,
				Value:   float64(len(samples[group])),
				Summary: stats.Summarize(samples[group]),
			})
		}
		return results, nil
	})
}

// BacklogHealth counts open issues that have gone stale by the window
// end. Value is the stale count; Buckets carry both the open and stale
// counts, so the stale-over-open ratio stays derivable. No open issues
// means no data, not a clean backlog.
func (e *Engine) BacklogHealth(ctx context.Context) ([]schema.MetricResult, error) {
	return e.cached(ctx, schema.MetricBacklogHealth, func() ([]schema.MetricResult, error) {
		records, err := e.fetch(ctx, schema.IssueSource)
		if err != nil {
			return nil, err
		}

		cutoff := e.cfg.Window.End
		staleBefore := cutoff.Add(-e.cfg.Staleness)

		type tally struct{ open, stale int }
		counts := make(map[string]*tally)
		for i := range records {
			record := &records[i]
			if record.Issue == nil || !openAt(record, cutoff) {
				continue
			}
			key := e.groupKey(record)
			if counts[key] == nil {
				counts[key] = &tally{}
			}
			counts[key].open++
			if record.CreatedAt.Before(staleBefore) {
				counts[key].stale++
			}
		}

		if len(counts) == 0 {
			return e.noDataOnly(schema.MetricBacklogHealth), nil
		}

		var results []schema.MetricResult
		for _, group := range sortedKeys(counts) {
			c := counts[group]
			results = append(results, schema.MetricResult{
				Metric: schema.MetricBacklogHealth,
				Group:  group,
				Window: e.cfg.Window,
				Unit:   schema.UnitCount,
				Value:  float64(c.stale),
				Buckets: map[string]int{
					"open":  c.open,
					"stale": c.stale,
				},
			})
		}
		return results, nil
	})
}

// openAt reports whether an issue existed and was still unresolved at
// the given instant.
func openAt(record *schema.EventRecord, at time.Time) bool {
	if !record.CreatedAt.Before(at) {
		return false
	}
	if record.ClosedAt != nil {
		return !record.ClosedAt.Before(at)
	}
	return record.State != schema.IssueStateDone
}
