// Package core computes delivery metrics from normalized event records.
// Every metric follows the same shape: fetch the relevant sources for
// the configured repository, bucket records into groups, compute per
// group, and return one result per group with explicit no-data markers.
package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/devexhq/pulse/core/stats"
	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/schema"
)

// Engine executes metric computations against a record store, with
// results memoized per (metric, grouping, window, data version).
type Engine struct {
	store    contract.RecordStore
	cache    contract.MetricCache
	resolver contract.TeamResolver
	cfg      *contract.Config
}

// NewEngine wires the engine to its store, cache and team resolver.
func NewEngine(store contract.RecordStore, cache contract.MetricCache, resolver contract.TeamResolver, cfg *contract.Config) *Engine {
	return &Engine{store: store, cache: cache, resolver: resolver, cfg: cfg}
}

// cached memoizes one metric computation. The cache key carries the
// store's current data version, so any upsert since the last run turns
// the lookup into a miss and the stale entry ages out by LRU.
func (e *Engine) cached(ctx context.Context, metric schema.MetricName, compute func() ([]schema.MetricResult, error)) ([]schema.MetricResult, error) {
	version, err := e.store.DataVersion(ctx, e.cfg.Repository)
	if err != nil {
		return nil, fmt.Errorf("failed to read data version: %w", err)
	}

	key := contract.CacheKey{
		Metric:      metric,
		Group:       string(e.cfg.GroupBy),
		Window:      e.cfg.Window,
		DataVersion: version,
	}
	return e.cache.GetOrCompute(key, compute)
}

// fetch loads all records of the given sources for the configured
// repository, without a window bound. Metrics window on different
// timestamps (merge time, close time, run completion), and restore
// time even joins failures to successes past the window end, so the
// window is applied per metric rather than at the store.
func (e *Engine) fetch(ctx context.Context, sources ...schema.SourceType) ([]schema.EventRecord, error) {
	return e.store.Query(ctx, contract.QueryFilter{
		Repository: e.cfg.Repository,
		Sources:    sources,
	})
}

// groupKey buckets a record by the configured grouping dimension.
func (e *Engine) groupKey(record *schema.EventRecord) string {
	switch e.cfg.GroupBy {
	case schema.GroupByTeam:
		return e.resolver.Resolve(record.Author)
	case schema.GroupByAuthor:
		return record.Author
	case schema.GroupByNone:
		return schema.UngroupedKey
	default:
		return record.Repository
	}
}

// groupRecords splits records into per-group slices.
func (e *Engine) groupRecords(records []schema.EventRecord) map[string][]schema.EventRecord {
	groups := make(map[string][]schema.EventRecord)
	for i := range records {
		key := e.groupKey(&records[i])
		groups[key] = append(groups[key], records[i])
	}
	return groups
}

// sortedKeys returns group names in stable display order.
func sortedKeys[V any](groups map[string]V) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// dailySeries returns a zero-filled slice with one cell per day of the
// window, a trailing partial day included.
func dailySeries(w schema.Window) []float64 {
	days := int(math.Ceil(w.Days()))
	if days < 1 {
		days = 1
	}
	return make([]float64, days)
}

// dayIndex maps a timestamp inside the window to its day cell.
func dayIndex(w schema.Window, t time.Time) int {
	idx := int(t.Sub(w.Start).Hours() / 24)
	if idx < 0 {
		return 0
	}
	if max := int(math.Ceil(w.Days())) - 1; idx > max {
		return max
	}
	return idx
}

// noDataOnly is the result set for a metric with no qualifying records
// in any group.
func (e *Engine) noDataOnly(metric schema.MetricName) []schema.MetricResult {
	return []schema.MetricResult{schema.NoDataResult(metric, schema.UngroupedKey, e.cfg.Window)}
}

// distributionResults builds one summary result per group from sample
// slices, emitting an explicit no-data result for empty groups.
func (e *Engine) distributionResults(metric schema.MetricName, unit string, samples map[string][]float64) []schema.MetricResult {
	if len(samples) == 0 {
		return e.noDataOnly(metric)
	}

	var results []schema.MetricResult
	for _, group := range sortedKeys(samples) {
		summary := stats.Summarize(samples[group])
		if summary == nil {
			results = append(results, schema.NoDataResult(metric, group, e.cfg.Window))
			continue
		}
		results = append(results, schema.MetricResult{
			Metric:  metric,
			Group:   group,
			Window:  e.cfg.Window,
			Unit:    unit,
			Summary: summary,
		})
	}
	return results
}
