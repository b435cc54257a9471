// Package contract provides interfaces and shared utilities for the pulse CLI's internal architecture.
package contract

import (
	"context"

	"github.com/devexhq/pulse/schema"
)

// QueryFilter narrows a record-store query. Zero values mean "no filter":
// an empty Repository or Team matches everything, an empty Sources slice
// matches all source types, and a zero Window endpoint leaves that side
// of the interval open.
type QueryFilter struct {
	Repository string
	Team       string
	Sources    []schema.SourceType
	Window     schema.Window
}

// RecordStore is the durable collection of normalized event records.
// This allows the metric engine to be tested against an in-memory store
// and deployed against a SQL-backed one.
type RecordStore interface {
	// Upsert inserts or replaces a record by id. Repeated upserts of the
	// same id are idempotent (last write wins on updated_at) but each one
	// still advances the repository's data version.
	Upsert(ctx context.Context, record schema.EventRecord) error

	// Query returns records matching the filter. The result is filtered
	// by CreatedAt when the filter window is bounded; callers must treat
	// the sequence as unordered.
	Query(ctx context.Context, filter QueryFilter) ([]schema.EventRecord, error)

	// DataVersion returns the monotonically increasing counter for the
	// repository, bumped on every upsert affecting it. The empty string
	// returns the version across all repositories.
	DataVersion(ctx context.Context, repository string) (int64, error)

	// Close closes the underlying connection.
	Close() error
}

// TeamResolver maps author identities to team names using static
// configuration. Resolution is a pure lookup with no I/O at call time.
type TeamResolver interface {
	// Resolve returns the author's team, or "unassigned" if unmapped.
	Resolve(author string) string

	// Members returns the configured member identities of a team.
	Members(team string) []string
}

// CacheKey identifies one memoized metric computation. Results computed
// against an older DataVersion are never served for a newer one.
type CacheKey struct {
	Metric      schema.MetricName
	Group       string // grouping dimension, not an individual group value
	Window      schema.Window
	DataVersion int64
}

// MetricCache memoizes windowed metric computations.
type MetricCache interface {
	// GetOrCompute returns the cached results for key, or runs compute
	// and stores its output. Concurrent callers for the same key are
	// serialized so compute runs at most once per distinct key.
	GetOrCompute(key CacheKey, compute func() ([]schema.MetricResult, error)) ([]schema.MetricResult, error)

	// Len returns the number of live cache entries.
	Len() int

	// Purge drops all cached entries.
	Purge()
}
