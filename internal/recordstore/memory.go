// Package recordstore has the durable collections of normalized event
// records. A store supports idempotent upserts keyed by record id and
// keeps one monotonically increasing data version per repository so
// readers can detect staleness without comparing row contents.
package recordstore

import (
	"context"
	"sync"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/schema"
)

// MemoryStore keeps all records in process memory. It is the default
// backend for one-shot CLI runs against freshly ingested data, and the
// reference semantics the SQL store is tested against.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]schema.EventRecord
	versions map[string]int64
	resolver contract.TeamResolver
}

var _ contract.RecordStore = &MemoryStore{} // Compile-time check

// NewMemoryStore builds an empty in-memory store. The resolver is used
// only to expand team filters at query time and may be nil.
func NewMemoryStore(resolver contract.TeamResolver) *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]schema.EventRecord),
		versions: make(map[string]int64),
		resolver: resolver,
	}
}

// Upsert inserts or replaces a record by id and bumps the repository's
// data version. Replaying the same record is idempotent for the stored
// row but still advances the version.
func (s *MemoryStore) Upsert(_ context.Context, record schema.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = record
	s.versions[record.Repository]++
	return nil
}

// Query returns all records matching the filter, in no particular order.
func (s *MemoryStore) Query(_ context.Context, filter contract.QueryFilter) ([]schema.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schema.EventRecord
	for _, record := range s.records {
		if matchesFilter(record, filter, s.resolver) {
			out = append(out, record)
		}
	}
	return out, nil
}

// DataVersion returns the repository's version counter, or the sum over
// all repositories when repository is empty. The sum is monotonic since
// every upsert increments exactly one counter.
func (s *MemoryStore) DataVersion(_ context.Context, repository string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if repository != "" {
		return s.versions[repository], nil
	}
	var total int64
	for _, v := range s.versions {
		total += v
	}
	return total, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// matchesFilter applies the query filter to a single record. Shared by
// the memory store and the SQL store's post-scan filtering.
func matchesFilter(record schema.EventRecord, filter contract.QueryFilter, resolver contract.TeamResolver) bool {
	if filter.Repository != "" && record.Repository != filter.Repository {
		return false
	}
	if len(filter.Sources) > 0 {
		found := false
		for _, src := range filter.Sources {
			if record.Source == src {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Team != "" {
		if resolver == nil || resolver.Resolve(record.Author) != filter.Team {
			return false
		}
	}
	if !filter.Window.Start.IsZero() && record.CreatedAt.Before(filter.Window.Start) {
		return false
	}
	if !filter.Window.End.IsZero() && !record.CreatedAt.Before(filter.Window.End) {
		return false
	}
	return true
}
