package contract

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/devexhq/pulse/schema"
)

// MockRecordStore is a mock implementation of RecordStore for testing.
type MockRecordStore struct {
	mock.Mock
}

var _ RecordStore = &MockRecordStore{} // Compile-time check

// Upsert implements the RecordStore interface.
func (m *MockRecordStore) Upsert(ctx context.Context, record schema.EventRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// Query implements the RecordStore interface.
func (m *MockRecordStore) Query(ctx context.Context, filter QueryFilter) ([]schema.EventRecord, error) {
	args := m.Called(ctx, filter)
	records, _ := args.Get(0).([]schema.EventRecord)
	return records, args.Error(1)
}

// DataVersion implements the RecordStore interface.
func (m *MockRecordStore) DataVersion(ctx context.Context, repository string) (int64, error) {
	args := m.Called(ctx, repository)
	return args.Get(0).(int64), args.Error(1)
}

// Close implements the RecordStore interface.
func (m *MockRecordStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockTeamResolver is a mock implementation of TeamResolver for testing.
type MockTeamResolver struct {
	mock.Mock
}

var _ TeamResolver = &MockTeamResolver{} // Compile-time check

// Resolve implements the TeamResolver interface.
func (m *MockTeamResolver) Resolve(author string) string {
	args := m.Called(author)
	return args.String(0)
}

// Members implements the TeamResolver interface.
func (m *MockTeamResolver) Members(team string) []string {
	args := m.Called(team)
	members, _ := args.Get(0).([]string)
	return members
}

// MockMetricCache is a mock implementation of MetricCache for testing.
type MockMetricCache struct {
	mock.Mock
}

var _ MetricCache = &MockMetricCache{} // Compile-time check

// GetOrCompute implements the MetricCache interface.
func (m *MockMetricCache) GetOrCompute(key CacheKey, compute func() ([]schema.MetricResult, error)) ([]schema.MetricResult, error) {
	args := m.Called(key, compute)
	results, _ := args.Get(0).([]schema.MetricResult)
	return results, args.Error(1)
}

// Len implements the MetricCache interface.
func (m *MockMetricCache) Len() int {
	args := m.Called()
	return args.Int(0)
}

// Purge implements the MetricCache interface.
func (m *MockMetricCache) Purge() {
	m.Called()
}
