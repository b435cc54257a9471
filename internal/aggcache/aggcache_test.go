package aggcache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/schema"
)

func testKey(metric schema.MetricName, version int64) contract.CacheKey {
	return contract.CacheKey{
		Metric: metric,
		Group:  string(schema.GroupByRepo),
		Window: schema.NewWindow(
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		),
		DataVersion: version,
	}
}

func testResults(metric schema.MetricName) []schema.MetricResult {
	return []schema.MetricResult{{Metric: metric, Group: "acme/api", Value: 4}}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	cache := NewLRUCache(0)
	key := testKey(schema.MetricLeadTime, 1)
	var calls int

	for range 3 {
		results, err := cache.GetOrCompute(key, func() ([]schema.MetricResult, error) {
			calls++
			return testResults(schema.MetricLeadTime), nil
		})
		require.NoError(t, err)
		assert.Len(t, results, 1)
	}

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())
}

func TestGetOrComputeRecomputesOnVersionBump(t *testing.T) {
	cache := NewLRUCache(0)
	var calls int
	compute := func() ([]schema.MetricResult, error) {
		calls++
		return testResults(schema.MetricLeadTime), nil
	}

	_, err := cache.GetOrCompute(testKey(schema.MetricLeadTime, 1), compute)
	require.NoError(t, err)
	_, err = cache.GetOrCompute(testKey(schema.MetricLeadTime, 2), compute)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, cache.Len())
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	cache := NewLRUCache(0)
	key := testKey(schema.MetricLeadTime, 1)

	_, err := cache.GetOrCompute(key, func() ([]schema.MetricResult, error) {
		return nil, errors.New("store unavailable")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	results, err := cache.GetOrCompute(key, func() ([]schema.MetricResult, error) {
		return testResults(schema.MetricLeadTime), nil
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestGetOrComputeReleasesInflightOnError(t *testing.T) {
	cache := NewLRUCache(0)

	// Failed computes must not accumulate per-key state.
	for i := range 5 {
		_, err := cache.GetOrCompute(testKey(schema.MetricLeadTime, int64(i)), func() ([]schema.MetricResult, error) {
			return nil, errors.New("store unavailable")
		})
		assert.Error(t, err)
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	assert.Empty(t, cache.inflight)
}

func TestLRUEviction(t *testing.T) {
	cache := NewLRUCache(2)
	compute := func(m schema.MetricName) func() ([]schema.MetricResult, error) {
		return func() ([]schema.MetricResult, error) { return testResults(m), nil }
	}

	_, _ = cache.GetOrCompute(testKey(schema.MetricLeadTime, 1), compute(schema.MetricLeadTime))
	_, _ = cache.GetOrCompute(testKey(schema.MetricMergeRate, 1), compute(schema.MetricMergeRate))

	// Touch lead_time so merge_rate becomes the eviction candidate.
	var leadTimeCalls int
	_, _ = cache.GetOrCompute(testKey(schema.MetricLeadTime, 1), func() ([]schema.MetricResult, error) {
		leadTimeCalls++
		return nil, nil
	})
	assert.Equal(t, 0, leadTimeCalls)

	_, _ = cache.GetOrCompute(testKey(schema.MetricThroughput, 1), compute(schema.MetricThroughput))
	assert.Equal(t, 2, cache.Len())

	var mergeRateCalls int
	_, _ = cache.GetOrCompute(testKey(schema.MetricMergeRate, 1), func() ([]schema.MetricResult, error) {
		mergeRateCalls++
		return testResults(schema.MetricMergeRate), nil
	})
	assert.Equal(t, 1, mergeRateCalls)
}

func TestConcurrentSameKeyComputesOnce(t *testing.T) {
	cache := NewLRUCache(0)
	key := testKey(schema.MetricLeadTime, 1)
	var calls atomic.Int32

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := cache.GetOrCompute(key, func() ([]schema.MetricResult, error) {
				calls.Add(1)
				time.Sleep(5 * time.Millisecond)
				return testResults(schema.MetricLeadTime), nil
			})
			assert.NoError(t, err)
			assert.Len(t, results, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestPurge(t *testing.T) {
	cache := NewLRUCache(0)
	_, _ = cache.GetOrCompute(testKey(schema.MetricLeadTime, 1), func() ([]schema.MetricResult, error) {
		return testResults(schema.MetricLeadTime), nil
	})
	require.Equal(t, 1, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}
