package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devexhq/pulse/schema"
)

func sampleResults() []schema.MetricResult {
	window := schema.NewWindow(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	)
	return []schema.MetricResult{
		{
			Metric: schema.MetricLeadTime, Group: "acme/api", Window: window,
			Unit:    schema.UnitSeconds,
			Summary: &schema.DistributionSummary{Count: 2, Min: 7200, P50: 14400, P90: 20160, Max: 21600, Mean: 14400},
		},
		{
			Metric: schema.MetricSizeDistribution, Group: "acme/api", Window: window,
			Unit:    schema.UnitCount,
			Buckets: map[string]int{"XS": 1, "S": 0, "M": 0, "L": 0, "XL": 2},
		},
	}
}

func TestMetricRowStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	rowSchema := parquet.SchemaOf(new(MetricRow))
	require.NotNil(t, rowSchema)

	expectedColumns := []string{
		"metric",
		"group_key",
		"window_start",
		"window_end",
		"unit",
		"no_data",
		"value",
		"sample_count",
		"p50",
		"p90",
		"mean",
		"trend_direction",
		"unresolved",
	}

	for _, colName := range expectedColumns {
		col, ok := rowSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestConvertMetricResults(t *testing.T) {
	rows := ConvertMetricResults(sampleResults())

	// One row for lead_time, one for size_distribution plus one per bucket.
	require.Len(t, rows, 7)

	assert.Equal(t, "lead_time", rows[0].Metric)
	require.NotNil(t, rows[0].SampleCount)
	assert.Equal(t, int32(2), *rows[0].SampleCount)
	require.NotNil(t, rows[0].P50)
	assert.InDelta(t, 14400, *rows[0].P50, 1e-9)

	assert.Equal(t, "size_distribution.XS", rows[2].Metric)
	assert.InDelta(t, 1, rows[2].Value, 1e-9)
	assert.Equal(t, "size_distribution.XL", rows[6].Metric)
	assert.InDelta(t, 2, rows[6].Value, 1e-9)
}

func TestWriteMetricsParquet(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "metrics.parquet")

	rows := ConvertMetricResults(sampleResults())
	require.NoError(t, WriteMetricsParquet(rows, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")
}

func TestWriteMetricsParquetRequiresPath(t *testing.T) {
	assert.Error(t, WriteMetricsParquet(nil, ""))
}
