// Package parquet provides data structures and functions for exporting
// computed metrics to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/devexhq/pulse/schema"
)

// MetricRow is the flattened, columnar form of one metric result.
// Distribution fields are nullable so scalar metrics leave them unset.
type MetricRow struct {
	// Metric is the metric name, e.g. lead_time or deploy_frequency
	Metric string `parquet:"metric,snappy"`

	// GroupKey is the repo, team or author the row describes
	GroupKey string `parquet:"group_key,snappy"`

	// WindowStart is the inclusive start of the query window
	WindowStart time.Time `parquet:"window_start,snappy"`

	// WindowEnd is the exclusive end of the query window
	WindowEnd time.Time `parquet:"window_end,snappy"`

	// Unit is the display unit of Value and the distribution fields
	Unit string `parquet:"unit,snappy"`

	// NoData marks a group with nothing to compute
	NoData bool `parquet:"no_data,snappy"`

	// Value is the scalar result for rate and total metrics
	Value float64 `parquet:"value,snappy"`

	// SampleCount is the distribution sample size (nullable)
	SampleCount *int32 `parquet:"sample_count,optional,snappy"`

	// P50 is the interpolated median (nullable)
	P50 *float64 `parquet:"p50,optional,snappy"`

	// P90 is the interpolated 90th percentile (nullable)
	P90 *float64 `parquet:"p90,optional,snappy"`

	// Mean is the sample mean (nullable)
	Mean *float64 `parquet:"mean,optional,snappy"`

	// TrendDirection is increasing, decreasing or stable (nullable)
	TrendDirection *string `parquet:"trend_direction,optional,snappy"`

	// Unresolved counts failures with no later recovery
	Unresolved int32 `parquet:"unresolved,snappy"`
}

// ConvertMetricResults flattens metric results into Parquet rows.
// Bucket counts expand to one row per bucket with the bucket name
// appended to the metric, which keeps the schema flat.
func ConvertMetricResults(results []schema.MetricResult) []MetricRow {
	rows := make([]MetricRow, 0, len(results))
	for i := range results {
		r := &results[i]
		row := MetricRow{
			Metric:      string(r.Metric),
			GroupKey:    r.Group,
			WindowStart: r.Window.Start,
			WindowEnd:   r.Window.End,
			Unit:        r.Unit,
			NoData:      r.NoData,
			Value:       r.Value,
			Unresolved:  int32(r.Unresolved),
		}
		if r.Summary != nil {
			count := int32(r.Summary.Count)
			p50, p90, mean := r.Summary.P50, r.Summary.P90, r.Summary.Mean
			row.SampleCount = &count
			row.P50 = &p50
			row.P90 = &p90
			row.Mean = &mean
		}
		if r.Trend != nil {
			direction := r.Trend.Direction
			row.TrendDirection = &direction
		}
		rows = append(rows, row)

		for _, bucket := range schema.AllSizeBuckets {
			if count, ok := r.Buckets[string(bucket)]; ok {
				rows = append(rows, MetricRow{
					Metric:      fmt.Sprintf("%s.%s", r.Metric, bucket),
					GroupKey:    r.Group,
					WindowStart: r.Window.Start,
					WindowEnd:   r.Window.End,
					Unit:        schema.UnitCount,
					Value:       float64(count),
				})
			}
		}
	}
	return rows
}

// WriteMetricsParquet writes metric rows to a Parquet file.
func WriteMetricsParquet(rows []MetricRow, outputPath string) error {
	if outputPath == "" {
		return errors.New("--output-file is required for parquet output")
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the MetricRow struct tags.
	writer := parquet.NewGenericWriter[MetricRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ExportMetricResults converts and writes results in one step.
func ExportMetricResults(results []schema.MetricResult, outputPath string) error {
	rows := ConvertMetricResults(results)
	if err := WriteMetricsParquet(rows, outputPath); err != nil {
		return err
	}
	fmt.Printf("Exported %d metric rows to: %s\n", len(rows), outputPath)
	return nil
}
