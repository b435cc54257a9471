package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/schema"
)

// PrintMetricResults outputs computed metrics, dispatching based on the
// output format configured.
func PrintMetricResults(results []schema.MetricResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricCSV(w, results, fmtFloat)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricTable(results, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
}

// formatQuantity renders a metric value in its display unit. Durations
// arrive in whole seconds and convert only here.
func formatQuantity(value float64, unit string, cfg *contract.Config, fmtFloat func(float64) string) string {
	switch unit {
	case schema.UnitSeconds:
		return contract.FormatSeconds(int64(value), cfg.Precision)
	case schema.UnitPerDay:
		return fmtFloat(value) + "/day"
	case schema.UnitRatio:
		return fmtFloat(value*100) + "%"
	default:
		return fmtFloat(value)
	}
}

// formatBuckets joins bucket counts in display order, known size
// buckets first, anything else alphabetically after.
func formatBuckets(buckets map[string]int) string {
	var parts []string
	seen := make(map[string]bool)
	for _, bucket := range schema.AllSizeBuckets {
		if count, ok := buckets[string(bucket)]; ok {
			parts = append(parts, fmt.Sprintf("%s:%d", bucket, count))
			seen[string(bucket)] = true
		}
	}

	var rest []string
	for key := range buckets {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		parts = append(parts, fmt.Sprintf("%s:%d", key, buckets[key]))
	}
	return strings.Join(parts, " ")
}

// formatTrend renders trend direction with the fitted change.
func formatTrend(trend *schema.TrendInfo, fmtFloat func(float64) string) string {
	if trend == nil {
		return ""
	}
	if trend.Direction == schema.TrendStable {
		return trend.Direction
	}
	return fmt.Sprintf("%s (%s%%)", trend.Direction, fmtFloat(trend.PercentChange))
}

// writeMetricTable generates and writes the human-readable table.
func writeMetricTable(results []schema.MetricResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(writer, "No metrics to display.")
		return err
	}

	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Metric", "Group", "Value", "N", "P50", "P90", "Notes"}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	var data [][]string
	for i := range results {
		data = append(data, metricTableRow(&results[i], cfg, fmtFloat))
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	window := results[0].Window
	if _, err := fmt.Fprintf(writer, "Window: %s to %s (%s grouping)\n",
		window.Start.Format(contract.DateTimeFormat),
		window.End.Format(contract.DateTimeFormat),
		cfg.GroupBy); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Computed in %v. Store backend: %s\n", duration, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// metricTableRow builds one table row for a result.
func metricTableRow(r *schema.MetricResult, cfg *contract.Config, fmtFloat func(float64) string) []string {
	row := []string{
		string(r.Metric),
		contract.Truncate(r.Group, getMaxTableGroupWidth(cfg)),
	}

	if r.NoData {
		return append(row, "no data", "0", "", "", "")
	}

	var value string
	switch {
	case r.Buckets != nil && r.Metric == schema.MetricSizeDistribution:
		value = formatBuckets(r.Buckets)
	case r.Metric == schema.MetricDeployFrequency:
		label := contract.GetPlainLabel(r.Value)
		if cfg.UseColors {
			label = contract.GetColorLabel(r.Value)
		}
		value = fmt.Sprintf("%s %s", formatQuantity(r.Value, r.Unit, cfg, fmtFloat), label)
	case r.Summary != nil && r.Value == 0:
		value = formatQuantity(r.Summary.Mean, r.Unit, cfg, fmtFloat) + " avg"
	default:
		value = formatQuantity(r.Value, r.Unit, cfg, fmtFloat)
	}

	count, p50, p90 := "", "", ""
	if r.Summary != nil {
		count = strconv.Itoa(r.Summary.Count)
		p50 = formatQuantity(r.Summary.P50, r.Unit, cfg, fmtFloat)
		p90 = formatQuantity(r.Summary.P90, r.Unit, cfg, fmtFloat)
	}

	notes := formatTrend(r.Trend, fmtFloat)
	if r.Unresolved > 0 {
		if notes != "" {
			notes += ", "
		}
		notes += fmt.Sprintf("%d unresolved", r.Unresolved)
	}

	return append(row, value, count, p50, p90, notes)
}

// writeMetricCSV writes the results in CSV format with one row per
// metric and group. Durations stay in seconds for machine consumers.
func writeMetricCSV(w io.Writer, results []schema.MetricResult, fmtFloat func(float64) string) error {
	header := []string{
		"metric", "group", "window_start", "window_end", "unit", "no_data",
		"value", "count", "min", "p50", "p90", "max", "mean",
		"trend", "trend_pct", "unresolved", "buckets",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i := range results {
			r := &results[i]
			rec := []string{
				string(r.Metric),
				r.Group,
				r.Window.Start.Format(contract.DateTimeFormat),
				r.Window.End.Format(contract.DateTimeFormat),
				r.Unit,
				strconv.FormatBool(r.NoData),
				fmtFloat(r.Value),
			}
			if r.Summary != nil {
				rec = append(rec,
					strconv.Itoa(r.Summary.Count),
					fmtFloat(r.Summary.Min),
					fmtFloat(r.Summary.P50),
					fmtFloat(r.Summary.P90),
					fmtFloat(r.Summary.Max),
					fmtFloat(r.Summary.Mean),
				)
			} else {
				rec = append(rec, "0", "", "", "", "", "")
			}
			if r.Trend != nil {
				rec = append(rec, r.Trend.Direction, fmtFloat(r.Trend.PercentChange))
			} else {
				rec = append(rec, "", "")
			}
			rec = append(rec, strconv.Itoa(r.Unresolved), formatBuckets(r.Buckets))
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
