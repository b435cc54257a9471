package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/devexhq/pulse/core"
	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/internal/outwriter"
	"github.com/devexhq/pulse/internal/parquet"
	"github.com/devexhq/pulse/schema"
)

// runMetricFamily computes one metric family and renders it in the
// configured output format.
func runMetricFamily(names []schema.MetricName) {
	start := time.Now()
	results, err := engine.Compute(rootCtx, names)
	if err != nil {
		contract.LogFatal("Cannot compute metrics", err)
	}

	if cfg.Output == schema.ParquetOut {
		if err := parquet.ExportMetricResults(results, cfg.OutputFile); err != nil {
			contract.LogFatal("Cannot export metrics", err)
		}
		return
	}
	if err := outwriter.PrintMetricResults(results, cfg, time.Since(start)); err != nil {
		contract.LogFatal("Cannot print metrics", err)
	}
}

// prCmd computes pull request delivery metrics.
var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Show pull request delivery metrics.",
	Long: `Compute pull request metrics over the selected window.

Includes:
- Lead time from open to merge
- Review cycles per pull request
- Size distribution across XS/S/M/L/XL buckets
- Merge rate and merge throughput with trend

Examples:
  # Last 30 days for every repository
  pulse pr

  # One repository, grouped by team
  pulse pr --repo acme/api --group-by team

  # Export findings to CSV for tracking
  pulse pr --output csv --output-file pr-metrics.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runMetricFamily(core.PullRequestMetrics)
	},
}

// issuesCmd computes issue flow metrics.
var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Show issue velocity and backlog health.",
	Long: `Compute issue metrics over the selected window.

Includes:
- Velocity as completed issues, with the story-point spread
- Backlog health (open issues that have gone stale)

Examples:
  # Velocity and backlog health per repository
  pulse issues

  # Grouped by team with a custom staleness bound
  pulse issues --group-by team --staleness-days 14`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runMetricFamily(core.IssueMetrics)
	},
}

// commitsCmd computes commit churn metrics.
var commitsCmd = &cobra.Command{
	Use:   "commits",
	Short: "Show commit churn metrics.",
	Long: `Compute commit churn (lines added plus deleted) over the selected window.

Examples:
  # Churn per repository
  pulse commits

  # Churn per author for one repository
  pulse commits --repo acme/api --group-by author`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runMetricFamily(core.CommitMetrics)
	},
}

// doraCmd computes the four DORA metrics.
var doraCmd = &cobra.Command{
	Use:   "dora",
	Short: "Show the four DORA metrics.",
	Long: `Compute the four DORA metrics over the selected window.

Includes:
- Deployment frequency with performance tier (Elite/High/Medium/Low)
- Lead time for changes (open to merge, for merges followed by a deploy)
- Change failure rate
- Time to restore service

Deploys are detected from CI workflow runs whose name contains a deploy
keyword (deploy, release, publish by default).

Examples:
  # DORA metrics for every repository
  pulse dora

  # Custom deploy naming convention
  pulse dora --deploy-keywords "ship,rollout"

  # JSON for dashboards
  pulse dora --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runMetricFamily(core.DORAMetrics)
	},
}

// runnersCmd computes CI runner performance metrics.
var runnersCmd = &cobra.Command{
	Use:   "runners",
	Short: "Show CI runner queue and execution performance.",
	Long: `Compute CI runner performance over the selected window.

Includes:
- Pickup latency (queued to started), grouped by runner type
- Execution time per workflow run, grouped by runner type
- Success rate over finished runs (cancelled runs excluded)

Examples:
  # Runner performance for every repository
  pulse runners

  # One repository only
  pulse runners --repo acme/api`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runMetricFamily(core.RunnerMetrics)
	},
}

// reportCmd computes every metric in one pass.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show every metric in one report.",
	Long: `Compute all pull request, issue, commit, DORA and runner metrics in one pass.

Examples:
  # Full report for the last 30 days
  pulse report

  # Full report as Parquet for analytics
  pulse report --output parquet --output-file report.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runMetricFamily(core.AllMetricNames())
	},
}
