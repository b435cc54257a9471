package schema

// MetricName identifies a derived metric.
type MetricName string

// All metrics computed by the engine.
const (
	MetricLeadTime         MetricName = "lead_time"
	MetricReviewCycles     MetricName = "review_cycles"
	MetricSizeDistribution MetricName = "size_distribution"
	MetricMergeRate        MetricName = "merge_rate"
	MetricThroughput       MetricName = "throughput"
	MetricIssueVelocity    MetricName = "issue_velocity"
	MetricBacklogHealth    MetricName = "backlog_health"
	MetricCommitChurn      MetricName = "commit_churn"

	MetricDeployFrequency MetricName = "deploy_frequency"
	MetricChangeLeadTime  MetricName = "change_lead_time"
	MetricChangeFailure   MetricName = "change_failure_rate"
	MetricTimeToRestore   MetricName = "time_to_restore"

	MetricRunnerPickup    MetricName = "runner_pickup"
	MetricRunnerExecution MetricName = "runner_execution"
	MetricRunnerSuccess   MetricName = "runner_success_rate"
)

// DistributionSummary describes a sample distribution. Percentiles are
// computed with linear interpolation between order statistics (R type 7).
type DistributionSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// Trend direction values.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// TrendInfo describes the direction of a daily series over the window,
// derived from a least-squares fit.
type TrendInfo struct {
	Direction     string  `json:"direction"` // increasing, decreasing, stable
	PercentChange float64 `json:"percent_change"`
}

// MetricResult is one computed metric for one group over one window.
// Scalar metrics populate Value; distribution metrics populate Summary.
// NoData distinguishes "nothing to compute" from a true zero: callers
// must check it before reading Value or Summary.
type MetricResult struct {
	Metric MetricName `json:"metric"`
	Group  string     `json:"group"` // repo, team or author key; "all" when ungrouped
	Window Window     `json:"window"`
	NoData bool       `json:"no_data"`

	Value float64 `json:"value,omitempty"`
	Unit  string  `json:"unit,omitempty"`

	Summary    *DistributionSummary `json:"summary,omitempty"`
	Buckets    map[string]int       `json:"buckets,omitempty"`
	Trend      *TrendInfo           `json:"trend,omitempty"`
	Unresolved int                  `json:"unresolved,omitempty"` // failed deploys without a later success (MTTR only)
}

// NoDataResult builds the explicit empty-input result for a metric and group.
func NoDataResult(metric MetricName, group string, window Window) MetricResult {
	return MetricResult{Metric: metric, Group: group, Window: window, NoData: true}
}

// UngroupedKey is the group key used when a metric is not grouped.
const UngroupedKey = "all"

// Display units used at the presentation boundary. Durations are carried
// in whole seconds internally and converted only when results are built.
const (
	UnitHours   = "hours"
	UnitMinutes = "minutes"
	UnitSeconds = "seconds"
	UnitPerDay  = "per_day"
	UnitRatio   = "ratio"
	UnitCount   = "count"
	UnitPoints  = "points"
	UnitLines   = "lines"
)
