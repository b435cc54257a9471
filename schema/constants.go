package schema

// Custom string types for type safety.
type (
	// SourceType tags which variant of the event union a record carries.
	SourceType string

	// SizeBucket represents a pull-request size category.
	SizeBucket string

	// GroupKind represents the grouping dimension for metric queries.
	GroupKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for durable storage.
	DatabaseBackend string
)

// All source types supported by the normalization layer.
const (
	PullRequestSource SourceType = "pull_request"
	IssueSource       SourceType = "issue"
	CommitSource      SourceType = "commit"
	WorkflowRunSource SourceType = "workflow_run"
)

// Pull request states.
const (
	PRStateOpen   = "open"
	PRStateClosed = "closed"
	PRStateMerged = "merged"
)

// Issue states.
const (
	IssueStateOpen       = "open"
	IssueStateInProgress = "in_progress"
	IssueStateDone       = "done"
)

// Workflow run conclusions.
const (
	RunSuccess   = "success"
	RunFailure   = "failure"
	RunCancelled = "cancelled"
)

// All size buckets, ordered smallest to largest.
const (
	SizeXS SizeBucket = "XS"
	SizeS  SizeBucket = "S"
	SizeM  SizeBucket = "M"
	SizeL  SizeBucket = "L"
	SizeXL SizeBucket = "XL"
)

// All grouping dimensions supported.
const (
	GroupByRepo   GroupKind = "repo" // default
	GroupByTeam   GroupKind = "team"
	GroupByAuthor GroupKind = "author"
	GroupByNone   GroupKind = "none"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	MemoryBackend     DatabaseBackend = "memory" // default
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// AllSizeBuckets lists size buckets in display order.
var AllSizeBuckets = []SizeBucket{SizeXS, SizeS, SizeM, SizeL, SizeXL}

// AllSourceTypes lists all supported source types.
var AllSourceTypes = []SourceType{PullRequestSource, IssueSource, CommitSource, WorkflowRunSource}

// ValidSourceTypes lists all valid source types.
var ValidSourceTypes = map[SourceType]struct{}{
	PullRequestSource: {},
	IssueSource:       {},
	CommitSource:      {},
	WorkflowRunSource: {},
}

// ValidGroupKinds lists all valid grouping dimensions.
var ValidGroupKinds = map[GroupKind]struct{}{
	GroupByRepo:   {},
	GroupByTeam:   {},
	GroupByAuthor: {},
	GroupByNone:   {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	MemoryBackend:     {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}
