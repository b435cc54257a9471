package schema

// SizeThresholds holds the exclusive upper bounds for the XS..L buckets,
// measured in additions+deletions. Anything at or above L falls into XL.
type SizeThresholds struct {
	XS int `mapstructure:"xs"`
	S  int `mapstructure:"s"`
	M  int `mapstructure:"m"`
	L  int `mapstructure:"l"`
}

// DefaultSizeThresholds are the fixed bucket bounds: XS<10, S<50, M<250, L<1000.
var DefaultSizeThresholds = SizeThresholds{XS: 10, S: 50, M: 250, L: 1000}

// BucketFor returns the size bucket for a change of the given total line count.
func (t SizeThresholds) BucketFor(totalChanges int) SizeBucket {
	switch {
	case totalChanges < t.XS:
		return SizeXS
	case totalChanges < t.S:
		return SizeS
	case totalChanges < t.M:
		return SizeM
	case totalChanges < t.L:
		return SizeL
	default:
		return SizeXL
	}
}

// DefaultDeployKeywords mark a workflow run as a deploy when its name
// contains any of them (case-insensitive).
var DefaultDeployKeywords = []string{"deploy", "release", "publish"}

// Default thresholds for issue staleness and deploy adjacency.
const (
	DefaultStalenessDays      = 30 // open issues older than this count against backlog health
	DefaultDeployLookaheadHrs = 24 // max gap between PR merge and its deploy run
	DefaultWindowDays         = 30 // default query window when none is given
	DefaultCacheCapacity      = 0  // 0 = unbounded, fine for a single process
)
