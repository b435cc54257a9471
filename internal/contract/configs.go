package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/devexhq/pulse/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 1
	MaxPrecision     = 4
	DefaultServeAddr = ":8080"
)

// Config holds the runtime configuration for metric queries.
// This struct remains the "final, validated" config: it is built once by
// ProcessAndValidate and passed explicitly into the engine and resolver,
// never consulted through ambient globals.
type Config struct {
	Repository string
	GroupBy    schema.GroupKind
	Window     schema.Window

	Staleness       time.Duration // open issues older than this are stale
	DeployLookahead time.Duration // merge-to-deploy adjacency bound
	DeployKeywords  []string
	SizeThresholds  schema.SizeThresholds

	// Teams is a mapping of team name -> member identities.
	Teams map[string][]string

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	CacheCapacity int // 0 = unbounded

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	ServeAddr string
}

// Clone returns a shallow copy safe for per-request overrides. The
// Teams map and keyword slice are shared; callers replace fields, they
// never mutate them in place.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Repo            string `mapstructure:"repo"`
	GroupBy         string `mapstructure:"group-by"`
	Start           string `mapstructure:"start"`
	End             string `mapstructure:"end"`
	StalenessDays   int    `mapstructure:"staleness-days"`
	DeployLookahead string `mapstructure:"deploy-lookahead"`
	DeployKeywords  string `mapstructure:"deploy-keywords"`
	StoreBackend    string `mapstructure:"store-backend"`
	StoreDBConnect  string `mapstructure:"store-db-connect"`
	CacheCapacity   int    `mapstructure:"cache-capacity"`
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Precision       int    `mapstructure:"precision"`
	Width           int    `mapstructure:"width"`
	Color           string `mapstructure:"color"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`

	// --- Config file only ---
	Teams          map[string][]string   `mapstructure:"teams"`
	SizeThresholds schema.SizeThresholds `mapstructure:"size-thresholds"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input, time.Now().UTC()); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	cfg.Teams = input.Teams
	return nil
}

// validateSimpleInputs processes and validates all non-time fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Repository = strings.TrimSpace(input.Repo)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.ServeAddr = input.Addr

	// --- 1. Grouping Validation ---
	groupBy := schema.GroupKind(strings.ToLower(input.GroupBy))
	if groupBy == "" {
		groupBy = schema.GroupByRepo
	}
	if _, ok := schema.ValidGroupKinds[groupBy]; !ok {
		return fmt.Errorf("invalid group-by '%s'. must be repo, team, author, none", input.GroupBy)
	}
	cfg.GroupBy = groupBy

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	// --- 3. Color Flag ---
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 4. Cache Capacity ---
	if input.CacheCapacity < 0 {
		return fmt.Errorf("cache-capacity cannot be negative (received %d)", input.CacheCapacity)
	}
	cfg.CacheCapacity = input.CacheCapacity

	return nil
}

// processTimeRange handles date parsing and time range validation.
// The default window is the last DefaultWindowDays days ending now.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	end := now
	start := end.Add(-schema.DefaultWindowDays * 24 * time.Hour)

	parseBound := func(s string) (time.Time, error) {
		if t, err := time.Parse(DateTimeFormat, s); err == nil {
			return t, nil
		}
		return ParseRelativeTime(s, now)
	}

	if input.Start != "" {
		t, err := parseBound(input.Start)
		if err != nil {
			return fmt.Errorf("invalid start date '%s'. Expected absolute ISO8601 or 'N [units] ago': %w", input.Start, err)
		}
		start = t
	}
	if input.End != "" {
		t, err := parseBound(input.End)
		if err != nil {
			return fmt.Errorf("invalid end date '%s'. Expected absolute ISO8601 or 'N [units] ago': %w", input.End, err)
		}
		end = t
	}

	if start.After(end) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)",
			start.Format(DateTimeFormat), end.Format(DateTimeFormat))
	}

	cfg.Window = schema.NewWindow(start, end)
	return nil
}

// processThresholds fills staleness, deploy lookahead, deploy keywords
// and size bucket thresholds, falling back to the documented defaults.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	stalenessDays := input.StalenessDays
	if stalenessDays == 0 {
		stalenessDays = schema.DefaultStalenessDays
	}
	if stalenessDays < 0 {
		return fmt.Errorf("staleness-days must be positive (received %d)", stalenessDays)
	}
	cfg.Staleness = time.Duration(stalenessDays) * 24 * time.Hour

	lookaheadStr := input.DeployLookahead
	if lookaheadStr == "" {
		lookaheadStr = fmt.Sprintf("%dh", schema.DefaultDeployLookaheadHrs)
	}
	lookahead, err := ParseHumanDuration(lookaheadStr)
	if err != nil {
		return fmt.Errorf("invalid deploy-lookahead: %w", err)
	}
	cfg.DeployLookahead = lookahead

	cfg.DeployKeywords = schema.DefaultDeployKeywords
	if input.DeployKeywords != "" {
		var keywords []string
		for p := range strings.SplitSeq(input.DeployKeywords, ",") {
			trimmed := strings.ToLower(strings.TrimSpace(p))
			if trimmed != "" {
				keywords = append(keywords, trimmed)
			}
		}
		if len(keywords) == 0 {
			return fmt.Errorf("deploy-keywords must contain at least one keyword")
		}
		cfg.DeployKeywords = keywords
	}

	cfg.SizeThresholds = input.SizeThresholds
	if cfg.SizeThresholds == (schema.SizeThresholds{}) {
		cfg.SizeThresholds = schema.DefaultSizeThresholds
	}
	if cfg.SizeThresholds.XS >= cfg.SizeThresholds.S ||
		cfg.SizeThresholds.S >= cfg.SizeThresholds.M ||
		cfg.SizeThresholds.M >= cfg.SizeThresholds.L {
		return fmt.Errorf("size thresholds must be strictly increasing (xs < s < m < l)")
	}

	return nil
}

// validateBackendConfig validates the record store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.MemoryBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be memory, sqlite, mysql, postgresql", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MemoryBackend, schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}
