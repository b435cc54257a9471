package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devexhq/pulse/schema"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Repo:      "devexhq/pulse",
		GroupBy:   "repo",
		Output:    "text",
		Precision: 1,
		Color:     "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{
			name:        "valid minimal config",
			mutate:      func(in *ConfigRawInput) {},
			expectError: false,
		},
		{
			name:        "invalid group-by",
			mutate:      func(in *ConfigRawInput) { in.GroupBy = "squad" },
			expectError: true,
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "precision out of range",
			mutate:      func(in *ConfigRawInput) { in.Precision = 9 },
			expectError: true,
		},
		{
			name:        "negative cache capacity",
			mutate:      func(in *ConfigRawInput) { in.CacheCapacity = -1 },
			expectError: true,
		},
		{
			name: "explicit absolute window",
			mutate: func(in *ConfigRawInput) {
				in.Start = "2026-01-01T00:00:00Z"
				in.End = "2026-02-01T00:00:00Z"
			},
			expectError: false,
		},
		{
			name: "start after end",
			mutate: func(in *ConfigRawInput) {
				in.Start = "2026-02-01T00:00:00Z"
				in.End = "2026-01-01T00:00:00Z"
			},
			expectError: true,
		},
		{
			name:        "relative start",
			mutate:      func(in *ConfigRawInput) { in.Start = "2 weeks ago" },
			expectError: false,
		},
		{
			name:        "garbage start",
			mutate:      func(in *ConfigRawInput) { in.Start = "whenever" },
			expectError: true,
		},
		{
			name:        "mysql backend without connection string",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = "mysql" },
			expectError: true,
		},
		{
			name: "mysql backend with valid connection string",
			mutate: func(in *ConfigRawInput) {
				in.StoreBackend = "mysql"
				in.StoreDBConnect = "user:pass@tcp(localhost:3306)/pulse"
			},
			expectError: false,
		},
		{
			name: "postgresql backend missing dbname",
			mutate: func(in *ConfigRawInput) {
				in.StoreBackend = "postgresql"
				in.StoreDBConnect = "host=localhost user=pulse"
			},
			expectError: true,
		},
		{
			name:        "deploy keywords all blank",
			mutate:      func(in *ConfigRawInput) { in.DeployKeywords = " , ," },
			expectError: true,
		},
		{
			name: "size thresholds not increasing",
			mutate: func(in *ConfigRawInput) {
				in.SizeThresholds = schema.SizeThresholds{XS: 50, S: 10, M: 250, L: 1000}
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(input)

			var cfg Config
			err := ProcessAndValidate(&cfg, input)
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, ProcessAndValidate(&cfg, validInput()))

	assert.Equal(t, schema.GroupByRepo, cfg.GroupBy)
	assert.Equal(t, schema.MemoryBackend, cfg.StoreBackend)
	assert.Equal(t, schema.DefaultSizeThresholds, cfg.SizeThresholds)
	assert.Equal(t, schema.DefaultDeployKeywords, cfg.DeployKeywords)
	assert.Equal(t, time.Duration(schema.DefaultStalenessDays)*24*time.Hour, cfg.Staleness)
	assert.Equal(t, time.Duration(schema.DefaultDeployLookaheadHrs)*time.Hour, cfg.DeployLookahead)
	assert.InDelta(t, schema.DefaultWindowDays, cfg.Window.Days(), 0.01)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidateKeywordOverride(t *testing.T) {
	input := validInput()
	input.DeployKeywords = "Ship , rollout"

	var cfg Config
	require.NoError(t, ProcessAndValidate(&cfg, input))
	assert.Equal(t, []string{"ship", "rollout"}, cfg.DeployKeywords)
}

func TestProcessTimeRangeWindowIsUTC(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	input := validInput()
	input.Start = time.Date(2026, 3, 1, 8, 0, 0, 0, loc).Format(DateTimeFormat)
	input.End = "2026-03-15T00:00:00Z"

	var cfg Config
	require.NoError(t, ProcessAndValidate(&cfg, input))
	assert.Equal(t, time.UTC, cfg.Window.Start.Location())
	assert.Equal(t, time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC), cfg.Window.Start)
}
