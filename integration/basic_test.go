//go:build basic

// Package integration contains integration tests for pulse.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPulseVersion verifies the binary reports version information.
func TestPulseVersion(t *testing.T) {
	output, err := runPulseCommand(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "pulse CLI")
	assert.Contains(t, output, "Runtime:")
}

// TestPulseWithSQLite exercises the full flow against a SQLite store:
// migrate, ingest an export twice (idempotent), then compute metrics.
func TestPulseWithSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pulse.db")
	env := []string{
		"PULSE_STORE_BACKEND=sqlite",
		"PULSE_STORE_DB_CONNECT=" + dbPath,
	}

	_, err := runPulseCommand(t, env, "store", "migrate")
	require.NoError(t, err)

	output, err := runPulseCommand(t, env, "ingest", "integration/testdata/sample_export.json")
	require.NoError(t, err)
	assert.Contains(t, output, "Ingested 5/5")

	// Replay must not duplicate records.
	_, err = runPulseCommand(t, env, "ingest", "integration/testdata/sample_export.json")
	require.NoError(t, err)

	output, err = runPulseCommand(t, env,
		"pr", "--repo", "acme/api", "--start", "2026-03-01T00:00:00Z", "--end", "2026-03-31T00:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, output, "lead_time")
	assert.Contains(t, output, "acme/api")

	output, err = runPulseCommand(t, env,
		"dora", "--repo", "acme/api", "--start", "2026-03-01T00:00:00Z", "--end", "2026-03-31T00:00:00Z", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, output, "deploy_frequency")

	output, err = runPulseCommand(t, env, "store", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "sqlite")
}

// TestPulseMemoryBackendNoData verifies metrics degrade to explicit
// no-data results when nothing has been ingested.
func TestPulseMemoryBackendNoData(t *testing.T) {
	output, err := runPulseCommand(t, nil, "issues", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, output, `"no_data": true`)
}
