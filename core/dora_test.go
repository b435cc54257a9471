package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devexhq/pulse/schema"
)

func TestDeploymentFrequency(t *testing.T) {
	engine := newTestEngine(t, testConfig(),
		deployRunRecord("run-1", "acme/api", "Deploy Production", schema.RunSuccess, testWindow.Start.Add(24*time.Hour)),
		deployRunRecord("run-2", "acme/api", "Release v2", schema.RunSuccess, testWindow.Start.Add(48*time.Hour)),
		deployRunRecord("run-3", "acme/api", "Deploy Production", schema.RunFailure, testWindow.Start.Add(72*time.Hour)),
		deployRunRecord("run-4", "acme/api", "Unit Tests", schema.RunSuccess, testWindow.Start.Add(96*time.Hour)),
	)

	results, err := engine.DeploymentFrequency(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	// Two successful deploys over a 30 day window. Failed runs and
	// non-deploy workflows do not count.
	assert.InDelta(t, 2.0/30.0, results[0].Value, 1e-9)
	assert.Equal(t, schema.UnitPerDay, results[0].Unit)
}

func TestDeploymentFrequencyNoDeploys(t *testing.T) {
	engine := newTestEngine(t, testConfig(),
		deployRunRecord("run-1", "acme/api", "Unit Tests", schema.RunSuccess, testWindow.Start.Add(24*time.Hour)),
	)

	results, err := engine.DeploymentFrequency(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].NoData)
}

func TestLeadTimeForChanges(t *testing.T) {
	base := testWindow.Start.Add(24 * time.Hour)
	engine := newTestEngine(t, testConfig(),
		// Opened at base, merged at base+2h, deploy run created shortly
		// after the merge: sample is the 2h open-to-merge time.
		mergedPR("pr-1", "acme/api", "alice", base, 2*time.Hour, 20),
		deployRunRecord("run-1", "acme/api", "Deploy Production", schema.RunSuccess, base.Add(3*time.Hour)),
		// Merged with no deploy inside the lookahead: excluded.
		mergedPR("pr-2", "acme/api", "bob", base.Add(7*24*time.Hour), time.Hour, 20),
	)

	results, err := engine.LeadTimeForChanges(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NotNil(t, results[0].Summary)
	assert.Equal(t, 1, results[0].Summary.Count)
	assert.InDelta(t, float64(2*3600), results[0].Summary.P50, 1e-9)
}

func TestLeadTimeForChangesJoinsOnDeployCreation(t *testing.T) {
	base := testWindow.Start.Add(24 * time.Hour)
	engine := newTestEngine(t, testConfig(),
		mergedPR("pr-1", "acme/api", "alice", base, 2*time.Hour, 20),
		// The run finishes after the merge but was created before it, so
		// it cannot carry this change.
		deployRunRecord("run-1", "acme/api", "Deploy Production", schema.RunSuccess, base.Add(2*time.Hour+5*time.Minute)),
	)

	results, err := engine.LeadTimeForChanges(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].NoData)
}

func TestLeadTimeForChangesIgnoresFailedDeploys(t *testing.T) {
	base := testWindow.Start.Add(24 * time.Hour)
	engine := newTestEngine(t, testConfig(),
		mergedPR("pr-1", "acme/api", "alice", base, 2*time.Hour, 20),
		deployRunRecord("run-1", "acme/api", "Deploy Production", schema.RunFailure, base.Add(3*time.Hour)),
	)

	results, err := engine.LeadTimeForChanges(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].NoData)
}

func TestChangeFailureRate(t *testing.T) {
	engine := newTestEngine(t, testConfig(),
		deployRunRecord("run-1", "acme/api", "Deploy Production", schema.RunSuccess, testWindow.Start.Add(24*time.Hour)),
		deployRunRecord("run-2", "acme/api", "Deploy Production", schema.RunFailure, testWindow.Start.Add(48*time.Hour)),
		deployRunRecord("run-3", "acme/api", "Deploy Production", schema.RunSuccess, testWindow.Start.Add(72*time.Hour)),
		deployRunRecord("run-4", "acme/api", "Deploy Production", schema.RunCancelled, testWindow.Start.Add(96*time.Hour)),
	)

	results, err := engine.ChangeFailureRate(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	// Cancelled runs count toward neither side: 1 failure over 3 finished.
	assert.InDelta(t, 1.0/3.0, results[0].Value, 1e-9)
}

func TestChangeFailureRateUndefinedWithoutDeploys(t *testing.T) {
	engine := newTestEngine(t, testConfig())

	results, err := engine.ChangeFailureRate(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].NoData)
	assert.Zero(t, results[0].Value)
}

func TestTimeToRestore(t *testing.T) {
	failedAt := testWindow.Start.Add(24 * time.Hour)
	engine := newTestEngine(t, testConfig(),
		deployRunRecord("run-1", "acme/api", "Deploy Production", schema.RunFailure, failedAt),
		deployRunRecord("run-2", "acme/api", "Deploy Production", schema.RunSuccess, failedAt.Add(30*time.Minute)),
	)

	results, err := engine.TimeToRestore(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NotNil(t, results[0].Summary)
	assert.InDelta(t, 1800, results[0].Summary.P50, 1e-9)
	assert.Equal(t, 0, results[0].Unresolved)
}

func TestTimeToRestoreLooksPastWindowEnd(t *testing.T) {
	failedAt := testWindow.End.Add(-time.Hour)
	engine := newTestEngine(t, testConfig(),
		deployRunRecord("run-1", "acme/api", "Deploy Production", schema.RunFailure, failedAt),
		// Recovery lands after the window closes but still resolves the failure.
		deployRunRecord("run-2", "acme/api", "Deploy Production", schema.RunSuccess, failedAt.Add(5*time.Hour)),
	)

	results, err := engine.TimeToRestore(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Summary)
	assert.InDelta(t, float64(5*3600), results[0].Summary.P50, 1e-9)
}

func TestTimeToRestoreUnresolved(t *testing.T) {
	failedAt := testWindow.Start.Add(24 * time.Hour)
	engine := newTestEngine(t, testConfig(),
		deployRunRecord("run-1", "acme/api", "Deploy Production", schema.RunFailure, failedAt),
		deployRunRecord("run-2", "acme/api", "Deploy Production", schema.RunFailure, failedAt.Add(time.Hour)),
		deployRunRecord("run-3", "acme/api", "Deploy Production", schema.RunSuccess, failedAt.Add(2*time.Hour)),
		deployRunRecord("run-4", "acme/api", "Deploy Production", schema.RunFailure, failedAt.Add(3*time.Hour)),
	)

	results, err := engine.TimeToRestore(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Two failures recover at +2h; the last one never does.
	require.NotNil(t, results[0].Summary)
	assert.Equal(t, 2, results[0].Summary.Count)
	assert.Equal(t, 1, results[0].Unresolved)
}

func TestRunnerMetrics(t *testing.T) {
	engine := newTestEngine(t, testConfig(),
		deployRunRecord("run-1", "acme/api", "Unit Tests", schema.RunSuccess, testWindow.Start.Add(24*time.Hour)),
		deployRunRecord("run-2", "acme/api", "Unit Tests", schema.RunSuccess, testWindow.Start.Add(48*time.Hour)),
	)

	pickup, err := engine.RunnerPickup(context.Background())
	require.NoError(t, err)
	require.Len(t, pickup, 1)
	assert.Equal(t, "github-hosted", pickup[0].Group)
	assert.InDelta(t, 30, pickup[0].Summary.P50, 1e-9)

	execution, err := engine.RunnerExecution(context.Background())
	require.NoError(t, err)
	require.Len(t, execution, 1)
	assert.Equal(t, 2, execution[0].Summary.Count)
}

func TestRunnerSuccessRateExcludesCancelled(t *testing.T) {
	base := testWindow.Start.Add(24 * time.Hour)
	engine := newTestEngine(t, testConfig(),
		deployRunRecord("run-1", "acme/api", "Unit Tests", schema.RunSuccess, base),
		deployRunRecord("run-2", "acme/api", "Unit Tests", schema.RunSuccess, base.Add(time.Hour)),
		deployRunRecord("run-3", "acme/api", "Unit Tests", schema.RunFailure, base.Add(2*time.Hour)),
		deployRunRecord("run-4", "acme/api", "Unit Tests", schema.RunCancelled, base.Add(3*time.Hour)),
	)

	results, err := engine.RunnerSuccess(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "github-hosted", results[0].Group)
	assert.InDelta(t, 2.0/3.0, results[0].Value, 1e-9)
	assert.Equal(t, schema.UnitRatio, results[0].Unit)
}
