package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devexhq/pulse/internal/aggcache"
	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/internal/recordstore"
	"github.com/devexhq/pulse/internal/teams"
	"github.com/devexhq/pulse/schema"
)

var testWindow = schema.NewWindow(
	time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
)

func testApp(t *testing.T, records ...schema.EventRecord) *fiber.App {
	t.Helper()
	resolver := teams.NewResolver(map[string][]string{"platform": {"alice"}})
	store := recordstore.NewMemoryStore(resolver)
	for _, record := range records {
		require.NoError(t, store.Upsert(context.Background(), record))
	}

	cfg := &contract.Config{
		GroupBy:         schema.GroupByRepo,
		Window:          testWindow,
		Staleness:       30 * 24 * time.Hour,
		DeployLookahead: 24 * time.Hour,
		DeployKeywords:  schema.DefaultDeployKeywords,
		SizeThresholds:  schema.DefaultSizeThresholds,
	}
	server := NewServer(store, aggcache.NewLRUCache(0), resolver, cfg)
	return server.App()
}

func mergedPR(id, author string, createdAt time.Time, leadTime time.Duration) schema.EventRecord {
	mergedAt := createdAt.Add(leadTime)
	return schema.EventRecord{
		ID: id, Source: schema.PullRequestSource, Repository: "acme/api", Author: author,
		CreatedAt: createdAt, State: schema.PRStateMerged,
		PullRequest: &schema.PullRequestMeta{Additions: 20, MergedAt: &mergedAt},
	}
}

func decodeMetrics(t *testing.T, resp *http.Response) MetricsResponse {
	t.Helper()
	defer resp.Body.Close()
	var body MetricsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestGetHealth(t *testing.T) {
	app := testApp(t, mergedPR("pr-1", "alice", testWindow.Start.Add(24*time.Hour), 2*time.Hour))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, int64(1), body.DataVersion)
}

func TestGetMetricsFamily(t *testing.T) {
	base := testWindow.Start.Add(24 * time.Hour)
	app := testApp(t,
		mergedPR("pr-1", "alice", base, 2*time.Hour),
		mergedPR("pr-2", "bob", base, 6*time.Hour),
	)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeMetrics(t, resp)
	assert.Equal(t, "pr", body.Family)
	assert.Equal(t, schema.GroupByRepo, body.GroupBy)
	// One result per pull request metric, one group each.
	assert.Len(t, body.Results, 5)
}

func TestGetMetricsUnknownFamily(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/metrics/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetMetricsWindowOverride(t *testing.T) {
	// Merge lands on March 10th; a window ending on the 5th must not see it.
	app := testApp(t, mergedPR("pr-1", "alice", testWindow.Start.Add(9*24*time.Hour), 2*time.Hour))

	params := url.Values{}
	params.Set("start", "2026-03-01T00:00:00Z")
	params.Set("end", "2026-03-05T00:00:00Z")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr?"+params.Encode(), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeMetrics(t, resp)
	for _, result := range body.Results {
		if result.Metric == schema.MetricLeadTime {
			assert.True(t, result.NoData)
		}
	}
}

func TestGetMetricsInvalidQuery(t *testing.T) {
	app := testApp(t)

	for _, query := range []string{
		"start=not-a-time",
		"group_by=planet",
		"start=2026-03-10T00:00:00Z&end=2026-03-01T00:00:00Z",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr?"+query, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q", query)
	}
}

func TestGetMetricsTeamFilter(t *testing.T) {
	base := testWindow.Start.Add(24 * time.Hour)
	app := testApp(t,
		mergedPR("pr-1", "alice", base, 2*time.Hour),
		mergedPR("pr-2", "mallory", base, 6*time.Hour),
	)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr?team=platform", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeMetrics(t, resp)
	assert.Equal(t, schema.GroupByTeam, body.GroupBy)
	require.NotEmpty(t, body.Results)
	for _, result := range body.Results {
		assert.Equal(t, "platform", result.Group)
	}
}

func TestPostRecords(t *testing.T) {
	app := testApp(t)

	payload := `[
		{"source": "pull_request", "id": "pr-1", "repository": "acme/api", "author": "alice",
		 "created_at": "2026-03-01T10:00:00Z", "merged_at": "2026-03-01T14:00:00Z"},
		{"source": "pull_request", "repository": "acme/api", "created_at": "2026-03-01T10:00:00Z"}
	]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	defer resp.Body.Close()

	var summary struct {
		Total    int `json:"total"`
		Ingested int `json:"ingested"`
		Dropped  int `json:"dropped"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, summary.Dropped)
}

func TestPostRecordsRejectsNonArray(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(`{"not": "an array"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
