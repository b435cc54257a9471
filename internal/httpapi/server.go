// Package httpapi exposes the metric engine over HTTP for dashboards
// and automation. It is a thin adapter: requests map to one engine
// computation, and responses are the engine's results verbatim.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/devexhq/pulse/core"
	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/internal/ingest"
	"github.com/devexhq/pulse/schema"
)

// Server holds the shared backends behind the HTTP handlers. Engines
// are built per request since the window and grouping come from query
// parameters; the cache behind them is shared.
type Server struct {
	store    contract.RecordStore
	cache    contract.MetricCache
	resolver contract.TeamResolver
	baseCfg  *contract.Config
}

// NewServer wires the handlers to their backends.
func NewServer(store contract.RecordStore, cache contract.MetricCache, resolver contract.TeamResolver, baseCfg *contract.Config) *Server {
	return &Server{store: store, cache: cache, resolver: resolver, baseCfg: baseCfg}
}

// metricFamilies maps URL path segments to metric families.
var metricFamilies = map[string][]schema.MetricName{
	"pr":      core.PullRequestMetrics,
	"issues":  core.IssueMetrics,
	"commits": core.CommitMetrics,
	"dora":    core.DORAMetrics,
	"runners": core.RunnerMetrics,
	"all":     core.AllMetricNames(),
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "pulse",
		DisableStartupMessage: true,
	})

	app.Get("/health", s.GetHealth)
	app.Get("/api/v1/metrics/:family", s.GetMetrics)
	app.Post("/api/v1/records", s.PostRecords)

	return app
}

// GetHealth reports liveness plus the store's global data version.
func (s *Server) GetHealth(c *fiber.Ctx) error {
	version, err := s.store.DataVersion(c.Context(), "")
	if err != nil {
		return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "store_unavailable",
			Message: err.Error(),
		})
	}
	return c.Status(http.StatusOK).JSON(HealthResponse{Status: "ok", DataVersion: version})
}

// GetMetrics computes one metric family with the query parameters
// layered over the server's base configuration.
func (s *Server) GetMetrics(c *fiber.Ctx) error {
	family := c.Params("family")
	names, ok := metricFamilies[family]
	if !ok {
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Error:   "unknown_family",
			Message: "must be pr, issues, commits, dora, runners, or all",
		})
	}

	cfg, err := s.requestConfig(c)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: err.Error(),
		})
	}

	engine := core.NewEngine(s.store, s.cache, s.resolver, cfg)
	results, err := engine.Compute(c.Context(), names)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}

	team := c.Query("team", "")
	if team != "" {
		results = filterByGroup(results, team)
	}

	return c.Status(http.StatusOK).JSON(MetricsResponse{
		Family:     family,
		Repository: cfg.Repository,
		Team:       team,
		GroupBy:    cfg.GroupBy,
		Window:     cfg.Window,
		Results:    results,
	})
}

// PostRecords ingests a JSON array of raw records.
func (s *Server) PostRecords(c *fiber.Ctx) error {
	var raw []map[string]any
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_body",
			Message: "expected a JSON array of records",
		})
	}

	summary, err := ingest.Run(c.Context(), s.store, raw)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "ingest_failed",
			Message: err.Error(),
		})
	}
	return c.Status(http.StatusAccepted).JSON(summary)
}

// requestConfig clones the base config with per-request overrides.
func (s *Server) requestConfig(c *fiber.Ctx) (*contract.Config, error) {
	cfg := s.baseCfg.Clone()

	if repo := c.Query("repo", ""); repo != "" {
		cfg.Repository = repo
	}
	if c.Query("team", "") != "" {
		cfg.GroupBy = schema.GroupByTeam
	} else if groupBy := c.Query("group_by", ""); groupBy != "" {
		kind := schema.GroupKind(groupBy)
		if _, ok := schema.ValidGroupKinds[kind]; !ok {
			return nil, fiber.NewError(http.StatusBadRequest, "invalid group_by")
		}
		cfg.GroupBy = kind
	}

	start, end := cfg.Window.Start, cfg.Window.End
	if startStr := c.Query("start", ""); startStr != "" {
		t, err := time.Parse(contract.DateTimeFormat, startStr)
		if err != nil {
			return nil, err
		}
		start = t
	}
	if endStr := c.Query("end", ""); endStr != "" {
		t, err := time.Parse(contract.DateTimeFormat, endStr)
		if err != nil {
			return nil, err
		}
		end = t
	}
	if start.After(end) {
		return nil, fiber.NewError(http.StatusBadRequest, "start must precede end")
	}
	cfg.Window = schema.NewWindow(start, end)

	return cfg, nil
}

// filterByGroup keeps results for one group only.
func filterByGroup(results []schema.MetricResult, group string) []schema.MetricResult {
	var out []schema.MetricResult
	for _, r := range results {
		if r.Group == group {
			out = append(out, r)
		}
	}
	return out
}
