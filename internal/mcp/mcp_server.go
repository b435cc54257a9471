// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/devexhq/pulse/internal/contract"
)

// NewMCPServer initializes and configures the Pulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.RecordStore, cache contract.MetricCache, resolver contract.TeamResolver) *server.MCPServer {
	s := server.NewMCPServer(
		"Pulse Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:  baseCfg,
		store:    store,
		cache:    cache,
		resolver: resolver,
	}

	// --- 1. Tool: get_pr_metrics ---
	s.AddTool(mcp.NewTool("get_pr_metrics",
		mcp.WithDescription("Compute pull request metrics (lead time, review cycles, size distribution, merge rate, throughput)."),
		mcp.WithString("repo", mcp.Description("Repository to analyze, e.g. 'acme/api'. Defaults to the configured repository.")),
		mcp.WithString("group_by", mcp.Description("Grouping dimension. Defaults to 'repo'."), mcp.Enum("repo", "team", "author", "none")),
		mcp.WithString("start", mcp.Description("Window start as RFC 3339, e.g. '2026-03-01T00:00:00Z'.")),
		mcp.WithString("end", mcp.Description("Window end as RFC 3339.")),
	), h.handleGetPRMetrics)

	// --- 2. Tool: get_issue_metrics ---
	s.AddTool(mcp.NewTool("get_issue_metrics",
		mcp.WithDescription("Compute issue metrics (completed-issue velocity and backlog health)."),
		mcp.WithString("repo", mcp.Description("Repository to analyze.")),
		mcp.WithString("group_by", mcp.Description("Grouping dimension."), mcp.Enum("repo", "team", "author", "none")),
		mcp.WithString("start", mcp.Description("Window start as RFC 3339.")),
		mcp.WithString("end", mcp.Description("Window end as RFC 3339.")),
	), h.handleGetIssueMetrics)

	// --- 3. Tool: get_dora_metrics ---
	s.AddTool(mcp.NewTool("get_dora_metrics",
		mcp.WithDescription("Compute the four DORA metrics: deployment frequency, lead time for changes, change failure rate and time to restore."),
		mcp.WithString("repo", mcp.Description("Repository to analyze.")),
		mcp.WithString("start", mcp.Description("Window start as RFC 3339.")),
		mcp.WithString("end", mcp.Description("Window end as RFC 3339.")),
	), h.handleGetDORAMetrics)

	// --- 4. Tool: get_runner_performance ---
	s.AddTool(mcp.NewTool("get_runner_performance",
		mcp.WithDescription("Compute CI runner performance (queue pickup latency, execution time and success rate) grouped by runner type."),
		mcp.WithString("repo", mcp.Description("Repository to analyze.")),
		mcp.WithString("start", mcp.Description("Window start as RFC 3339.")),
		mcp.WithString("end", mcp.Description("Window end as RFC 3339.")),
	), h.handleGetRunnerPerformance)

	return s
}

// StartMCPServer starts the Pulse MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.RecordStore, cache contract.MetricCache, resolver contract.TeamResolver) error {
	s := NewMCPServer(baseCfg, store, cache, resolver)
	return server.ServeStdio(s)
}
