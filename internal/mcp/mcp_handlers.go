package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devexhq/pulse/core"
	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	store    contract.RecordStore
	cache    contract.MetricCache
	resolver contract.TeamResolver
}

// requestConfig clones the base config with the tool call's overrides.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()

	if repo := request.GetString("repo", ""); repo != "" {
		cfg.Repository = repo
	}
	if groupBy := request.GetString("group_by", ""); groupBy != "" {
		kind := schema.GroupKind(groupBy)
		if _, ok := schema.ValidGroupKinds[kind]; !ok {
			return nil, fmt.Errorf("invalid group_by %q", groupBy)
		}
		cfg.GroupBy = kind
	}

	start, end := cfg.Window.Start, cfg.Window.End
	if startStr := request.GetString("start", ""); startStr != "" {
		t, err := time.Parse(contract.DateTimeFormat, startStr)
		if err != nil {
			return nil, fmt.Errorf("invalid start: %w", err)
		}
		start = t
	}
	if endStr := request.GetString("end", ""); endStr != "" {
		t, err := time.Parse(contract.DateTimeFormat, endStr)
		if err != nil {
			return nil, fmt.Errorf("invalid end: %w", err)
		}
		end = t
	}
	if start.After(end) {
		return nil, fmt.Errorf("start must precede end")
	}
	cfg.Window = schema.NewWindow(start, end)

	return cfg, nil
}

// compute runs one metric family and renders the results as JSON text.
func (h *toolHandler) compute(ctx context.Context, request mcp.CallToolRequest, names []schema.MetricName) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	engine := core.NewEngine(h.store, h.cache, h.resolver, cfg)
	results, err := engine.Compute(ctx, names)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("computation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetPRMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.compute(ctx, request, core.PullRequestMetrics)
}

func (h *toolHandler) handleGetIssueMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.compute(ctx, request, core.IssueMetrics)
}

func (h *toolHandler) handleGetDORAMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.compute(ctx, request, core.DORAMetrics)
}

func (h *toolHandler) handleGetRunnerPerformance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.compute(ctx, request, core.RunnerMetrics)
}
