package httpapi

import (
	"github.com/devexhq/pulse/schema"
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MetricsResponse wraps the computed results with the effective query
// parameters, so clients see the window and grouping actually used.
type MetricsResponse struct {
	Family     string                `json:"family"`
	Repository string                `json:"repository,omitempty"`
	Team       string                `json:"team,omitempty"`
	GroupBy    schema.GroupKind      `json:"group_by"`
	Window     schema.Window         `json:"window"`
	Results    []schema.MetricResult `json:"results"`
}

// HealthResponse reports service liveness and store reachability.
type HealthResponse struct {
	Status      string `json:"status"`
	DataVersion int64  `json:"data_version"`
}
