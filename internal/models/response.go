package models

import "github.com/spcgrid/spcgrid/internal/spc"

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ChartResponse represents a computed chart response
type ChartResponse struct {
	RequestID string      `json:"request_id"`
	Cached    bool        `json:"cached"`
	Result    *spc.Result `json:"result"`
}

// ChartTypeView describes one supported chart type
type ChartTypeView struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ChartTypesResponse represents the chart type listing response
type ChartTypesResponse struct {
	ChartTypes []ChartTypeView `json:"chart_types"`
}

// RuleView describes one registered control rule
type RuleView struct {
	ID        string `json:"id"`
	ZoneBased bool   `json:"zone_based"`
	Default   bool   `json:"default"`
}

// RulesResponse represents the rule listing response
type RulesResponse struct {
	Rules []RuleView `json:"rules"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
