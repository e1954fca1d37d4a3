package dto

import (
	"vendra/internal/core/types"
	"vendra/internal/domain/metrics"
	"vendra/internal/infrastructure/storage/postgres"
)

// SetOverrideRequest is the admin payload for creating or updating an
// override. Period defaults to total when omitted. OriginalValue is
// optional: when absent the server captures the current real value
// instead.
type SetOverrideRequest struct {
	MetricName          string       `json:"metricName" binding:"required"`
	Period              string       `json:"period"`
	OverrideValue       types.Money  `json:"overrideValue"`
	PeriodSpecificValue *types.Money `json:"periodSpecificValue"`
	OriginalValue       *types.Money `json:"originalValue"`
}

// ResolveMetricsQuery selects the period for a metrics read.
type ResolveMetricsQuery struct {
	Period string `form:"period"`
}

// ResolvedMetricsResponse is the full dashboard metric set for a seller.
type ResolvedMetricsResponse struct {
	SellerID string                              `json:"sellerId"`
	Period   string                              `json:"period"`
	Metrics  map[metrics.Metric]metrics.Resolved `json:"metrics"`
}

// OverrideListResponse lists a seller's stored overrides.
type OverrideListResponse struct {
	SellerID  string             `json:"sellerId"`
	Overrides []metrics.Override `json:"overrides"`
}

// AuditHistoryResponse is a seller's override audit trail, newest first.
type AuditHistoryResponse struct {
	SellerID string                `json:"sellerId"`
	Entries  []postgres.AuditEntry `json:"entries"`
}
