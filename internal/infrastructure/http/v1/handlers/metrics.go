package handlers

import (
	"github.com/gin-gonic/gin"

	"vendra/internal/core/apperror"
	"vendra/internal/core/types"
	"vendra/internal/domain/metrics"
	"vendra/internal/infrastructure/http/v1/dto"
	"vendra/internal/infrastructure/storage/postgres"
)

// MetricsHandler handles seller metric reads and override administration.
type MetricsHandler struct {
	*BaseHandler
	store    *metrics.Store
	resolver *metrics.Resolver
	audit    *postgres.AuditService
}

// NewMetricsHandler creates a new metrics handler. audit may be nil; the
// audit history endpoint then returns an empty trail.
func NewMetricsHandler(base *BaseHandler, store *metrics.Store, resolver *metrics.Resolver, audit *postgres.AuditService) *MetricsHandler {
	return &MetricsHandler{
		BaseHandler: base,
		store:       store,
		resolver:    resolver,
		audit:       audit,
	}
}

// Resolve handles GET /sellers/:sellerId/metrics
// Returns the full resolved metric set for one period. Failed real-metric
// computations degrade per metric instead of failing the request.
func (h *MetricsHandler) Resolve(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return
	}

	var query dto.ResolveMetricsQuery
	if !h.BindQuery(c, &query) {
		return
	}
	period, err := metrics.ParsePeriod(query.Period)
	if err != nil {
		h.Error(c, err)
		return
	}

	resolved, err := h.resolver.Resolve(c.Request.Context(), sellerID, period)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ResolvedMetricsResponse{
		SellerID: sellerID.String(),
		Period:   period.String(),
		Metrics:  resolved,
	})
}

// ListOverrides handles GET /sellers/:sellerId/overrides
func (h *MetricsHandler) ListOverrides(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return
	}

	overrides, err := h.store.Overrides(c.Request.Context(), sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.OverrideListResponse{
		SellerID:  sellerID.String(),
		Overrides: overrides,
	})
}

// SetOverride handles PUT /sellers/:sellerId/overrides
// Creates or updates the override for (metric, period). The original value
// recorded at first creation survives later edits.
func (h *MetricsHandler) SetOverride(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return
	}

	var req dto.SetOverrideRequest
	if !h.BindJSON(c, &req) {
		return
	}

	metric := metrics.Metric(req.MetricName)
	period, err := metrics.ParsePeriod(req.Period)
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()

	// Capture the real value once so the stored row can report what the
	// override replaced. A client-supplied originalValue takes precedence.
	var original types.Money
	if req.OriginalValue != nil {
		original = *req.OriginalValue
	} else {
		original, err = h.resolver.RealValue(ctx, sellerID, metric, period)
		if err != nil {
			if !apperror.IsCode(err, apperror.CodeDataUnavailable) {
				h.Error(c, err)
				return
			}
			// Real side is degraded; store the override anyway with a zero
			// original.
		}
	}

	stored, err := h.store.SetOverride(ctx, metrics.SetOverrideParams{
		SellerID:      sellerID,
		Metric:        metric,
		Period:        period,
		OverrideValue: req.OverrideValue,
		PeriodValue:   req.PeriodSpecificValue,
		OriginalValue: original,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stored)
}

// ClearOverride handles DELETE /sellers/:sellerId/overrides/:metric
// Period comes from the query string and defaults to total. Clearing an
// absent override succeeds.
func (h *MetricsHandler) ClearOverride(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return
	}

	period, err := metrics.ParsePeriod(c.Query("period"))
	if err != nil {
		h.Error(c, err)
		return
	}

	err = h.store.ClearOverride(c.Request.Context(), sellerID, metrics.Metric(c.Param("metric")), period)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// ClearAllOverrides handles DELETE /sellers/:sellerId/overrides
func (h *MetricsHandler) ClearAllOverrides(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return
	}

	count, err := h.store.ClearAllForSeller(c.Request.Context(), sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.CountResponse{Count: count})
}

// BulkClearOverrides handles DELETE /overrides/clear-all
// Maintenance operation: clears overrides for every seller that has any,
// with per-seller error isolation.
func (h *MetricsHandler) BulkClearOverrides(c *gin.Context) {
	res, err := h.store.ClearAllOverrides(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewBulkResultResponse(res))
}

// OverrideAudit handles GET /sellers/:sellerId/overrides/audit
func (h *MetricsHandler) OverrideAudit(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 50)

	resp := dto.AuditHistoryResponse{SellerID: sellerID.String()}
	if h.audit != nil {
		entries, err := h.audit.SellerHistory(c.Request.Context(), sellerID, limit)
		if err != nil {
			h.Error(c, err)
			return
		}
		resp.Entries = entries
	}

	h.OK(c, resp)
}
