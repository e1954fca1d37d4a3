package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/domain/distribution"
	"vendra/internal/infrastructure/http/v1/dto"
)

// DistributionHandler handles distribution lifecycle and sale endpoints.
type DistributionHandler struct {
	*BaseHandler
	ledger *distribution.Ledger
}

// NewDistributionHandler creates a new distribution handler.
func NewDistributionHandler(base *BaseHandler, ledger *distribution.Ledger) *DistributionHandler {
	return &DistributionHandler{
		BaseHandler: base,
		ledger:      ledger,
	}
}

// List handles GET /sellers/:sellerId/distributions
func (h *DistributionHandler) List(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return
	}

	var query dto.ListDistributionsQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	filter := distribution.ListFilter{
		Status:       distribution.Status(query.Status),
		PromotedOnly: query.PromotedOnly,
		Limit:        uint64(query.PageSize),
		Offset:       uint64(query.Offset()),
	}
	if query.Status != "" && !filter.Status.Valid() {
		h.Error(c, apperror.NewValidation("invalid status filter").
			WithDetail("status", query.Status))
		return
	}

	items, err := h.ledger.List(c.Request.Context(), sellerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.DistributionListResponse{
		SellerID: sellerID.String(),
		Items:    items,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
}

// Get handles GET /sellers/:sellerId/distributions/:id
// The ledger scopes the lookup to the routed seller, so another seller's
// distribution reads as not found.
func (h *DistributionHandler) Get(c *gin.Context) {
	sellerID, distributionID, ok := h.parseSellerScopedID(c)
	if !ok {
		return
	}

	d, err := h.ledger.Get(c.Request.Context(), sellerID, distributionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// Create handles POST /sellers/:sellerId/distributions
// Each (seller, product) pair may exist once; a duplicate request returns
// 409 so the client can show the existing distribution.
func (h *DistributionHandler) Create(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return
	}

	var req dto.CreateDistributionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	params, err := createParams(sellerID, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	d, err := h.ledger.CreateDistribution(c.Request.Context(), params)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

// RecordSale handles POST /sellers/:sellerId/distributions/:id/sales
func (h *DistributionHandler) RecordSale(c *gin.Context) {
	sellerID, distributionID, ok := h.parseSellerScopedID(c)
	if !ok {
		return
	}

	var req dto.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.ledger.RecordSale(c.Request.Context(), sellerID, distributionID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// UpdateAllocation handles PATCH /sellers/:sellerId/distributions/:id/allocation
func (h *DistributionHandler) UpdateAllocation(c *gin.Context) {
	sellerID, distributionID, ok := h.parseSellerScopedID(c)
	if !ok {
		return
	}

	var req dto.UpdateAllocationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.ledger.UpdateAllocation(c.Request.Context(), sellerID, distributionID, req.AllocatedStock)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// UpdatePricing handles PATCH /sellers/:sellerId/distributions/:id/pricing
func (h *DistributionHandler) UpdatePricing(c *gin.Context) {
	sellerID, distributionID, ok := h.parseSellerScopedID(c)
	if !ok {
		return
	}

	var req dto.UpdatePricingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.ledger.UpdatePricing(c.Request.Context(), sellerID, distributionID, distribution.PricingParams{
		SellerPrice:      req.SellerPrice,
		ClearSellerPrice: req.ClearSellerPrice,
		Markup:           req.Markup,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// UpdateStatus handles PATCH /sellers/:sellerId/distributions/:id/status
func (h *DistributionHandler) UpdateStatus(c *gin.Context) {
	sellerID, distributionID, ok := h.parseSellerScopedID(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.ledger.UpdateStatus(c.Request.Context(), sellerID, distributionID, distribution.Status(req.Status), req.IsPromoted)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// Delete handles DELETE /sellers/:sellerId/distributions/:id
// Distributions with recorded sales are not deletable.
func (h *DistributionHandler) Delete(c *gin.Context) {
	sellerID, distributionID, ok := h.parseSellerScopedID(c)
	if !ok {
		return
	}

	if err := h.ledger.Delete(c.Request.Context(), sellerID, distributionID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// BulkCreate handles POST /sellers/:sellerId/distributions/bulk
// Items succeed or fail independently. The response always carries the
// per-item breakdown, even when every item failed.
func (h *DistributionHandler) BulkCreate(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return
	}

	var req dto.BulkCreateDistributionsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items := make([]distribution.CreateParams, 0, len(req.Items))
	for _, item := range req.Items {
		params, err := createParams(sellerID, item)
		if err != nil {
			h.Error(c, err)
			return
		}
		items = append(items, params)
	}

	res := h.ledger.BulkCreate(c.Request.Context(), sellerID, items)
	h.OK(c, dto.NewBulkResultResponse(res))
}

// BulkDelete handles DELETE /sellers/:sellerId/distributions/bulk
// Ids that belong to another seller fail item by item instead of touching
// that seller's rows.
func (h *DistributionHandler) BulkDelete(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return
	}

	var req dto.BulkDeleteDistributionsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ids := make([]id.ID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid distribution id").
				WithDetail("id", raw))
			return
		}
		ids = append(ids, parsed)
	}

	res := h.ledger.BulkDelete(c.Request.Context(), sellerID, ids)
	h.OK(c, dto.NewBulkResultResponse(res))
}

// parseSellerScopedID parses the seller and distribution ids from the path.
func (h *DistributionHandler) parseSellerScopedID(c *gin.Context) (id.ID, id.ID, bool) {
	sellerID, ok := h.ParseID(c, "sellerId")
	if !ok {
		return id.Nil(), id.Nil(), false
	}
	distributionID, ok := h.ParseID(c, "id")
	if !ok {
		return id.Nil(), id.Nil(), false
	}
	return sellerID, distributionID, true
}

func createParams(sellerID id.ID, req dto.CreateDistributionRequest) (distribution.CreateParams, error) {
	productID, err := id.Parse(req.ProductID)
	if err != nil {
		return distribution.CreateParams{}, apperror.NewValidation("invalid productId format").
			WithDetail("productId", req.ProductID)
	}
	return distribution.CreateParams{
		SellerID:       sellerID,
		ProductID:      productID,
		AllocatedStock: req.AllocatedStock,
		SellerPrice:    req.SellerPrice,
		Markup:         req.Markup,
	}, nil
}
