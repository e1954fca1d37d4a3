package dto

import (
	"vendra/internal/core/types"
	"vendra/internal/domain/batch"
	"vendra/internal/domain/distribution"
)

// CreateDistributionRequest allocates a product to the seller's storefront.
type CreateDistributionRequest struct {
	ProductID      string       `json:"productId" binding:"required"`
	AllocatedStock int64        `json:"allocatedStock" binding:"required,gt=0"`
	SellerPrice    *types.Money `json:"sellerPrice"`
	Markup         types.Money  `json:"markup"`
}

// BulkCreateDistributionsRequest creates several distributions at once.
type BulkCreateDistributionsRequest struct {
	Items []CreateDistributionRequest `json:"items" binding:"required,min=1,max=100,dive"`
}

// BulkDeleteDistributionsRequest deletes several distributions at once.
type BulkDeleteDistributionsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100"`
}

// RecordSaleRequest records quantity units sold from a distribution.
type RecordSaleRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// UpdateAllocationRequest resizes the allocated stock pool.
type UpdateAllocationRequest struct {
	AllocatedStock int64 `json:"allocatedStock" binding:"required,gt=0"`
}

// UpdatePricingRequest edits seller price and markup. Setting
// clearSellerPrice reverts the markup base to the catalog price.
type UpdatePricingRequest struct {
	SellerPrice      *types.Money `json:"sellerPrice"`
	ClearSellerPrice bool         `json:"clearSellerPrice"`
	Markup           *types.Money `json:"markup"`
}

// UpdateStatusRequest changes lifecycle status and the promoted flag.
type UpdateStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	IsPromoted *bool  `json:"isPromoted"`
}

// ListDistributionsQuery narrows a distribution listing.
type ListDistributionsQuery struct {
	PaginationRequest
	Status       string `form:"status"`
	PromotedOnly bool   `form:"promotedOnly"`
}

// DistributionListResponse is a page of distributions.
type DistributionListResponse struct {
	SellerID string                      `json:"sellerId"`
	Items    []distribution.Distribution `json:"items"`
	Page     int                         `json:"page"`
	PageSize int                         `json:"pageSize"`
}

// BulkResultResponse reports a bulk operation outcome.
type BulkResultResponse struct {
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Errors     []batch.ItemError `json:"errors,omitempty"`
}

// NewBulkResultResponse converts a batch result.
func NewBulkResultResponse(res batch.Result) BulkResultResponse {
	return BulkResultResponse{
		Successful: res.Successful,
		Failed:     res.Failed,
		Errors:     res.Errors,
	}
}
