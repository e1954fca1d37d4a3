// Package distribution provides the inventory allocation ledger. A seller
// "distributes" a shared catalog product into their own storefront with an
// allocated stock pool that must never be oversold relative to the shared
// warehouse stock.
package distribution

import (
	"context"
	"time"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/core/types"
)

// Status is the lifecycle state of a distribution.
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusSuspended  Status = "suspended"
	StatusOutOfStock Status = "out_of_stock"
)

// Valid reports whether s is a recognized status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusOutOfStock:
		return true
	}
	return false
}

// Sellable reports whether sales may be recorded in this status.
// out_of_stock is sellable in principle; the stock guard rejects anyway.
func (s Status) Sellable() bool {
	return s == StatusActive || s == StatusOutOfStock
}

// Distribution is a seller's allocation of a shared catalog product.
// Identity is unique per (seller, product); at all times
// 0 <= SoldQuantity <= AllocatedStock.
type Distribution struct {
	ID        id.ID `db:"id" json:"id"`
	SellerID  id.ID `db:"seller_id" json:"sellerId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	// SellerPrice, when set, replaces the catalog price as the markup base.
	SellerPrice *types.Money `db:"seller_price" json:"sellerPrice,omitempty"`
	Markup      types.Money  `db:"markup" json:"markup"`

	// FinalPrice = SellerPrice + Markup, or catalog price + Markup when
	// SellerPrice is absent. Fixed at creation/edit time.
	FinalPrice types.Money `db:"final_price" json:"finalPrice"`

	AllocatedStock int64 `db:"allocated_stock" json:"allocatedStock"`
	SoldQuantity   int64 `db:"sold_quantity" json:"soldQuantity"`

	TotalSales   int64       `db:"total_sales" json:"totalSales"`
	TotalRevenue types.Money `db:"total_revenue" json:"totalRevenue"`
	TotalProfit  types.Money `db:"total_profit" json:"totalProfit"`

	Status         Status      `db:"status" json:"status"`
	IsPromoted     bool        `db:"is_promoted" json:"isPromoted"`
	CommissionRate types.Money `db:"commission_rate" json:"commissionRate"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// AvailableStock is the derived sellable remainder, floored at zero.
func (d *Distribution) AvailableStock() int64 {
	avail := d.AllocatedStock - d.SoldQuantity
	if avail < 0 {
		return 0
	}
	return avail
}

// NewDistribution creates a distribution with generated ID and timestamps.
func NewDistribution(sellerID, productID id.ID, allocatedStock int64, markup types.Money) *Distribution {
	now := time.Now().UTC()
	return &Distribution{
		ID:             id.New(),
		SellerID:       sellerID,
		ProductID:      productID,
		AllocatedStock: allocatedStock,
		Markup:         markup,
		Status:         StatusActive,
		TotalRevenue:   types.Zero(),
		TotalProfit:    types.Zero(),
		CommissionRate: types.Zero(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate checks distribution invariants.
func (d *Distribution) Validate(ctx context.Context) error {
	if id.IsNil(d.SellerID) {
		return apperror.NewValidation("sellerId is required")
	}
	if id.IsNil(d.ProductID) {
		return apperror.NewValidation("productId is required")
	}
	if d.AllocatedStock <= 0 {
		return apperror.NewValidation("allocatedStock must be positive").
			WithDetail("allocatedStock", d.AllocatedStock)
	}
	if d.Markup.IsNegative() {
		return apperror.NewValidation("markup must not be negative")
	}
	if d.SoldQuantity < 0 || d.SoldQuantity > d.AllocatedStock {
		return apperror.NewValidation("soldQuantity out of range").
			WithDetail("soldQuantity", d.SoldQuantity).
			WithDetail("allocatedStock", d.AllocatedStock)
	}
	if !d.Status.Valid() {
		return apperror.NewValidation("invalid status").
			WithDetail("status", string(d.Status))
	}
	return nil
}

// ComputeFinalPrice derives the storefront price from the markup base.
func ComputeFinalPrice(catalogPrice types.Money, sellerPrice *types.Money, markup types.Money) types.Money {
	base := catalogPrice
	if sellerPrice != nil {
		base = *sellerPrice
	}
	return base.Add(markup)
}

// Product is the shared-catalog view the ledger needs: the warehouse stock
// cap for allocations and the price base for final pricing.
type Product struct {
	ID             id.ID       `db:"id" json:"id"`
	Price          types.Money `db:"price" json:"price"`
	WarehouseStock int64       `db:"warehouse_stock" json:"warehouseStock"`
}
