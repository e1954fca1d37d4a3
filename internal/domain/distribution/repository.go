package distribution

import (
	"context"

	"vendra/internal/core/id"
	"vendra/internal/core/types"
)

// Repository is the persistence port for distributions.
// All mutations of stock counters must be atomic at the storage level;
// callers never read-modify-write counter fields.
type Repository interface {
	// Create inserts a new distribution. A (seller_id, product_id) conflict
	// surfaces as apperror.CodeDuplicate.
	Create(ctx context.Context, d *Distribution) (*Distribution, error)

	GetByID(ctx context.Context, distributionID id.ID) (*Distribution, error)
	GetBySellerProduct(ctx context.Context, sellerID, productID id.ID) (*Distribution, error)
	ListBySeller(ctx context.Context, sellerID id.ID, filter ListFilter) ([]Distribution, error)

	// ApplySale atomically records a sale of quantity units: increments
	// sold_quantity and the sales/revenue/profit counters, and flips status
	// to out_of_stock when the pool drains. The update applies only when
	// allocated_stock - sold_quantity >= quantity; applied reports whether
	// it did. The returned row reflects the current state either way.
	ApplySale(ctx context.Context, distributionID id.ID, quantity int64) (d *Distribution, applied bool, err error)

	// UpdateAllocation sets allocated_stock, guarded so it never drops
	// below sold_quantity; applied is false when the guard rejected.
	UpdateAllocation(ctx context.Context, distributionID id.ID, allocatedStock int64) (d *Distribution, applied bool, err error)

	UpdatePricing(ctx context.Context, distributionID id.ID, p PricingUpdate) (*Distribution, error)
	UpdateStatus(ctx context.Context, distributionID id.ID, status Status, promoted *bool) (*Distribution, error)

	// Delete removes the distribution only while sold_quantity is zero.
	// deleted reports a removed row; blocked reports a row that exists but
	// has sales.
	Delete(ctx context.Context, distributionID id.ID) (deleted, blocked bool, err error)
}

// ListFilter narrows ListBySeller output. Zero value lists everything.
type ListFilter struct {
	Status       Status
	PromotedOnly bool
	Limit        uint64
	Offset       uint64
}

// PricingUpdate carries a pricing edit. FinalPrice is recomputed by the
// caller before persisting.
type PricingUpdate struct {
	SellerPrice      *types.Money
	ClearSellerPrice bool
	Markup           *types.Money
	FinalPrice       types.Money
}

// ProductCatalog exposes the shared catalog rows the ledger validates
// allocations against.
type ProductCatalog interface {
	Product(ctx context.Context, productID id.ID) (*Product, error)
}
