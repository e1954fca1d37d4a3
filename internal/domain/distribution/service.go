package distribution

import (
	"context"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/core/types"
	"vendra/internal/domain/batch"
	"vendra/pkg/logger"
)

// Notifier receives change signals for realtime fan-out. Implementations
// must not block; delivery is best effort.
type Notifier interface {
	SellerChanged(ctx context.Context, sellerID id.ID)
}

// Observer receives counter events for instrumentation.
type Observer interface {
	DistributionCreated()
	DistributionDeleted()
	SaleRecorded(quantity int64)
	SaleRejected(reason string)
}

// Ledger coordinates distribution lifecycle and sale accounting on top of
// the repository's atomic counter updates.
type Ledger struct {
	repo     Repository
	catalog  ProductCatalog
	notifier Notifier
	observer Observer
}

// NewLedger creates a Ledger. notifier and observer may be nil.
func NewLedger(repo Repository, catalog ProductCatalog, notifier Notifier, observer Observer) *Ledger {
	return &Ledger{repo: repo, catalog: catalog, notifier: notifier, observer: observer}
}

// CreateParams describes a new distribution request.
type CreateParams struct {
	SellerID       id.ID
	ProductID      id.ID
	AllocatedStock int64
	SellerPrice    *types.Money
	Markup         types.Money
}

// CreateDistribution allocates a product to a seller's storefront. The
// allocation is capped by the product's warehouse stock. On a duplicate
// (seller, product) pair the existing row is returned alongside the
// duplicate error so callers can render the conflicting state.
func (l *Ledger) CreateDistribution(ctx context.Context, p CreateParams) (*Distribution, error) {
	d := NewDistribution(p.SellerID, p.ProductID, p.AllocatedStock, p.Markup)
	d.SellerPrice = p.SellerPrice
	if err := d.Validate(ctx); err != nil {
		return nil, err
	}
	if p.SellerPrice != nil && !p.SellerPrice.IsPositive() {
		return nil, apperror.NewValidation("sellerPrice must be positive")
	}

	product, err := l.catalog.Product(ctx, p.ProductID)
	if err != nil {
		return nil, err
	}
	if p.AllocatedStock > product.WarehouseStock {
		return nil, apperror.NewInsufficientWarehouseStock(p.ProductID.String(), p.AllocatedStock, product.WarehouseStock)
	}
	d.FinalPrice = ComputeFinalPrice(product.Price, p.SellerPrice, p.Markup)

	created, err := l.repo.Create(ctx, d)
	if err != nil {
		if apperror.IsDuplicate(err) {
			existing, getErr := l.repo.GetBySellerProduct(ctx, p.SellerID, p.ProductID)
			if getErr == nil {
				return existing, err
			}
		}
		return nil, err
	}

	logger.Info(ctx, "distribution created",
		"distribution_id", created.ID,
		"seller_id", created.SellerID,
		"product_id", created.ProductID,
		"allocated_stock", created.AllocatedStock)
	if l.observer != nil {
		l.observer.DistributionCreated()
	}
	l.notifyChanged(ctx, created.SellerID)
	return created, nil
}

// RecordSale decrements available stock by quantity and accrues the sale
// counters. The check and the update are a single atomic statement, so
// concurrent sales can never drive available stock negative.
func (l *Ledger) RecordSale(ctx context.Context, sellerID, distributionID id.ID, quantity int64) (*Distribution, error) {
	if quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", quantity)
	}
	if _, err := l.owned(ctx, sellerID, distributionID); err != nil {
		if apperror.IsNotFound(err) && l.observer != nil {
			l.observer.SaleRejected("not_found")
		}
		return nil, err
	}

	d, applied, err := l.repo.ApplySale(ctx, distributionID, quantity)
	if err != nil {
		return nil, err
	}
	if !applied {
		if d == nil {
			if l.observer != nil {
				l.observer.SaleRejected("not_found")
			}
			return nil, apperror.NewNotFound("distribution", distributionID)
		}
		if l.observer != nil {
			l.observer.SaleRejected("insufficient_stock")
		}
		return nil, apperror.NewInsufficientAvailableStock(distributionID.String(), quantity, d.AvailableStock())
	}

	logger.Info(ctx, "sale recorded",
		"distribution_id", d.ID,
		"seller_id", d.SellerID,
		"quantity", quantity,
		"available_stock", d.AvailableStock())
	if l.observer != nil {
		l.observer.SaleRecorded(quantity)
	}
	l.notifyChanged(ctx, d.SellerID)
	return d, nil
}

// UpdateAllocation resizes the allocated pool. Increases are capped by the
// product's warehouse stock; decreases below the already sold quantity are
// rejected.
func (l *Ledger) UpdateAllocation(ctx context.Context, sellerID, distributionID id.ID, allocatedStock int64) (*Distribution, error) {
	if allocatedStock <= 0 {
		return nil, apperror.NewValidation("allocatedStock must be positive").
			WithDetail("allocatedStock", allocatedStock)
	}

	current, err := l.owned(ctx, sellerID, distributionID)
	if err != nil {
		return nil, err
	}
	if allocatedStock > current.AllocatedStock {
		product, err := l.catalog.Product(ctx, current.ProductID)
		if err != nil {
			return nil, err
		}
		if allocatedStock > product.WarehouseStock {
			return nil, apperror.NewInsufficientWarehouseStock(current.ProductID.String(), allocatedStock, product.WarehouseStock)
		}
	}

	d, applied, err := l.repo.UpdateAllocation(ctx, distributionID, allocatedStock)
	if err != nil {
		return nil, err
	}
	if !applied {
		if d == nil {
			return nil, apperror.NewNotFound("distribution", distributionID)
		}
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "allocatedStock cannot drop below sold quantity").
			WithDetail("allocatedStock", allocatedStock).
			WithDetail("sold_quantity", d.SoldQuantity)
	}

	logger.Info(ctx, "allocation updated",
		"distribution_id", d.ID,
		"seller_id", d.SellerID,
		"allocated_stock", d.AllocatedStock)
	l.notifyChanged(ctx, d.SellerID)
	return d, nil
}

// PricingParams describes a pricing edit. Nil fields keep current values;
// ClearSellerPrice reverts the markup base to the catalog price.
type PricingParams struct {
	SellerPrice      *types.Money
	ClearSellerPrice bool
	Markup           *types.Money
}

// UpdatePricing edits seller price and markup, recomputing the final price
// from the current catalog price.
func (l *Ledger) UpdatePricing(ctx context.Context, sellerID, distributionID id.ID, p PricingParams) (*Distribution, error) {
	current, err := l.owned(ctx, sellerID, distributionID)
	if err != nil {
		return nil, err
	}

	sellerPrice := current.SellerPrice
	if p.ClearSellerPrice {
		sellerPrice = nil
	} else if p.SellerPrice != nil {
		sellerPrice = p.SellerPrice
	}
	if sellerPrice != nil && !sellerPrice.IsPositive() {
		return nil, apperror.NewValidation("sellerPrice must be positive")
	}

	markup := current.Markup
	if p.Markup != nil {
		markup = *p.Markup
	}
	if markup.IsNegative() {
		return nil, apperror.NewValidation("markup must not be negative")
	}

	product, err := l.catalog.Product(ctx, current.ProductID)
	if err != nil {
		return nil, err
	}

	update := PricingUpdate{
		SellerPrice:      sellerPrice,
		ClearSellerPrice: sellerPrice == nil,
		Markup:           &markup,
		FinalPrice:       ComputeFinalPrice(product.Price, sellerPrice, markup),
	}
	d, err := l.repo.UpdatePricing(ctx, distributionID, update)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "pricing updated",
		"distribution_id", d.ID,
		"seller_id", d.SellerID,
		"final_price", d.FinalPrice)
	l.notifyChanged(ctx, d.SellerID)
	return d, nil
}

// UpdateStatus changes lifecycle status and, optionally, the promoted flag.
func (l *Ledger) UpdateStatus(ctx context.Context, sellerID, distributionID id.ID, status Status, promoted *bool) (*Distribution, error) {
	if !status.Valid() {
		return nil, apperror.NewValidation("invalid status").
			WithDetail("status", string(status))
	}
	if _, err := l.owned(ctx, sellerID, distributionID); err != nil {
		return nil, err
	}
	d, err := l.repo.UpdateStatus(ctx, distributionID, status, promoted)
	if err != nil {
		return nil, err
	}
	l.notifyChanged(ctx, d.SellerID)
	return d, nil
}

// Get returns a seller's distribution by id.
func (l *Ledger) Get(ctx context.Context, sellerID, distributionID id.ID) (*Distribution, error) {
	return l.owned(ctx, sellerID, distributionID)
}

// List returns a seller's distributions.
func (l *Ledger) List(ctx context.Context, sellerID id.ID, filter ListFilter) ([]Distribution, error) {
	return l.repo.ListBySeller(ctx, sellerID, filter)
}

// Delete removes a distribution. Rows with recorded sales are never
// deleted; such attempts fail with a conflict carrying the sold quantity.
func (l *Ledger) Delete(ctx context.Context, sellerID, distributionID id.ID) error {
	if _, err := l.owned(ctx, sellerID, distributionID); err != nil {
		return err
	}
	deleted, blocked, err := l.repo.Delete(ctx, distributionID)
	if err != nil {
		return err
	}
	if blocked {
		d, getErr := l.repo.GetByID(ctx, distributionID)
		if getErr != nil {
			return getErr
		}
		return apperror.NewDistributionHasSales(distributionID.String(), d.SoldQuantity)
	}
	if !deleted {
		return apperror.NewNotFound("distribution", distributionID)
	}

	logger.Info(ctx, "distribution deleted", "distribution_id", distributionID)
	if l.observer != nil {
		l.observer.DistributionDeleted()
	}
	return nil
}

// BulkCreate creates multiple distributions for one seller. Items succeed
// or fail independently; there is no rollback of earlier successes.
func (l *Ledger) BulkCreate(ctx context.Context, sellerID id.ID, items []CreateParams) batch.Result {
	res := batch.Run(ctx, items, func(p CreateParams) string {
		return p.ProductID.String()
	}, func(ctx context.Context, p CreateParams) error {
		p.SellerID = sellerID
		_, err := l.CreateDistribution(ctx, p)
		return err
	})
	logger.Info(ctx, "bulk create finished",
		"seller_id", sellerID,
		"successful", res.Successful,
		"failed", res.Failed)
	return res
}

// BulkDelete deletes multiple distributions for one seller with per-item
// error isolation. Rows with sales, or rows belonging to another seller,
// are reported as failures, not skipped silently.
func (l *Ledger) BulkDelete(ctx context.Context, sellerID id.ID, ids []id.ID) batch.Result {
	res := batch.Run(ctx, ids, id.ID.String, func(ctx context.Context, distributionID id.ID) error {
		return l.Delete(ctx, sellerID, distributionID)
	})
	logger.Info(ctx, "bulk delete finished",
		"seller_id", sellerID,
		"successful", res.Successful,
		"failed", res.Failed)
	return res
}

// owned loads a distribution, hiding rows that belong to another seller.
func (l *Ledger) owned(ctx context.Context, sellerID, distributionID id.ID) (*Distribution, error) {
	d, err := l.repo.GetByID(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	if d.SellerID != sellerID {
		return nil, apperror.NewNotFound("distribution", distributionID)
	}
	return d, nil
}

func (l *Ledger) notifyChanged(ctx context.Context, sellerID id.ID) {
	if l.notifier != nil {
		l.notifier.SellerChanged(ctx, sellerID)
	}
}
