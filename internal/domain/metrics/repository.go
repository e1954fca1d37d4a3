package metrics

import (
	"context"

	"vendra/internal/core/id"
	"vendra/internal/core/types"
)

// Repository persists metric overrides.
// Implementations must upsert atomically on the (seller_id, metric, period)
// unique constraint: a concurrent second insert becomes an update of the
// first writer's row, never a user-visible duplicate error.
type Repository interface {
	// Upsert inserts the override or, when the tuple already exists, updates
	// override_value and period_value. original_value and created_at are
	// preserved from the first write. Returns the stored row.
	Upsert(ctx context.Context, o *Override) (*Override, error)

	// GetBySeller returns all overrides for a seller across metrics and periods.
	GetBySeller(ctx context.Context, sellerID id.ID) ([]Override, error)

	// Delete removes one override. Deleting a missing tuple is not an error;
	// the bool reports whether a row was actually removed.
	Delete(ctx context.Context, sellerID id.ID, metric Metric, period Period) (bool, error)

	// DeleteBySeller removes every override for a seller, returning the count.
	DeleteBySeller(ctx context.Context, sellerID id.ID) (int64, error)

	// SellersWithOverrides lists distinct sellers that have at least one
	// override, for bulk maintenance operations.
	SellersWithOverrides(ctx context.Context) ([]id.ID, error)
}

// RealSource computes a seller's real metric value from order/product data.
// Supplied by the order/product subsystem; the resolver treats failures as a
// per-metric degradation, not a fatal error.
type RealSource interface {
	ComputeRealMetric(ctx context.Context, sellerID id.ID, metric Metric, period Period) (types.Money, error)
}
