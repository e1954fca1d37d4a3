package realtime

import (
	"context"
	"time"

	"vendra/internal/core/id"
	"vendra/internal/domain/distribution"
	"vendra/internal/domain/metrics"
)

// Snapshot is the dashboard payload for one seller: resolved metrics for
// the current day plus the distribution list.
type Snapshot struct {
	SellerID      string                              `json:"sellerId"`
	Metrics       map[metrics.Metric]metrics.Resolved `json:"metrics"`
	Distributions []distribution.Distribution         `json:"distributions"`
	At            time.Time                           `json:"at"`
}

// Feed composes snapshots from the metric resolver and the allocation
// ledger. It implements Snapshotter.
type Feed struct {
	resolver *metrics.Resolver
	ledger   *distribution.Ledger
}

// NewFeed creates a Feed.
func NewFeed(resolver *metrics.Resolver, ledger *distribution.Ledger) *Feed {
	return &Feed{resolver: resolver, ledger: ledger}
}

// Snapshot builds the seller's dashboard payload. Metric resolution
// degrades per metric; a distribution load failure fails the snapshot.
func (f *Feed) Snapshot(ctx context.Context, sellerID id.ID) (any, error) {
	resolved, err := f.resolver.Resolve(ctx, sellerID, metrics.PeriodToday)
	if err != nil {
		return nil, err
	}
	dists, err := f.ledger.List(ctx, sellerID, distribution.ListFilter{})
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		SellerID:      sellerID.String(),
		Metrics:       resolved,
		Distributions: dists,
		At:            time.Now().UTC(),
	}, nil
}
