package metrics

import (
	"context"
	"fmt"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/core/tx"
	"vendra/internal/core/types"
	"vendra/internal/domain/batch"
	"vendra/pkg/logger"
)

// Notifier receives change events so connected dashboards can be refreshed.
// Implemented by the realtime hub; delivery is best-effort.
type Notifier interface {
	SellerChanged(ctx context.Context, sellerID id.ID)
}

// Auditor records admin override actions for the audit trail. The store
// calls it inside the mutation transaction, so a failed audit write rolls
// the mutation back.
type Auditor interface {
	OverrideSet(ctx context.Context, o *Override) error
	OverrideCleared(ctx context.Context, sellerID id.ID, metric Metric, period Period) error
}

// Observer receives counter events for instrumentation.
type Observer interface {
	RecordOverrideSet(metric, period string)
	RecordOverrideCleared(metric, period string)
}

// Store owns metric override persistence. All override mutations go through
// here; no other component touches the override rows directly.
type Store struct {
	repo     Repository
	txm      tx.Manager
	notifier Notifier
	auditor  Auditor
	observer Observer
}

// NewStore creates a new override store. txm, notifier, auditor and
// observer may be nil; without txm the override row and its audit entry
// are written outside a shared transaction.
func NewStore(repo Repository, txm tx.Manager, notifier Notifier, auditor Auditor, observer Observer) *Store {
	return &Store{
		repo:     repo,
		txm:      txm,
		notifier: notifier,
		auditor:  auditor,
		observer: observer,
	}
}

// SetOverrideParams are the admin-supplied values for an upsert.
type SetOverrideParams struct {
	SellerID      id.ID
	Metric        Metric
	Period        Period // zero value defaults to total
	OverrideValue types.Money
	PeriodValue   *types.Money
	OriginalValue types.Money
}

// SetOverride upserts the override for (seller, metric, period). On first
// creation OriginalValue is recorded; later edits change only the override
// and period values. Concurrent writes to the same tuple serialize through
// the unique constraint: the loser of an insert race updates instead.
func (s *Store) SetOverride(ctx context.Context, p SetOverrideParams) (*Override, error) {
	if p.Period == "" {
		p.Period = PeriodTotal
	}

	o := NewOverride(p.SellerID, p.Metric, p.Period, p.OverrideValue, p.OriginalValue)
	o.PeriodValue = p.PeriodValue
	if err := o.Validate(ctx); err != nil {
		return nil, err
	}

	var stored *Override
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.repo.Upsert(ctx, o)
		if err != nil {
			return fmt.Errorf("upsert override: %w", err)
		}
		if s.auditor != nil {
			if err := s.auditor.OverrideSet(ctx, stored); err != nil {
				return fmt.Errorf("audit override set: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "metric override set",
		"seller_id", stored.SellerID,
		"metric", stored.Metric,
		"period", stored.Period,
	)

	if s.observer != nil {
		s.observer.RecordOverrideSet(stored.Metric.String(), stored.Period.String())
	}
	s.notifyChanged(ctx, p.SellerID)

	return stored, nil
}

// Overrides returns every override for a seller.
func (s *Store) Overrides(ctx context.Context, sellerID id.ID) ([]Override, error) {
	return s.repo.GetBySeller(ctx, sellerID)
}

// OverrideMap builds the per-metric, per-period lookup consumed by the resolver.
func (s *Store) OverrideMap(ctx context.Context, sellerID id.ID) (map[Metric]map[Period]Override, error) {
	rows, err := s.repo.GetBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	return buildOverrideMap(rows), nil
}

func buildOverrideMap(rows []Override) map[Metric]map[Period]Override {
	m := make(map[Metric]map[Period]Override)
	for _, o := range rows {
		byPeriod, ok := m[o.Metric]
		if !ok {
			byPeriod = make(map[Period]Override)
			m[o.Metric] = byPeriod
		}
		byPeriod[o.Period] = o
	}
	return m
}

// ClearOverride removes one override. Clearing a tuple that has no override
// is a no-op, not an error.
func (s *Store) ClearOverride(ctx context.Context, sellerID id.ID, metric Metric, period Period) error {
	if period == "" {
		period = PeriodTotal
	}
	if !metric.Valid() {
		return apperror.NewValidation("unrecognized metric name").
			WithDetail("metricName", string(metric))
	}
	if !period.Valid() {
		return apperror.NewValidation("unrecognized period").
			WithDetail("period", string(period))
	}

	var deleted bool
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.repo.Delete(ctx, sellerID, metric, period)
		if err != nil {
			return fmt.Errorf("delete override: %w", err)
		}
		if deleted && s.auditor != nil {
			if err := s.auditor.OverrideCleared(ctx, sellerID, metric, period); err != nil {
				return fmt.Errorf("audit override clear: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}

	logger.Info(ctx, "metric override cleared",
		"seller_id", sellerID, "metric", metric, "period", period,
	)

	if s.observer != nil {
		s.observer.RecordOverrideCleared(metric.String(), period.String())
	}
	s.notifyChanged(ctx, sellerID)

	return nil
}

// ClearAllForSeller removes every override for a seller. Idempotent.
func (s *Store) ClearAllForSeller(ctx context.Context, sellerID id.ID) (int64, error) {
	count, err := s.repo.DeleteBySeller(ctx, sellerID)
	if err != nil {
		return 0, fmt.Errorf("delete seller overrides: %w", err)
	}

	if count > 0 {
		logger.Info(ctx, "cleared all overrides for seller",
			"seller_id", sellerID, "count", count,
		)
		s.notifyChanged(ctx, sellerID)
	}

	return count, nil
}

// SellersWithOverrides lists sellers that currently carry overrides.
func (s *Store) SellersWithOverrides(ctx context.Context) ([]id.ID, error) {
	return s.repo.SellersWithOverrides(ctx)
}

// ClearAllOverrides removes overrides for every seller that has any.
// Sellers are processed independently; a failure for one seller leaves the
// others cleared and is reported per seller.
func (s *Store) ClearAllOverrides(ctx context.Context) (batch.Result, error) {
	sellers, err := s.repo.SellersWithOverrides(ctx)
	if err != nil {
		return batch.Result{}, fmt.Errorf("list sellers with overrides: %w", err)
	}

	res := batch.Run(ctx, sellers, id.ID.String, func(ctx context.Context, sellerID id.ID) error {
		_, err := s.ClearAllForSeller(ctx, sellerID)
		return err
	})

	logger.Info(ctx, "bulk override clear finished",
		"sellers", len(sellers),
		"successful", res.Successful,
		"failed", res.Failed,
	)
	return res, nil
}

func (s *Store) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txm == nil {
		return fn(ctx)
	}
	return s.txm.RunInTransaction(ctx, fn)
}

func (s *Store) notifyChanged(ctx context.Context, sellerID id.ID) {
	if s.notifier != nil {
		s.notifier.SellerChanged(ctx, sellerID)
	}
}
