// Package metric_repo provides PostgreSQL implementations for the metric
// override store and the real-stats source.
package metric_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/domain/metrics"
	"vendra/internal/infrastructure/storage/postgres"
)

const overridesTable = "metric_overrides"

var overrideColumns = []string{
	"id", "seller_id", "metric", "period",
	"override_value", "period_value", "original_value",
	"created_at", "updated_at",
}

// OverrideRepo implements metrics.Repository.
type OverrideRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewOverrideRepo creates a new override repository.
func NewOverrideRepo(txm *postgres.TxManager) *OverrideRepo {
	return &OverrideRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Upsert inserts or updates the override for (seller, metric, period).
// On conflict the stored original_value and created_at survive; only the
// override values and updated_at change.
func (r *OverrideRepo) Upsert(ctx context.Context, o *metrics.Override) (*metrics.Override, error) {
	q := r.builder.Insert(overridesTable).
		Columns(overrideColumns...).
		Values(
			o.ID, o.SellerID, o.Metric, o.Period,
			o.OverrideValue, o.PeriodValue, o.OriginalValue,
			o.CreatedAt, o.UpdatedAt,
		).
		Suffix(`ON CONFLICT (seller_id, metric, period) DO UPDATE SET
			override_value = EXCLUDED.override_value,
			period_value = EXCLUDED.period_value,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + strings.Join(overrideColumns, ", "))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert: %w", err)
	}

	var saved metrics.Override
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &saved, sql, args...); err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperror.NewNotFound("seller", o.SellerID)
		}
		return nil, fmt.Errorf("upsert override: %w", err)
	}
	return &saved, nil
}

// GetBySeller returns all overrides for a seller.
func (r *OverrideRepo) GetBySeller(ctx context.Context, sellerID id.ID) ([]metrics.Override, error) {
	q := r.builder.Select(overrideColumns...).
		From(overridesTable).
		Where(squirrel.Eq{"seller_id": sellerID}).
		OrderBy("metric", "period")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []metrics.Override
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select overrides: %w", err)
	}
	return rows, nil
}

// Delete removes one override; reports whether a row existed.
func (r *OverrideRepo) Delete(ctx context.Context, sellerID id.ID, metric metrics.Metric, period metrics.Period) (bool, error) {
	q := r.builder.Delete(overridesTable).
		Where(squirrel.Eq{
			"seller_id": sellerID,
			"metric":    metric,
			"period":    period,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("delete override: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteBySeller removes all of a seller's overrides.
func (r *OverrideRepo) DeleteBySeller(ctx context.Context, sellerID id.ID) (int64, error) {
	q := r.builder.Delete(overridesTable).
		Where(squirrel.Eq{"seller_id": sellerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete overrides: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SellersWithOverrides returns distinct seller ids having any override.
func (r *OverrideRepo) SellersWithOverrides(ctx context.Context) ([]id.ID, error) {
	q := r.builder.Select("DISTINCT seller_id").
		From(overridesTable).
		OrderBy("seller_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []id.ID
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("select sellers: %w", err)
	}
	return ids, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// Ensure interface compliance.
var _ metrics.Repository = (*OverrideRepo)(nil)
