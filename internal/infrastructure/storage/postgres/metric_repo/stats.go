package metric_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/core/types"
	"vendra/internal/domain/metrics"
	"vendra/internal/infrastructure/storage/postgres"
)

// StatsRepo implements metrics.RealSource by aggregating seller activity
// from the orders, seller_visits and sellers tables.
type StatsRepo struct {
	txm *postgres.TxManager
}

// NewStatsRepo creates a new real-stats source.
func NewStatsRepo(txm *postgres.TxManager) *StatsRepo {
	return &StatsRepo{txm: txm}
}

// ComputeRealMetric computes the actual value for one metric and period.
// Static metrics ignore the period; they live on the seller row or span
// the seller's whole history.
func (r *StatsRepo) ComputeRealMetric(ctx context.Context, sellerID id.ID, metric metrics.Metric, period metrics.Period) (types.Money, error) {
	switch metric {
	case metrics.MetricOrdersSold:
		return r.countOrders(ctx, sellerID, period)
	case metrics.MetricTotalSales:
		return r.sumOrders(ctx, sellerID, period, "total_amount")
	case metrics.MetricProfitForecast:
		return r.sumOrders(ctx, sellerID, period, "profit")
	case metrics.MetricVisitors:
		return r.countVisitors(ctx, sellerID, period)
	case metrics.MetricShopFollowers:
		return r.sellerColumn(ctx, sellerID, "followers_count")
	case metrics.MetricShopRating:
		return r.sellerColumn(ctx, sellerID, "rating")
	case metrics.MetricCreditScore:
		return r.sellerColumn(ctx, sellerID, "credit_score")
	case metrics.MetricTotalCustomers:
		return r.countCustomers(ctx, sellerID)
	default:
		return types.Zero(), apperror.NewValidation("unknown metric").
			WithDetail("metric", metric.String())
	}
}

// windowStart returns the inclusive lower bound for a period, or nil for
// the all-time window.
func windowStart(period metrics.Period, now time.Time) *time.Time {
	var start time.Time
	switch period {
	case metrics.PeriodToday:
		start = now.Truncate(24 * time.Hour)
	case metrics.PeriodLast7Days:
		start = now.AddDate(0, 0, -7)
	case metrics.PeriodLast30Days:
		start = now.AddDate(0, 0, -30)
	default:
		return nil
	}
	return &start
}

func (r *StatsRepo) countOrders(ctx context.Context, sellerID id.ID, period metrics.Period) (types.Money, error) {
	sql := `SELECT COALESCE(SUM(quantity), 0) FROM orders WHERE seller_id = $1`
	args := []any{sellerID}
	if start := windowStart(period, time.Now().UTC()); start != nil {
		sql += ` AND created_at >= $2`
		args = append(args, *start)
	}

	var count int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count)
	if err != nil {
		return types.Zero(), fmt.Errorf("count orders: %w", err)
	}
	return types.NewMoneyFromInt(count), nil
}

func (r *StatsRepo) sumOrders(ctx context.Context, sellerID id.ID, period metrics.Period, column string) (types.Money, error) {
	sql := fmt.Sprintf(`SELECT COALESCE(SUM(%s), 0) FROM orders WHERE seller_id = $1`, column)
	args := []any{sellerID}
	if start := windowStart(period, time.Now().UTC()); start != nil {
		sql += ` AND created_at >= $2`
		args = append(args, *start)
	}

	var sum decimal.Decimal
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&sum)
	if err != nil {
		return types.Zero(), fmt.Errorf("sum orders.%s: %w", column, err)
	}
	return sum, nil
}

func (r *StatsRepo) countVisitors(ctx context.Context, sellerID id.ID, period metrics.Period) (types.Money, error) {
	sql := `SELECT COUNT(DISTINCT visitor_id) FROM seller_visits WHERE seller_id = $1`
	args := []any{sellerID}
	if start := windowStart(period, time.Now().UTC()); start != nil {
		sql += ` AND visited_at >= $2`
		args = append(args, *start)
	}

	var count int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count)
	if err != nil {
		return types.Zero(), fmt.Errorf("count visitors: %w", err)
	}
	return types.NewMoneyFromInt(count), nil
}

func (r *StatsRepo) countCustomers(ctx context.Context, sellerID id.ID) (types.Money, error) {
	sql := `SELECT COUNT(DISTINCT customer_id) FROM orders WHERE seller_id = $1`

	var count int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, sellerID).Scan(&count)
	if err != nil {
		return types.Zero(), fmt.Errorf("count customers: %w", err)
	}
	return types.NewMoneyFromInt(count), nil
}

func (r *StatsRepo) sellerColumn(ctx context.Context, sellerID id.ID, column string) (types.Money, error) {
	sql := fmt.Sprintf(`SELECT %s FROM sellers WHERE id = $1`, column)

	var value decimal.Decimal
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, sellerID).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Zero(), apperror.NewNotFound("seller", sellerID)
		}
		return types.Zero(), fmt.Errorf("read sellers.%s: %w", column, err)
	}
	return value, nil
}

// Ensure interface compliance.
var _ metrics.RealSource = (*StatsRepo)(nil)
