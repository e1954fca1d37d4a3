// Package distribution_repo provides PostgreSQL implementations for the
// allocation ledger. Stock counters are only ever changed by conditional
// single-statement updates so concurrent writers cannot oversell.
package distribution_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/domain/distribution"
	"vendra/internal/infrastructure/storage/postgres"
)

const distributionsTable = "distributions"

var distributionColumns = []string{
	"id", "seller_id", "product_id",
	"seller_price", "markup", "final_price",
	"allocated_stock", "sold_quantity",
	"total_sales", "total_revenue", "total_profit",
	"status", "is_promoted", "commission_rate",
	"created_at", "updated_at",
}

// DistributionRepo implements distribution.Repository.
type DistributionRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewDistributionRepo creates a new distribution repository.
func NewDistributionRepo(txm *postgres.TxManager) *DistributionRepo {
	return &DistributionRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new distribution row.
func (r *DistributionRepo) Create(ctx context.Context, d *distribution.Distribution) (*distribution.Distribution, error) {
	q := r.builder.Insert(distributionsTable).
		Columns(distributionColumns...).
		Values(
			d.ID, d.SellerID, d.ProductID,
			d.SellerPrice, d.Markup, d.FinalPrice,
			d.AllocatedStock, d.SoldQuantity,
			d.TotalSales, d.TotalRevenue, d.TotalProfit,
			d.Status, d.IsPromoted, d.CommissionRate,
			d.CreatedAt, d.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(distributionColumns, ", "))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	var saved distribution.Distribution
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &saved, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.NewDuplicate("distribution", "product", d.ProductID.String())
		}
		if isForeignKeyViolation(err) {
			return nil, apperror.NewValidation("seller or product does not exist").
				WithDetail("seller_id", d.SellerID.String()).
				WithDetail("product_id", d.ProductID.String())
		}
		return nil, fmt.Errorf("insert distribution: %w", err)
	}
	return &saved, nil
}

// GetByID returns one distribution.
func (r *DistributionRepo) GetByID(ctx context.Context, distributionID id.ID) (*distribution.Distribution, error) {
	return r.getOne(ctx, squirrel.Eq{"id": distributionID}, "distribution", distributionID)
}

// GetBySellerProduct returns the seller's distribution of a product.
func (r *DistributionRepo) GetBySellerProduct(ctx context.Context, sellerID, productID id.ID) (*distribution.Distribution, error) {
	return r.getOne(ctx, squirrel.Eq{"seller_id": sellerID, "product_id": productID}, "distribution", productID)
}

func (r *DistributionRepo) getOne(ctx context.Context, where squirrel.Eq, entity string, entityID id.ID) (*distribution.Distribution, error) {
	q := r.builder.Select(distributionColumns...).
		From(distributionsTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d distribution.Distribution
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(entity, entityID)
		}
		return nil, fmt.Errorf("get distribution: %w", err)
	}
	return &d, nil
}

// ListBySeller returns a seller's distributions, newest first.
func (r *DistributionRepo) ListBySeller(ctx context.Context, sellerID id.ID, filter distribution.ListFilter) ([]distribution.Distribution, error) {
	q := r.builder.Select(distributionColumns...).
		From(distributionsTable).
		Where(squirrel.Eq{"seller_id": sellerID})

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.PromotedOnly {
		q = q.Where(squirrel.Eq{"is_promoted": true})
	}

	q = q.OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []distribution.Distribution
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select distributions: %w", err)
	}
	return rows, nil
}

// ApplySale records a sale in one conditional update. The stock guard and
// the counter increments run in the same statement, so the pool can never
// go negative under concurrency. Revenue accrues at final_price; profit is
// markup minus the platform commission on the final price.
func (r *DistributionRepo) ApplySale(ctx context.Context, distributionID id.ID, quantity int64) (*distribution.Distribution, bool, error) {
	sql := `
		UPDATE distributions SET
			sold_quantity = sold_quantity + $2,
			total_sales = total_sales + $2,
			total_revenue = total_revenue + final_price * $2,
			total_profit = total_profit + (markup - final_price * commission_rate) * $2,
			status = CASE
				WHEN allocated_stock - (sold_quantity + $2) <= 0 THEN 'out_of_stock'
				ELSE status
			END,
			updated_at = $3
		WHERE id = $1 AND allocated_stock - sold_quantity >= $2
		RETURNING ` + strings.Join(distributionColumns, ", ")

	var d distribution.Distribution
	querier := r.txm.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &d, sql, distributionID, quantity, time.Now().UTC())
	if err == nil {
		return &d, true, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, false, fmt.Errorf("apply sale: %w", err)
	}

	// Guard rejected or row missing; fetch current state to tell which.
	current, getErr := r.GetByID(ctx, distributionID)
	if getErr != nil {
		if apperror.IsNotFound(getErr) {
			return nil, false, nil
		}
		return nil, false, getErr
	}
	return current, false, nil
}

// UpdateAllocation resizes the pool, refusing to drop below sold_quantity.
// Status follows the new headroom: drained pools go out_of_stock, refilled
// out_of_stock pools go back to active.
func (r *DistributionRepo) UpdateAllocation(ctx context.Context, distributionID id.ID, allocatedStock int64) (*distribution.Distribution, bool, error) {
	sql := `
		UPDATE distributions SET
			allocated_stock = $2,
			status = CASE
				WHEN $2 - sold_quantity <= 0 THEN 'out_of_stock'
				WHEN status = 'out_of_stock' THEN 'active'
				ELSE status
			END,
			updated_at = $3
		WHERE id = $1 AND sold_quantity <= $2
		RETURNING ` + strings.Join(distributionColumns, ", ")

	var d distribution.Distribution
	querier := r.txm.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &d, sql, distributionID, allocatedStock, time.Now().UTC())
	if err == nil {
		return &d, true, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, false, fmt.Errorf("update allocation: %w", err)
	}

	current, getErr := r.GetByID(ctx, distributionID)
	if getErr != nil {
		if apperror.IsNotFound(getErr) {
			return nil, false, nil
		}
		return nil, false, getErr
	}
	return current, false, nil
}

// UpdatePricing persists a pricing edit.
func (r *DistributionRepo) UpdatePricing(ctx context.Context, distributionID id.ID, p distribution.PricingUpdate) (*distribution.Distribution, error) {
	q := r.builder.Update(distributionsTable).
		Set("final_price", p.FinalPrice).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": distributionID}).
		Suffix("RETURNING " + strings.Join(distributionColumns, ", "))

	if p.ClearSellerPrice {
		q = q.Set("seller_price", nil)
	} else if p.SellerPrice != nil {
		q = q.Set("seller_price", *p.SellerPrice)
	}
	if p.Markup != nil {
		q = q.Set("markup", *p.Markup)
	}

	return r.updateOne(ctx, q, distributionID)
}

// UpdateStatus persists a status change and, optionally, the promoted flag.
func (r *DistributionRepo) UpdateStatus(ctx context.Context, distributionID id.ID, status distribution.Status, promoted *bool) (*distribution.Distribution, error) {
	q := r.builder.Update(distributionsTable).
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": distributionID}).
		Suffix("RETURNING " + strings.Join(distributionColumns, ", "))

	if promoted != nil {
		q = q.Set("is_promoted", *promoted)
	}

	return r.updateOne(ctx, q, distributionID)
}

func (r *DistributionRepo) updateOne(ctx context.Context, q squirrel.UpdateBuilder, distributionID id.ID) (*distribution.Distribution, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	var d distribution.Distribution
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("distribution", distributionID)
		}
		return nil, fmt.Errorf("update distribution: %w", err)
	}
	return &d, nil
}

// Delete removes the row only while it has no sales. A second statement
// checks for a blocked row so the caller can report the right error.
func (r *DistributionRepo) Delete(ctx context.Context, distributionID id.ID) (bool, bool, error) {
	sql := `DELETE FROM distributions WHERE id = $1 AND sold_quantity = 0`

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, distributionID)
	if err != nil {
		return false, false, fmt.Errorf("delete distribution: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, false, nil
	}

	_, err = r.GetByID(ctx, distributionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, false, nil
		}
		return false, false, err
	}
	return false, true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// Ensure interface compliance.
var _ distribution.Repository = (*DistributionRepo)(nil)
