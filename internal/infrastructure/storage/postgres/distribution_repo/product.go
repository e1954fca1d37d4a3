package distribution_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/domain/distribution"
	"vendra/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// ProductRepo implements distribution.ProductCatalog over the shared
// products table.
type ProductRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewProductRepo creates a new product catalog reader.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Product returns the catalog row used for pricing and allocation caps.
func (r *ProductRepo) Product(ctx context.Context, productID id.ID) (*distribution.Product, error) {
	q := r.builder.Select("id", "price", "warehouse_stock").
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p distribution.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Ensure interface compliance.
var _ distribution.ProductCatalog = (*ProductRepo)(nil)
