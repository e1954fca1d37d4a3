package distribution

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/core/types"
)

// memRepo is an in-memory Repository with the same atomic guard semantics
// as the SQL implementation: check and update happen under one lock.
type memRepo struct {
	mu   sync.Mutex
	rows map[id.ID]*Distribution
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[id.ID]*Distribution)}
}

func (r *memRepo) Create(ctx context.Context, d *Distribution) (*Distribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rows {
		if existing.SellerID == d.SellerID && existing.ProductID == d.ProductID {
			return nil, apperror.NewDuplicate("distribution", "product", d.ProductID.String())
		}
	}
	clone := *d
	r.rows[d.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memRepo) GetByID(ctx context.Context, distributionID id.ID) (*Distribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[distributionID]
	if !ok {
		return nil, apperror.NewNotFound("distribution", distributionID)
	}
	out := *d
	return &out, nil
}

func (r *memRepo) GetBySellerProduct(ctx context.Context, sellerID, productID id.ID) (*Distribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.rows {
		if d.SellerID == sellerID && d.ProductID == productID {
			out := *d
			return &out, nil
		}
	}
	return nil, apperror.NewNotFound("distribution", productID)
}

func (r *memRepo) ListBySeller(ctx context.Context, sellerID id.ID, filter ListFilter) ([]Distribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Distribution
	for _, d := range r.rows {
		if d.SellerID != sellerID {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.PromotedOnly && !d.IsPromoted {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (r *memRepo) ApplySale(ctx context.Context, distributionID id.ID, quantity int64) (*Distribution, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[distributionID]
	if !ok {
		return nil, false, nil
	}
	if d.AllocatedStock-d.SoldQuantity < quantity {
		out := *d
		return &out, false, nil
	}
	d.SoldQuantity += quantity
	d.TotalSales += quantity
	d.TotalRevenue = d.TotalRevenue.Add(d.FinalPrice.Mul(types.NewMoneyFromInt(quantity)))
	d.TotalProfit = d.TotalProfit.Add(
		d.Markup.Sub(d.FinalPrice.Mul(d.CommissionRate)).Mul(types.NewMoneyFromInt(quantity)))
	if d.AllocatedStock-d.SoldQuantity <= 0 {
		d.Status = StatusOutOfStock
	}
	out := *d
	return &out, true, nil
}

func (r *memRepo) UpdateAllocation(ctx context.Context, distributionID id.ID, allocatedStock int64) (*Distribution, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[distributionID]
	if !ok {
		return nil, false, nil
	}
	if d.SoldQuantity > allocatedStock {
		out := *d
		return &out, false, nil
	}
	d.AllocatedStock = allocatedStock
	if d.AllocatedStock-d.SoldQuantity <= 0 {
		d.Status = StatusOutOfStock
	} else if d.Status == StatusOutOfStock {
		d.Status = StatusActive
	}
	out := *d
	return &out, true, nil
}

func (r *memRepo) UpdatePricing(ctx context.Context, distributionID id.ID, p PricingUpdate) (*Distribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[distributionID]
	if !ok {
		return nil, apperror.NewNotFound("distribution", distributionID)
	}
	if p.ClearSellerPrice {
		d.SellerPrice = nil
	} else if p.SellerPrice != nil {
		d.SellerPrice = p.SellerPrice
	}
	if p.Markup != nil {
		d.Markup = *p.Markup
	}
	d.FinalPrice = p.FinalPrice
	out := *d
	return &out, nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, distributionID id.ID, status Status, promoted *bool) (*Distribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[distributionID]
	if !ok {
		return nil, apperror.NewNotFound("distribution", distributionID)
	}
	d.Status = status
	if promoted != nil {
		d.IsPromoted = *promoted
	}
	out := *d
	return &out, nil
}

func (r *memRepo) Delete(ctx context.Context, distributionID id.ID) (bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[distributionID]
	if !ok {
		return false, false, nil
	}
	if d.SoldQuantity > 0 {
		return false, true, nil
	}
	delete(r.rows, distributionID)
	return true, false, nil
}

// memCatalog serves canned products.
type memCatalog struct {
	products map[id.ID]Product
}

func (c *memCatalog) Product(ctx context.Context, productID id.ID) (*Product, error) {
	p, ok := c.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return &p, nil
}

type countingNotifier struct {
	mu      sync.Mutex
	changed []id.ID
}

func (n *countingNotifier) SellerChanged(ctx context.Context, sellerID id.ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, sellerID)
}

func newTestLedger(products ...Product) (*Ledger, *memRepo, *memCatalog, *countingNotifier) {
	repo := newMemRepo()
	catalog := &memCatalog{products: make(map[id.ID]Product)}
	for _, p := range products {
		catalog.products[p.ID] = p
	}
	notifier := &countingNotifier{}
	return NewLedger(repo, catalog, notifier, nil), repo, catalog, notifier
}

func testProduct(price string, stock int64) Product {
	return Product{ID: id.New(), Price: types.MustMoney(price), WarehouseStock: stock}
}

func TestCreateDistribution(t *testing.T) {
	ctx := context.Background()
	product := testProduct("100.00", 500)
	ledger, _, _, notifier := newTestLedger(product)
	sellerID := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 50,
		Markup:         types.MustMoney("15.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, d.Status)
	assert.Equal(t, int64(50), d.AllocatedStock)
	assert.True(t, d.FinalPrice.Equal(types.MustMoney("115.00")), "catalog price plus markup")
	assert.Equal(t, []id.ID{sellerID}, notifier.changed)
}

func TestCreateDistribution_SellerPriceReplacesBase(t *testing.T) {
	ctx := context.Background()
	product := testProduct("100.00", 500)
	ledger, _, _, _ := newTestLedger(product)

	sellerPrice := types.MustMoney("80.00")
	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       id.New(),
		ProductID:      product.ID,
		AllocatedStock: 10,
		SellerPrice:    &sellerPrice,
		Markup:         types.MustMoney("5.00"),
	})
	require.NoError(t, err)
	assert.True(t, d.FinalPrice.Equal(types.MustMoney("85.00")))
}

func TestCreateDistribution_CappedByWarehouseStock(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 30)
	ledger, _, _, _ := newTestLedger(product)

	_, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       id.New(),
		ProductID:      product.ID,
		AllocatedStock: 31,
		Markup:         types.Zero(),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientWarehouseStock))
}

func TestCreateDistribution_DuplicateReturnsExisting(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 100)
	ledger, _, _, _ := newTestLedger(product)
	sellerID := id.New()

	first, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 10,
		Markup:         types.Zero(),
	})
	require.NoError(t, err)

	existing, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 20,
		Markup:         types.Zero(),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
	require.NotNil(t, existing, "conflicting row is returned for display")
	assert.Equal(t, first.ID, existing.ID)
	assert.Equal(t, int64(10), existing.AllocatedStock, "existing allocation untouched")
}

func TestCreateDistribution_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	ledger, _, _, _ := newTestLedger()

	_, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       id.New(),
		ProductID:      id.New(),
		AllocatedStock: 10,
		Markup:         types.Zero(),
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordSale(t *testing.T) {
	ctx := context.Background()
	product := testProduct("100.00", 500)
	ledger, _, _, _ := newTestLedger(product)
	sellerID := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 10,
		Markup:         types.MustMoney("20.00"),
	})
	require.NoError(t, err)

	updated, err := ledger.RecordSale(ctx, sellerID, d.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.SoldQuantity)
	assert.Equal(t, int64(7), updated.AvailableStock())
	assert.True(t, updated.TotalRevenue.Equal(types.MustMoney("360.00")), "3 units at final price 120")
	assert.Equal(t, StatusActive, updated.Status)
}

func TestRecordSale_DrainsToOutOfStock(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 100)
	ledger, _, _, _ := newTestLedger(product)
	sellerID := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 5,
		Markup:         types.Zero(),
	})
	require.NoError(t, err)

	updated, err := ledger.RecordSale(ctx, sellerID, d.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, StatusOutOfStock, updated.Status)
	assert.Zero(t, updated.AvailableStock())
}

func TestRecordSale_RejectsOversell(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 100)
	ledger, _, _, _ := newTestLedger(product)
	sellerID := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 5,
		Markup:         types.Zero(),
	})
	require.NoError(t, err)

	_, err = ledger.RecordSale(ctx, sellerID, d.ID, 6)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientAvailableStock))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(5), appErr.Details["available"])
}

func TestRecordSale_ConcurrentSalesNeverOvershoot(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 1000)
	ledger, repo, _, _ := newTestLedger(product)
	sellerID := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 50,
		Markup:         types.Zero(),
	})
	require.NoError(t, err)

	// 100 goroutines racing for 50 units, one each.
	var wg sync.WaitGroup
	var succeeded, rejected int64
	var mu sync.Mutex
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.RecordSale(ctx, sellerID, d.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rejected++
			} else {
				succeeded++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), succeeded)
	assert.Equal(t, int64(50), rejected)

	final, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), final.SoldQuantity)
	assert.Zero(t, final.AvailableStock())
}

func TestRecordSale_Validation(t *testing.T) {
	ctx := context.Background()
	ledger, _, _, _ := newTestLedger()

	_, err := ledger.RecordSale(ctx, id.New(), id.New(), 0)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = ledger.RecordSale(ctx, id.New(), id.New(), 1)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateAllocation(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 100)
	ledger, _, _, _ := newTestLedger(product)
	sellerID := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 10,
		Markup:         types.Zero(),
	})
	require.NoError(t, err)
	_, err = ledger.RecordSale(ctx, sellerID, d.ID, 4)
	require.NoError(t, err)

	// Shrink above sold quantity is fine.
	updated, err := ledger.UpdateAllocation(ctx, sellerID, d.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.AllocatedStock)

	// Below sold quantity is rejected.
	_, err = ledger.UpdateAllocation(ctx, sellerID, d.ID, 3)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))

	// Increase beyond warehouse stock is rejected.
	_, err = ledger.UpdateAllocation(ctx, sellerID, d.ID, 101)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientWarehouseStock))
}

func TestUpdateAllocation_RefillRevivesOutOfStock(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 100)
	ledger, _, _, _ := newTestLedger(product)
	sellerID := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 3,
		Markup:         types.Zero(),
	})
	require.NoError(t, err)
	_, err = ledger.RecordSale(ctx, sellerID, d.ID, 3)
	require.NoError(t, err)

	updated, err := ledger.UpdateAllocation(ctx, sellerID, d.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, updated.Status)
	assert.Equal(t, int64(7), updated.AvailableStock())
}

func TestUpdatePricing(t *testing.T) {
	ctx := context.Background()
	product := testProduct("100.00", 500)
	ledger, _, _, _ := newTestLedger(product)

	sellerID := id.New()
	sellerPrice := types.MustMoney("90.00")
	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 10,
		SellerPrice:    &sellerPrice,
		Markup:         types.MustMoney("10.00"),
	})
	require.NoError(t, err)
	require.True(t, d.FinalPrice.Equal(types.MustMoney("100.00")))

	newMarkup := types.MustMoney("25.00")
	updated, err := ledger.UpdatePricing(ctx, sellerID, d.ID, PricingParams{Markup: &newMarkup})
	require.NoError(t, err)
	assert.True(t, updated.FinalPrice.Equal(types.MustMoney("115.00")), "seller price kept, markup replaced")

	// Clearing the seller price reverts the base to the catalog price.
	updated, err = ledger.UpdatePricing(ctx, sellerID, d.ID, PricingParams{ClearSellerPrice: true})
	require.NoError(t, err)
	assert.Nil(t, updated.SellerPrice)
	assert.True(t, updated.FinalPrice.Equal(types.MustMoney("125.00")))

	negative := types.MustMoney("-1.00")
	_, err = ledger.UpdatePricing(ctx, sellerID, d.ID, PricingParams{Markup: &negative})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 100)
	ledger, _, _, _ := newTestLedger(product)
	sellerID := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 10,
		Markup:         types.Zero(),
	})
	require.NoError(t, err)

	promoted := true
	updated, err := ledger.UpdateStatus(ctx, sellerID, d.ID, StatusSuspended, &promoted)
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, updated.Status)
	assert.True(t, updated.IsPromoted)

	_, err = ledger.UpdateStatus(ctx, sellerID, d.ID, Status("archived"), nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 100)
	ledger, _, _, _ := newTestLedger(product)
	sellerID := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 10,
		Markup:         types.Zero(),
	})
	require.NoError(t, err)

	require.NoError(t, ledger.Delete(ctx, sellerID, d.ID))
	assert.True(t, apperror.IsNotFound(ledger.Delete(ctx, sellerID, d.ID)))
}

func TestDelete_BlockedBySales(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 100)
	ledger, _, _, _ := newTestLedger(product)
	sellerID := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID:       sellerID,
		ProductID:      product.ID,
		AllocatedStock: 10,
		Markup:         types.Zero(),
	})
	require.NoError(t, err)
	_, err = ledger.RecordSale(ctx, sellerID, d.ID, 2)
	require.NoError(t, err)

	err = ledger.Delete(ctx, sellerID, d.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDistributionHasSales))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(2), appErr.Details["sold_quantity"])
}

func TestBulkCreate_PartialFailure(t *testing.T) {
	ctx := context.Background()
	good := testProduct("10.00", 100)
	small := testProduct("10.00", 2)
	ledger, _, _, _ := newTestLedger(good, small)
	sellerID := id.New()

	res := ledger.BulkCreate(ctx, sellerID, []CreateParams{
		{ProductID: good.ID, AllocatedStock: 10},
		{ProductID: small.ID, AllocatedStock: 5}, // exceeds warehouse stock
		{ProductID: id.New(), AllocatedStock: 1}, // unknown product
	})

	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, small.ID.String(), res.Errors[0].Item)

	// The successful item stays applied.
	rows, err := ledger.List(ctx, sellerID, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestBulkDelete(t *testing.T) {
	ctx := context.Background()
	p1 := testProduct("10.00", 100)
	p2 := testProduct("20.00", 100)
	ledger, _, _, _ := newTestLedger(p1, p2)
	sellerID := id.New()

	d1, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID: sellerID, ProductID: p1.ID, AllocatedStock: 10,
	})
	require.NoError(t, err)
	d2, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID: sellerID, ProductID: p2.ID, AllocatedStock: 10,
	})
	require.NoError(t, err)
	_, err = ledger.RecordSale(ctx, sellerID, d2.ID, 1)
	require.NoError(t, err)

	res := ledger.BulkDelete(ctx, sellerID, []id.ID{d1.ID, d2.ID})
	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, d2.ID.String(), res.Errors[0].Item, "row with sales reported, not skipped")
}

func TestGet_ScopedToSeller(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 100)
	ledger, _, _, _ := newTestLedger(product)
	owner := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID: owner, ProductID: product.ID, AllocatedStock: 10,
	})
	require.NoError(t, err)

	got, err := ledger.Get(ctx, owner, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	_, err = ledger.Get(ctx, id.New(), d.ID)
	assert.True(t, apperror.IsNotFound(err), "another seller's row reads as missing")
}

func TestMutations_RejectOtherSellersRows(t *testing.T) {
	ctx := context.Background()
	product := testProduct("10.00", 100)
	ledger, repo, _, _ := newTestLedger(product)
	owner := id.New()
	intruder := id.New()

	d, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID: owner, ProductID: product.ID, AllocatedStock: 10,
	})
	require.NoError(t, err)

	_, err = ledger.RecordSale(ctx, intruder, d.ID, 1)
	assert.True(t, apperror.IsNotFound(err))

	_, err = ledger.UpdateAllocation(ctx, intruder, d.ID, 5)
	assert.True(t, apperror.IsNotFound(err))

	markup := types.MustMoney("5.00")
	_, err = ledger.UpdatePricing(ctx, intruder, d.ID, PricingParams{Markup: &markup})
	assert.True(t, apperror.IsNotFound(err))

	_, err = ledger.UpdateStatus(ctx, intruder, d.ID, StatusSuspended, nil)
	assert.True(t, apperror.IsNotFound(err))

	err = ledger.Delete(ctx, intruder, d.ID)
	assert.True(t, apperror.IsNotFound(err))

	// The row survives untouched.
	final, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Zero(t, final.SoldQuantity)
	assert.Equal(t, int64(10), final.AllocatedStock)
	assert.Equal(t, StatusActive, final.Status)
}

func TestBulkDelete_RejectsOtherSellersRows(t *testing.T) {
	ctx := context.Background()
	p1 := testProduct("10.00", 100)
	p2 := testProduct("20.00", 100)
	ledger, repo, _, _ := newTestLedger(p1, p2)
	owner := id.New()
	intruder := id.New()

	theirs, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID: owner, ProductID: p1.ID, AllocatedStock: 10,
	})
	require.NoError(t, err)
	mine, err := ledger.CreateDistribution(ctx, CreateParams{
		SellerID: intruder, ProductID: p2.ID, AllocatedStock: 10,
	})
	require.NoError(t, err)

	res := ledger.BulkDelete(ctx, intruder, []id.ID{theirs.ID, mine.ID})
	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, theirs.ID.String(), res.Errors[0].Item)

	// The other seller's row is still there.
	_, err = repo.GetByID(ctx, theirs.ID)
	assert.NoError(t, err)
}
