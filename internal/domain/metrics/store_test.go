package metrics

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

type fakeNotifier struct {
	mu      sync.Mutex
	changed []id.ID
}

func (n *fakeNotifier) SellerChanged(ctx context.Context, sellerID id.ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, sellerID)
}

type fakeAuditor struct {
	sets   int
	clears int
	err    error
}

func (a *fakeAuditor) OverrideSet(ctx context.Context, o *Override) error {
	if a.err != nil {
		return a.err
	}
	a.sets++
	return nil
}

func (a *fakeAuditor) OverrideCleared(ctx context.Context, sellerID id.ID, metric Metric, period Period) error {
	if a.err != nil {
		return a.err
	}
	a.clears++
	return nil
}

type fakeObserver struct {
	sets   int
	clears int
}

func (o *fakeObserver) RecordOverrideSet(metric, period string)     { o.sets++ }
func (o *fakeObserver) RecordOverrideCleared(metric, period string) { o.clears++ }

// fakeTxManager runs fn directly and counts transactions.
type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

func newTestStore() (*Store, *fakeRepo, *fakeNotifier, *fakeAuditor, *fakeObserver) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	auditor := &fakeAuditor{}
	observer := &fakeObserver{}
	return NewStore(repo, &fakeTxManager{}, notifier, auditor, observer), repo, notifier, auditor, observer
}

func TestSetOverride(t *testing.T) {
	ctx := context.Background()
	store, _, notifier, auditor, observer := newTestStore()
	sellerID := id.New()

	stored, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      sellerID,
		Metric:        MetricOrdersSold,
		Period:        PeriodToday,
		OverrideValue: types.NewMoneyFromInt(110),
		OriginalValue: types.NewMoneyFromInt(5),
	})
	require.NoError(t, err)
	assert.True(t, stored.OverrideValue.Equal(types.NewMoneyFromInt(110)))
	assert.Equal(t, []id.ID{sellerID}, notifier.changed)
	assert.Equal(t, 1, auditor.sets)
	assert.Equal(t, 1, observer.sets)
}

func TestSetOverride_EmptyPeriodDefaultsToTotal(t *testing.T) {
	ctx := context.Background()
	store, _, _, _, _ := newTestStore()

	stored, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      id.New(),
		Metric:        MetricShopFollowers,
		OverrideValue: types.NewMoneyFromInt(10000),
	})
	require.NoError(t, err)
	assert.Equal(t, PeriodTotal, stored.Period)
}

func TestSetOverride_RejectsUnknownMetric(t *testing.T) {
	ctx := context.Background()
	store, _, notifier, _, _ := newTestStore()

	_, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      id.New(),
		Metric:        Metric("bogus"),
		OverrideValue: types.NewMoneyFromInt(1),
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	assert.Empty(t, notifier.changed)
}

func TestSetOverride_EditPreservesOriginal(t *testing.T) {
	ctx := context.Background()
	store, _, _, _, _ := newTestStore()
	sellerID := id.New()

	first, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      sellerID,
		Metric:        MetricTotalSales,
		Period:        PeriodLast7Days,
		OverrideValue: types.NewMoneyFromInt(1000),
		OriginalValue: types.NewMoneyFromInt(250),
	})
	require.NoError(t, err)

	second, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      sellerID,
		Metric:        MetricTotalSales,
		Period:        PeriodLast7Days,
		OverrideValue: types.NewMoneyFromInt(2000),
		OriginalValue: types.NewMoneyFromInt(999),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "edit updates the same row")
	assert.True(t, second.OverrideValue.Equal(types.NewMoneyFromInt(2000)))
	assert.True(t, second.OriginalValue.Equal(types.NewMoneyFromInt(250)),
		"original value is captured once and kept")
}

func TestClearOverride(t *testing.T) {
	ctx := context.Background()
	store, _, notifier, auditor, observer := newTestStore()
	sellerID := id.New()

	_, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      sellerID,
		Metric:        MetricVisitors,
		Period:        PeriodToday,
		OverrideValue: types.NewMoneyFromInt(500),
	})
	require.NoError(t, err)

	require.NoError(t, store.ClearOverride(ctx, sellerID, MetricVisitors, PeriodToday))
	assert.Equal(t, 1, auditor.clears)
	assert.Equal(t, 1, observer.clears)
	assert.Len(t, notifier.changed, 2)

	overrides, err := store.Overrides(ctx, sellerID)
	require.NoError(t, err)
	assert.Empty(t, overrides)
}

func TestClearOverride_MissingIsNoop(t *testing.T) {
	ctx := context.Background()
	store, _, notifier, auditor, _ := newTestStore()

	err := store.ClearOverride(ctx, id.New(), MetricVisitors, PeriodToday)
	require.NoError(t, err)
	assert.Zero(t, auditor.clears)
	assert.Empty(t, notifier.changed, "nothing changed, nothing to broadcast")
}

func TestClearOverride_DefaultsPeriodAndValidates(t *testing.T) {
	ctx := context.Background()
	store, repo, _, _, _ := newTestStore()
	sellerID := id.New()

	_, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      sellerID,
		Metric:        MetricCreditScore,
		OverrideValue: types.NewMoneyFromInt(95),
	})
	require.NoError(t, err)

	// Empty period clears the total bucket.
	require.NoError(t, store.ClearOverride(ctx, sellerID, MetricCreditScore, ""))
	rows, err := repo.GetBySeller(ctx, sellerID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = store.ClearOverride(ctx, sellerID, Metric("bogus"), PeriodToday)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestClearAllForSeller(t *testing.T) {
	ctx := context.Background()
	store, _, notifier, _, _ := newTestStore()
	sellerID := id.New()
	otherSeller := id.New()

	for _, m := range []Metric{MetricOrdersSold, MetricVisitors, MetricShopRating} {
		_, err := store.SetOverride(ctx, SetOverrideParams{
			SellerID:      sellerID,
			Metric:        m,
			OverrideValue: types.NewMoneyFromInt(1),
		})
		require.NoError(t, err)
	}
	_, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      otherSeller,
		Metric:        MetricOrdersSold,
		OverrideValue: types.NewMoneyFromInt(1),
	})
	require.NoError(t, err)

	notifier.changed = nil
	count, err := store.ClearAllForSeller(ctx, sellerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, []id.ID{sellerID}, notifier.changed)

	// Other sellers are untouched.
	remaining, err := store.Overrides(ctx, otherSeller)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	count, err = store.ClearAllForSeller(ctx, sellerID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSetOverride_RowAndAuditShareTransaction(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	txm := &fakeTxManager{}
	auditor := &fakeAuditor{}
	store := NewStore(repo, txm, nil, auditor, nil)

	_, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      id.New(),
		Metric:        MetricOrdersSold,
		OverrideValue: types.NewMoneyFromInt(42),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, txm.calls)
	assert.Equal(t, 1, auditor.sets)
}

func TestSetOverride_AuditFailureFailsMutation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	auditor := &fakeAuditor{err: assert.AnError}
	store := NewStore(repo, &fakeTxManager{}, notifier, auditor, nil)

	_, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      id.New(),
		Metric:        MetricOrdersSold,
		OverrideValue: types.NewMoneyFromInt(1),
	})
	require.Error(t, err)
	assert.Empty(t, notifier.changed, "failed mutation must not broadcast")
}

func TestSetOverride_ConcurrentSameTuple(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	store := NewStore(repo, nil, nil, nil, nil)
	sellerID := id.New()

	// Racing upserts on one (seller, metric, period) tuple must converge on
	// a single row; the database unique constraint backs the same guarantee
	// in the SQL repository.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := store.SetOverride(ctx, SetOverrideParams{
				SellerID:      sellerID,
				Metric:        MetricOrdersSold,
				Period:        PeriodToday,
				OverrideValue: types.NewMoneyFromInt(int64(n)),
				OriginalValue: types.NewMoneyFromInt(5),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rows, err := repo.GetBySeller(ctx, sellerID)
	require.NoError(t, err)
	require.Len(t, rows, 1, "one row per tuple regardless of write races")
	assert.True(t, rows[0].OriginalValue.Equal(types.NewMoneyFromInt(5)))
}

func TestClearAllOverrides(t *testing.T) {
	ctx := context.Background()
	store, repo, notifier, _, _ := newTestStore()
	sellerA := id.New()
	sellerB := id.New()

	for _, sellerID := range []id.ID{sellerA, sellerB} {
		for _, m := range []Metric{MetricOrdersSold, MetricVisitors} {
			_, err := store.SetOverride(ctx, SetOverrideParams{
				SellerID:      sellerID,
				Metric:        m,
				OverrideValue: types.NewMoneyFromInt(1),
			})
			require.NoError(t, err)
		}
	}

	notifier.changed = nil
	res, err := store.ClearAllOverrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Successful)
	assert.Zero(t, res.Failed)
	assert.ElementsMatch(t, []id.ID{sellerA, sellerB}, notifier.changed)

	sellers, err := repo.SellersWithOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, sellers)

	// Nothing left to clear.
	res, err = store.ClearAllOverrides(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Successful)
}

func TestSellersWithOverrides(t *testing.T) {
	ctx := context.Background()
	store, _, _, _, _ := newTestStore()
	sellerID := id.New()

	_, err := store.SetOverride(ctx, SetOverrideParams{
		SellerID:      sellerID,
		Metric:        MetricOrdersSold,
		OverrideValue: types.NewMoneyFromInt(1),
	})
	require.NoError(t, err)

	sellers, err := store.SellersWithOverrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, []id.ID{sellerID}, sellers)
}
