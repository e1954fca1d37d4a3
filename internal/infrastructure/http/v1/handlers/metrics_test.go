package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendra/internal/core/id"
	"vendra/internal/core/types"
	"vendra/internal/domain/metrics"
	"vendra/internal/infrastructure/http/v1/middleware"
)

// overrideRepo is a minimal in-memory metrics.Repository for handler tests.
type overrideRepo struct {
	rows map[string]metrics.Override
}

func newOverrideRepo() *overrideRepo {
	return &overrideRepo{rows: make(map[string]metrics.Override)}
}

func rowKey(sellerID id.ID, metric metrics.Metric, period metrics.Period) string {
	return sellerID.String() + "/" + metric.String() + "/" + period.String()
}

func (r *overrideRepo) Upsert(ctx context.Context, o *metrics.Override) (*metrics.Override, error) {
	key := rowKey(o.SellerID, o.Metric, o.Period)
	stored := *o
	if existing, ok := r.rows[key]; ok {
		stored.ID = existing.ID
		stored.OriginalValue = existing.OriginalValue
		stored.CreatedAt = existing.CreatedAt
	}
	r.rows[key] = stored
	return &stored, nil
}

func (r *overrideRepo) GetBySeller(ctx context.Context, sellerID id.ID) ([]metrics.Override, error) {
	var out []metrics.Override
	for _, o := range r.rows {
		if o.SellerID == sellerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *overrideRepo) Delete(ctx context.Context, sellerID id.ID, metric metrics.Metric, period metrics.Period) (bool, error) {
	key := rowKey(sellerID, metric, period)
	if _, ok := r.rows[key]; !ok {
		return false, nil
	}
	delete(r.rows, key)
	return true, nil
}

func (r *overrideRepo) DeleteBySeller(ctx context.Context, sellerID id.ID) (int64, error) {
	var count int64
	for key, o := range r.rows {
		if o.SellerID == sellerID {
			delete(r.rows, key)
			count++
		}
	}
	return count, nil
}

func (r *overrideRepo) SellersWithOverrides(ctx context.Context) ([]id.ID, error) {
	seen := make(map[id.ID]struct{})
	var out []id.ID
	for _, o := range r.rows {
		if _, ok := seen[o.SellerID]; !ok {
			seen[o.SellerID] = struct{}{}
			out = append(out, o.SellerID)
		}
	}
	return out, nil
}

// cannedRealSource serves one fixed value and counts lookups.
type cannedRealSource struct {
	value types.Money
	calls int
}

func (s *cannedRealSource) ComputeRealMetric(ctx context.Context, sellerID id.ID, metric metrics.Metric, period metrics.Period) (types.Money, error) {
	s.calls++
	return s.value, nil
}

func newOverrideRouter(repo metrics.Repository, real metrics.RealSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())

	store := metrics.NewStore(repo, nil, nil, nil, nil)
	resolver := metrics.NewResolver(repo, real)
	h := NewMetricsHandler(NewBaseHandler(), store, resolver, nil)
	router.PUT("/sellers/:sellerId/overrides", h.SetOverride)
	return router
}

func putOverride(t *testing.T, router *gin.Engine, sellerID id.ID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/sellers/"+sellerID.String()+"/overrides", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSetOverrideHandler_ClientOriginalValueStored(t *testing.T) {
	repo := newOverrideRepo()
	real := &cannedRealSource{value: types.NewMoneyFromInt(5)}
	router := newOverrideRouter(repo, real)
	sellerID := id.New()

	rec := putOverride(t, router, sellerID,
		`{"metricName":"orders_sold","period":"today","overrideValue":110,"originalValue":7}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rows, err := repo.GetBySeller(context.Background(), sellerID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].OriginalValue.Equal(types.NewMoneyFromInt(7)),
		"client-supplied original value wins")
	assert.Zero(t, real.calls, "no real-value lookup when the client supplies one")
}

func TestSetOverrideHandler_ServerCapturesOriginalValue(t *testing.T) {
	repo := newOverrideRepo()
	real := &cannedRealSource{value: types.NewMoneyFromInt(5)}
	router := newOverrideRouter(repo, real)
	sellerID := id.New()

	rec := putOverride(t, router, sellerID,
		`{"metricName":"orders_sold","period":"today","overrideValue":110}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rows, err := repo.GetBySeller(context.Background(), sellerID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].OverrideValue.Equal(types.NewMoneyFromInt(110)))
	assert.True(t, rows[0].OriginalValue.Equal(types.NewMoneyFromInt(5)),
		"server captures the current real value")
	assert.Equal(t, 1, real.calls)
}
