// Package metrics provides the seller metrics override and resolution engine.
// Admin-set overrides substitute synthetic values for a seller's real,
// time-bucketed business metrics while keeping the real computation available
// for audit and revert.
package metrics

import (
	"context"
	"time"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/core/types"
)

// Metric is the closed set of tracked seller metrics.
type Metric string

const (
	MetricOrdersSold     Metric = "orders_sold"
	MetricTotalSales     Metric = "total_sales"
	MetricProfitForecast Metric = "profit_forecast"
	MetricVisitors       Metric = "visitors"
	MetricShopFollowers  Metric = "shop_followers"
	MetricShopRating     Metric = "shop_rating"
	MetricCreditScore    Metric = "credit_score"
	MetricTotalCustomers Metric = "total_customers"
)

// All returns every tracked metric in stable display order.
func All() []Metric {
	return []Metric{
		MetricOrdersSold,
		MetricTotalSales,
		MetricProfitForecast,
		MetricVisitors,
		MetricShopFollowers,
		MetricShopRating,
		MetricCreditScore,
		MetricTotalCustomers,
	}
}

// Valid reports whether m is a recognized metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricOrdersSold, MetricTotalSales, MetricProfitForecast, MetricVisitors,
		MetricShopFollowers, MetricShopRating, MetricCreditScore, MetricTotalCustomers:
		return true
	}
	return false
}

// Static reports whether m is period-insensitive. Static metrics describe the
// shop itself rather than activity within a window, so an override on the
// total period applies to every period unless a period-specific one exists.
func (m Metric) Static() bool {
	switch m {
	case MetricShopFollowers, MetricShopRating, MetricCreditScore, MetricTotalCustomers:
		return true
	}
	return false
}

func (m Metric) String() string { return string(m) }

// Period is a reporting time bucket.
type Period string

const (
	PeriodToday      Period = "today"
	PeriodLast7Days  Period = "last7days"
	PeriodLast30Days Period = "last30days"
	PeriodTotal      Period = "total"
)

// Periods returns every recognized period.
func Periods() []Period {
	return []Period{PeriodToday, PeriodLast7Days, PeriodLast30Days, PeriodTotal}
}

// Valid reports whether p is a recognized period.
func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodLast7Days, PeriodLast30Days, PeriodTotal:
		return true
	}
	return false
}

func (p Period) String() string { return string(p) }

// ParsePeriod parses a period string. An empty string defaults to total.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return PeriodTotal, nil
	}
	p := Period(s)
	if !p.Valid() {
		return "", apperror.NewValidation("unrecognized period").
			WithDetail("period", s)
	}
	return p, nil
}

// Override is an admin-supplied value that replaces a seller's real computed
// metric for a single (seller, metric, period) tuple. At most one row exists
// per tuple; the unique constraint serializes concurrent writes.
type Override struct {
	ID       id.ID  `db:"id" json:"id"`
	SellerID id.ID  `db:"seller_id" json:"sellerId"`
	Metric   Metric `db:"metric" json:"metricName"`
	Period   Period `db:"period" json:"period"`

	// OverrideValue is the admin-set value for the tuple.
	OverrideValue types.Money `db:"override_value" json:"overrideValue"`

	// PeriodValue, when set, is the value actually displayed for the period.
	// Kept separate from OverrideValue for legacy reasons.
	PeriodValue *types.Money `db:"period_value" json:"periodSpecificValue,omitempty"`

	// OriginalValue is the real value captured at creation time. It is never
	// overwritten by later edits; it exists for audit and revert.
	OriginalValue types.Money `db:"original_value" json:"originalValue"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewOverride creates an Override with generated ID and timestamps.
func NewOverride(sellerID id.ID, metric Metric, period Period, value, original types.Money) *Override {
	now := time.Now().UTC()
	return &Override{
		ID:            id.New(),
		SellerID:      sellerID,
		Metric:        metric,
		Period:        period,
		OverrideValue: value,
		OriginalValue: original,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks override invariants.
func (o *Override) Validate(ctx context.Context) error {
	if id.IsNil(o.SellerID) {
		return apperror.NewValidation("sellerId is required")
	}
	if !o.Metric.Valid() {
		return apperror.NewValidation("unrecognized metric name").
			WithDetail("metricName", string(o.Metric))
	}
	if !o.Period.Valid() {
		return apperror.NewValidation("unrecognized period").
			WithDetail("period", string(o.Period))
	}
	return nil
}

// DisplayValue returns the value shown for the period: the period-specific
// value when present, the override value otherwise.
func (o *Override) DisplayValue() types.Money {
	if o.PeriodValue != nil {
		return *o.PeriodValue
	}
	return o.OverrideValue
}
