package metrics

import (
	"context"
	"fmt"

	"vendra/internal/core/apperror"
	"vendra/internal/core/id"
	"vendra/internal/core/types"
	"vendra/pkg/logger"
)

// Source identifies where a resolved value came from.
type Source string

const (
	SourceReal     Source = "real"
	SourceOverride Source = "override"
)

// Resolved is the effective value of one metric for one period. Never
// persisted; computed on every read so dashboards can display the override
// and the real value side by side.
type Resolved struct {
	Metric Metric      `json:"metricName"`
	Period Period      `json:"period"`
	Value  types.Money `json:"value"`
	Source Source      `json:"source"`

	// RealValue is the real computation, fetched even when overridden.
	RealValue types.Money `json:"realValue"`

	// Unavailable marks that the real computation failed for this metric.
	// The rest of the response still resolves; the UI shows a retry banner.
	Unavailable bool `json:"unavailable,omitempty"`
}

// Resolver merges admin overrides with real computed statistics.
// Dashboard reads always go through here, never against raw tables.
type Resolver struct {
	repo Repository
	real RealSource
}

// NewResolver creates a resolver over the override repository and the
// real-data collaborator.
func NewResolver(repo Repository, real RealSource) *Resolver {
	return &Resolver{repo: repo, real: real}
}

// Resolve computes the effective value of every tracked metric for a seller
// and period.
//
// Precedence per metric: a period-specific override wins; for static metrics
// an override on the total period applies to every period; otherwise the
// real computation is used. A real-data failure degrades only that metric.
func (r *Resolver) Resolve(ctx context.Context, sellerID id.ID, period Period) (map[Metric]Resolved, error) {
	if period == "" {
		period = PeriodTotal
	}
	if !period.Valid() {
		return nil, fmt.Errorf("resolve: unrecognized period %q", period)
	}

	rows, err := r.repo.GetBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	overrides := buildOverrideMap(rows)

	out := make(map[Metric]Resolved, len(All()))
	for _, metric := range All() {
		out[metric] = r.resolveOne(ctx, sellerID, metric, period, overrides)
	}

	return out, nil
}

// ResolveOne computes a single metric, with the same precedence rules.
func (r *Resolver) ResolveOne(ctx context.Context, sellerID id.ID, metric Metric, period Period) (Resolved, error) {
	if !metric.Valid() {
		return Resolved{}, fmt.Errorf("resolve: unrecognized metric %q", metric)
	}
	if period == "" {
		period = PeriodTotal
	}

	rows, err := r.repo.GetBySeller(ctx, sellerID)
	if err != nil {
		return Resolved{}, fmt.Errorf("load overrides: %w", err)
	}

	return r.resolveOne(ctx, sellerID, metric, period, buildOverrideMap(rows)), nil
}

// RealValue computes the real value of one metric, ignoring overrides.
// Used to capture the original value when an override is first stored.
func (r *Resolver) RealValue(ctx context.Context, sellerID id.ID, metric Metric, period Period) (types.Money, error) {
	if !metric.Valid() {
		return types.Zero(), apperror.NewValidation("unrecognized metric name").
			WithDetail("metricName", string(metric))
	}
	if period == "" {
		period = PeriodTotal
	}
	if !period.Valid() {
		return types.Zero(), apperror.NewValidation("unrecognized period").
			WithDetail("period", string(period))
	}

	value, err := r.real.ComputeRealMetric(ctx, sellerID, metric, period)
	if err != nil {
		if apperror.IsAppError(err) {
			return types.Zero(), err
		}
		return types.Zero(), apperror.NewDataUnavailable(metric.String(), err)
	}
	return value, nil
}

func (r *Resolver) resolveOne(
	ctx context.Context,
	sellerID id.ID,
	metric Metric,
	period Period,
	overrides map[Metric]map[Period]Override,
) Resolved {
	res := Resolved{
		Metric: metric,
		Period: period,
		Source: SourceReal,
	}

	// Real value is always computed so the UI can show original alongside
	// current. Failure degrades this metric only.
	realValue, realErr := r.real.ComputeRealMetric(ctx, sellerID, metric, period)
	if realErr != nil {
		logger.Warn(ctx, "real metric computation failed",
			"seller_id", sellerID, "metric", metric, "period", period, "error", realErr,
		)
		res.Unavailable = true
	} else {
		res.RealValue = realValue
		res.Value = realValue
	}

	if o, ok := lookupOverride(overrides, metric, period); ok {
		res.Value = o.DisplayValue()
		res.Source = SourceOverride
	}

	return res
}

// lookupOverride applies the two-level fallback: period-specific first, then
// the total period for static metrics.
func lookupOverride(overrides map[Metric]map[Period]Override, metric Metric, period Period) (Override, bool) {
	byPeriod, ok := overrides[metric]
	if !ok {
		return Override{}, false
	}
	if o, ok := byPeriod[period]; ok {
		return o, true
	}
	if metric.Static() && period != PeriodTotal {
		if o, ok := byPeriod[PeriodTotal]; ok {
			return o, true
		}
	}
	return Override{}, false
}
