// Package prom exposes Prometheus collectors for the dashboard service.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"vendra/internal/domain/distribution"
	"vendra/internal/domain/metrics"
	"vendra/internal/domain/realtime"
)

// Metrics holds all service collectors. It implements the observer hooks
// of the allocation ledger and the realtime hub.
type Metrics struct {
	OverridesSetTotal     prometheus.CounterVec
	OverridesClearedTotal prometheus.CounterVec

	DistributionsCreatedTotal prometheus.Counter
	DistributionsDeletedTotal prometheus.Counter
	SalesRecordedTotal        prometheus.Counter
	SalesUnitsTotal           prometheus.Counter
	SalesRejectedTotal        prometheus.CounterVec

	ConnectedClients       prometheus.Gauge
	BroadcastsSentTotal    prometheus.Counter
	BroadcastsDroppedTotal prometheus.Counter
	TickDuration           prometheus.Histogram
}

// New registers all collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		OverridesSetTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metric_overrides_set_total",
				Help: "Number of metric overrides created or updated",
			},
			[]string{"metric", "period"},
		),
		OverridesClearedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metric_overrides_cleared_total",
				Help: "Number of metric overrides removed",
			},
			[]string{"metric", "period"},
		),
		DistributionsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "distributions_created_total",
				Help: "Number of product distributions created",
			},
		),
		DistributionsDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "distributions_deleted_total",
				Help: "Number of product distributions deleted",
			},
		),
		SalesRecordedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sales_recorded_total",
				Help: "Number of successfully recorded sales",
			},
		),
		SalesUnitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sales_units_total",
				Help: "Total units sold across all distributions",
			},
		),
		SalesRejectedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sales_rejected_total",
				Help: "Number of rejected sale attempts",
			},
			[]string{"reason"},
		),
		ConnectedClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_connected_clients",
				Help: "Currently connected dashboard websocket clients",
			},
		),
		BroadcastsSentTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_broadcasts_sent_total",
				Help: "Number of dashboard frames delivered to subscribers",
			},
		),
		BroadcastsDroppedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_broadcasts_dropped_total",
				Help: "Number of dashboard frames dropped on slow clients",
			},
		),
		TickDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dashboard_tick_duration_seconds",
				Help:    "Duration of the periodic snapshot fan-out",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
	}
}

// RecordOverrideSet counts an override upsert.
func (m *Metrics) RecordOverrideSet(metric, period string) {
	m.OverridesSetTotal.WithLabelValues(metric, period).Inc()
}

// RecordOverrideCleared counts an override removal.
func (m *Metrics) RecordOverrideCleared(metric, period string) {
	m.OverridesClearedTotal.WithLabelValues(metric, period).Inc()
}

// DistributionCreated implements distribution.Observer.
func (m *Metrics) DistributionCreated() {
	m.DistributionsCreatedTotal.Inc()
}

// DistributionDeleted implements distribution.Observer.
func (m *Metrics) DistributionDeleted() {
	m.DistributionsDeletedTotal.Inc()
}

// SaleRecorded implements distribution.Observer.
func (m *Metrics) SaleRecorded(quantity int64) {
	m.SalesRecordedTotal.Inc()
	m.SalesUnitsTotal.Add(float64(quantity))
}

// SaleRejected implements distribution.Observer.
func (m *Metrics) SaleRejected(reason string) {
	m.SalesRejectedTotal.WithLabelValues(reason).Inc()
}

// ClientConnected implements realtime.Observer.
func (m *Metrics) ClientConnected() {
	m.ConnectedClients.Inc()
}

// ClientDisconnected implements realtime.Observer.
func (m *Metrics) ClientDisconnected() {
	m.ConnectedClients.Dec()
}

// BroadcastSent implements realtime.Observer.
func (m *Metrics) BroadcastSent(subscribers int) {
	m.BroadcastsSentTotal.Add(float64(subscribers))
}

// BroadcastDropped implements realtime.Observer.
func (m *Metrics) BroadcastDropped() {
	m.BroadcastsDroppedTotal.Inc()
}

// TickObserved implements realtime.Observer.
func (m *Metrics) TickObserved(duration time.Duration) {
	m.TickDuration.Observe(duration.Seconds())
}

// Ensure interface compliance.
var (
	_ distribution.Observer = (*Metrics)(nil)
	_ realtime.Observer     = (*Metrics)(nil)
	_ metrics.Observer      = (*Metrics)(nil)
)
