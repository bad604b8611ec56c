// Package metrics exposes Prometheus counters and gauges over the
// exchange's activity (SPEC_FULL.md §7.1). This is ambient operability,
// not part of the Stockfighter wire contract spec.md describes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"obex/internal/matching"
)

// Metrics bundles the collectors registered against a single registry.
type Metrics struct {
	OrdersAdmitted *prometheus.CounterVec
	Fills          prometheus.Counter
	Cancels        prometheus.Counter
	Rejections     *prometheus.CounterVec
	BooksOpen      prometheus.Gauge
}

// New registers the exchange's collectors against reg and returns the
// bundle used to record observations.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OrdersAdmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obex_orders_admitted_total",
			Help: "Orders admitted, by order type and side.",
		}, []string{"type", "side"}),
		Fills: factory.NewCounter(prometheus.CounterOpts{
			Name: "obex_fills_total",
			Help: "Individual fill legs recorded across all books.",
		}),
		Cancels: factory.NewCounter(prometheus.CounterOpts{
			Name: "obex_cancels_total",
			Help: "Successful (non-idempotent) cancellations.",
		}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obex_rejections_total",
			Help: "Admission rejections, by reason.",
		}, []string{"reason"}),
		BooksOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "obex_books_open",
			Help: "Number of (venue, stock) books currently registered.",
		}),
	}
}

// RecordAdmit records a successful admission.
func (m *Metrics) RecordAdmit(orderType matching.OrderType, side matching.Side, fillLegs int) {
	m.OrdersAdmitted.WithLabelValues(orderType.String(), side.String()).Inc()
	if fillLegs > 0 {
		m.Fills.Add(float64(fillLegs))
	}
}

// RecordCancel records a cancellation that actually changed order state.
func (m *Metrics) RecordCancel() {
	m.Cancels.Inc()
}

// RecordRejection counts one rejected request under reason: the façade
// uses it when the book cap blocks creating a book and when Book.Admit
// rejects an order.
func (m *Metrics) RecordRejection(reason string) {
	m.Rejections.WithLabelValues(reason).Inc()
}

// SetBooksOpen updates the open-book gauge.
func (m *Metrics) SetBooksOpen(n int) {
	m.BooksOpen.Set(float64(n))
}
