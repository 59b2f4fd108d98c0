package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout result labels.
const (
	ResultSuccess    = "success"
	ResultValidation = "validation"
	ResultConflict   = "conflict"
	ResultError      = "error"
)

// CheckoutMetrics records checkout outcomes and ledger movements.
type CheckoutMetrics struct {
	checkouts   *prometheus.CounterVec
	duration    prometheus.Histogram
	orderTotal  prometheus.Counter
	adjustments *prometheus.CounterVec
}

// NewCheckoutMetrics registers the collectors on reg. A nil reg yields a
// recorder that drops every observation.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	orderTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_order_cents_total",
		Help: "Sum of committed order totals in cents.",
	})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_adjustments_total",
		Help: "Committed balance adjustments by direction.",
	}, []string{"direction"})
	reg.MustRegister(checkouts, duration, orderTotal, adjustments)
	return &CheckoutMetrics{
		checkouts:   checkouts,
		duration:    duration,
		orderTotal:  orderTotal,
		adjustments: adjustments,
	}
}

func (m *CheckoutMetrics) ObserveCheckout(result string, elapsed time.Duration) {
	if m == nil || m.checkouts == nil {
		return
	}
	if result == "" {
		result = ResultError
	}
	m.checkouts.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *CheckoutMetrics) AddOrderTotal(cents int64) {
	if m == nil || m.orderTotal == nil || cents <= 0 {
		return
	}
	m.orderTotal.Add(float64(cents))
}

func (m *CheckoutMetrics) ObserveAdjustment(delta int64) {
	if m == nil || m.adjustments == nil || delta == 0 {
		return
	}
	direction := "credit"
	if delta < 0 {
		direction = "debit"
	}
	m.adjustments.WithLabelValues(direction).Inc()
}
