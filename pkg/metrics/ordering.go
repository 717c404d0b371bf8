package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderingMetrics covers cart mutations and checkouts.
type OrderingMetrics struct {
	cartOps     *prometheus.CounterVec
	checkouts   *prometheus.CounterVec
	orderTotals prometheus.Histogram
}

func NewOrderingMetrics(reg prometheus.Registerer) *OrderingMetrics {
	if reg == nil {
		return &OrderingMetrics{}
	}
	m := &OrderingMetrics{
		cartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Cart mutations by operation and result.",
		}, []string{"op", "result"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by customer kind and result.",
		}, []string{"customer", "result"}),
		orderTotals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_cents",
			Help:      "Distribution of placed order totals in cents.",
			Buckets:   prometheus.ExponentialBuckets(500, 2, 10),
		}),
	}
	reg.MustRegister(m.cartOps, m.checkouts, m.orderTotals)
	return m
}

// CartOp records a cart mutation; result is "ok" or an error code.
func (m *OrderingMetrics) CartOp(op, result string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(op), normalizeLabel(result)).Inc()
}

// Checkout records a checkout attempt. totalCents is only observed on success.
func (m *OrderingMetrics) Checkout(guest bool, result string, totalCents int) {
	if m == nil || m.checkouts == nil {
		return
	}
	customer := "registered"
	if guest {
		customer = "guest"
	}
	result = normalizeLabel(result)
	m.checkouts.WithLabelValues(customer, result).Inc()
	if result == "ok" {
		m.orderTotals.Observe(float64(totalCents))
	}
}
