package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeOutOfStock   = "out_of_stock"
	OutcomeInvalidState = "invalid_state"
	OutcomeError        = "error"
)

// CheckoutMetrics counts purchase attempts and units sold.
type CheckoutMetrics struct {
	attempts *prometheus.CounterVec
	units    prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Purchase attempts by outcome.",
	}, []string{"outcome"})
	units := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_units_sold_total",
		Help: "Units sold through checkout.",
	})
	reg.MustRegister(attempts, units)
	return &CheckoutMetrics{attempts: attempts, units: units}
}

// Observe records one attempt; units only count on success.
func (c *CheckoutMetrics) Observe(outcome string, units int) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
	if outcome == OutcomeSuccess && units > 0 {
		c.units.Add(float64(units))
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
