// Package telemetry holds Prometheus metrics for business-level
// observability of the pricing engine.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/puentecommerce/puente/internal/domain"
)

// PricingMetrics tracks quote volume and the behavior of the margin
// guardrail. Dashboards alert on the guardrail adjustment rate: a spike
// usually means real costs drifted while charged rates did not.
type PricingMetrics struct {
	QuotesComputed       *prometheus.CounterVec
	GuardrailAdjustments prometheus.Counter
	ImputedWeightQuotes  prometheus.Counter
	QuoteTotal           prometheus.Histogram
	EstimatesComputed    prometheus.Counter
	SettingsUpdates      prometheus.Counter
}

// NewPricingMetrics creates and registers all pricing metrics.
func NewPricingMetrics(namespace string) *PricingMetrics {
	if namespace == "" {
		namespace = "puente"
	}

	subsystem := "pricing"

	return &PricingMetrics{
		QuotesComputed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "quotes_total",
				Help:      "Total cart quotes computed",
			},
			[]string{"eligible"}, // eligible: true, false
		),
		GuardrailAdjustments: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "guardrail_adjustments_total",
				Help:      "Total quotes where the management fee was raised to protect the margin floor",
			},
		),
		ImputedWeightQuotes: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "imputed_weight_quotes_total",
				Help:      "Total quotes where at least one line weight was inferred rather than declared",
			},
		),
		QuoteTotal: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "quote_total_amount",
				Help:      "Final quoted total distribution",
				Buckets:   []float64{25, 50, 100, 150, 250, 500, 1000, 2500, 5000},
			},
		),
		EstimatesComputed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "estimates_total",
				Help:      "Total single-item product page estimates computed",
			},
		),
		SettingsUpdates: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "settings_updates_total",
				Help:      "Total admin pricing settings updates",
			},
		),
	}
}

// ObserveQuote records one computed quote.
func (m *PricingMetrics) ObserveQuote(res domain.PricingResult) {
	if m == nil {
		return
	}
	eligible := "false"
	if res.CheckoutEligible {
		eligible = "true"
	}
	m.QuotesComputed.WithLabelValues(eligible).Inc()
	if res.GuardrailAdjusted {
		m.GuardrailAdjustments.Inc()
	}
	if res.WeightImputed {
		m.ImputedWeightQuotes.Inc()
	}
	total, _ := res.TotalFinal.Float64()
	m.QuoteTotal.Observe(total)
}
