package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal     *prometheus.CounterVec
	unavailableTotal *prometheus.CounterVec
	degenerateDays   prometheus.Counter
	compositeRate    *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg.
// A nil reg registers on the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		fetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "defiprime_source_fetches_total",
				Help: "Total number of entity fetches by source and result",
			},
			[]string{"source", "result"},
		),
		unavailableTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "defiprime_entities_unavailable_total",
				Help: "Total number of entities excluded from a run",
			},
			[]string{"reason"},
		),
		degenerateDays: f.NewCounter(
			prometheus.CounterOpts{
				Name: "defiprime_degenerate_weight_days_total",
				Help: "Days whose total weight was zero",
			},
		),
		compositeRate: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "defiprime_composite_rate",
				Help: "Latest composite and trend rate in percent",
			},
			[]string{"series"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "defiprime_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records one entity fetch.
func (r *Recorder) RecordFetch(source, result string) {
	r.fetchesTotal.WithLabelValues(source, result).Inc()
}

// RecordUnavailable records an excluded entity.
func (r *Recorder) RecordUnavailable(reason string) {
	r.unavailableTotal.WithLabelValues(reason).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordDegenerateDays adds days where the zero-weight fallback applied.
func (r *Recorder) RecordDegenerateDays(n int) {
	r.degenerateDays.Add(float64(n))
}

// RecordComposite records the latest composite and trend values.
func (r *Recorder) RecordComposite(rate, trend float64) {
	r.compositeRate.WithLabelValues("composite").Set(rate)
	r.compositeRate.WithLabelValues("trend").Set(trend)
}
