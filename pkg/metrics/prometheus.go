package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	decisions      *prometheus.CounterVec
	ordersPlaced   *prometheus.CounterVec
	ordersRejected *prometheus.CounterVec
	backtests      *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	confidence     *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgerunner_decisions_total",
				Help: "Total number of scored trade decisions",
			},
			[]string{"symbol", "bias"},
		),
		ordersPlaced: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgerunner_orders_placed_total",
				Help: "Total number of orders accepted by the broker",
			},
			[]string{"symbol"},
		),
		ordersRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgerunner_orders_rejected_total",
				Help: "Total number of orders rejected before or at the broker",
			},
			[]string{"symbol"},
		),
		backtests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgerunner_backtests_total",
				Help: "Total number of finished backtest runs by status",
			},
			[]string{"status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgerunner_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		confidence: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "edgerunner_last_confidence",
				Help: "Confidence of the most recent decision per symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgerunner_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordDecision records one scored evaluation.
func (r *Recorder) RecordDecision(symbol, bias string, confidence int) {
	r.decisions.WithLabelValues(symbol, bias).Inc()
	r.confidence.WithLabelValues(symbol).Set(float64(confidence))
}

// RecordOrderPlaced records an accepted order.
func (r *Recorder) RecordOrderPlaced(symbol string) {
	r.ordersPlaced.WithLabelValues(symbol).Inc()
}

// RecordOrderRejected records a rejected order. The reason is logged
// elsewhere; only the symbol is labeled to keep cardinality bounded.
func (r *Recorder) RecordOrderRejected(symbol, _ string) {
	r.ordersRejected.WithLabelValues(symbol).Inc()
}

// RecordBacktest records a finished run by terminal status.
func (r *Recorder) RecordBacktest(status string) {
	r.backtests.WithLabelValues(status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
