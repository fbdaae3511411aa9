package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/parcelbridge/parcelbridge/pkg/shipping"
)

// Metrics holds all Prometheus metrics for the service. It doubles as
// the shipping.StatsSink the provider systems flush their operation
// counters into.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	OperationsTotal      *prometheus.CounterVec
	OperationErrorsTotal *prometheus.CounterVec
	SessionsOpen         *prometheus.GaugeVec
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parcelbridge_requests_total",
				Help: "Total number of HTTP requests by method, path, and status",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parcelbridge_request_duration_seconds",
				Help:    "HTTP request duration in seconds by method and path",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		OperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parcelbridge_shipping_operations_total",
				Help: "Total shipping operations by provider and operation",
			},
			[]string{"provider", "operation"},
		),
		OperationErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parcelbridge_shipping_operation_errors_total",
				Help: "Total failed shipping operations by provider and operation",
			},
			[]string{"provider", "operation"},
		),
		SessionsOpen: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "parcelbridge_shipping_sessions_open",
				Help: "Currently open shipping sessions by provider",
			},
			[]string{"provider"},
		),
	}
}

// RecordRequest records an HTTP request metric.
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration)
}

// FlushStats implements shipping.StatsSink: one flushed counter snapshot
// from a provider system is added to the Prometheus counters.
func (m *Metrics) FlushStats(provider string, snap shipping.StatsSnapshot) {
	for op, n := range snap.Calls {
		if n > 0 {
			m.OperationsTotal.WithLabelValues(provider, string(op)).Add(float64(n))
		}
	}
	for op, n := range snap.Errors {
		if n > 0 {
			m.OperationErrorsTotal.WithLabelValues(provider, string(op)).Add(float64(n))
		}
	}
}

var _ shipping.StatsSink = (*Metrics)(nil)
