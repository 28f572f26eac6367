package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	LedgerOperations *prometheus.CounterVec
	CreditsMoved     *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	ImageGenerations *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LedgerOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Ledger operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		CreditsMoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_credits_total",
				Help:      "Absolute credits moved by transaction kind",
			},
			[]string{"kind"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ImageGenerations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "image_requests_total",
				Help:      "Image API calls by action and outcome",
			},
			[]string{"action", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.LedgerOperations,
		m.CreditsMoved,
		m.HTTPRequests,
		m.HTTPDuration,
		m.ImageGenerations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLedger is nil-safe so components can run without metrics.
func (m *Metrics) ObserveLedger(operation, outcome string) {
	if m == nil {
		return
	}
	m.LedgerOperations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveCredits(kind string, amount int64) {
	if m == nil {
		return
	}
	if amount < 0 {
		amount = -amount
	}
	m.CreditsMoved.WithLabelValues(kind).Add(float64(amount))
}

func (m *Metrics) ObserveImage(action, outcome string) {
	if m == nil {
		return
	}
	m.ImageGenerations.WithLabelValues(action, outcome).Inc()
}
