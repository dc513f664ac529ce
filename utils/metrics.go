package utils

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the application collectors
type Metrics struct {
	Registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RepositoryOps   *prometheus.CounterVec
	EntityTotals    *prometheus.GaugeVec
	Notifications   *prometheus.CounterVec
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// NewMetrics creates collectors registered on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prestamos",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		RepositoryOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prestamos",
			Name:      "repository_operations_total",
			Help:      "Document repository operations by collection, operation and result.",
		}, []string{"collection", "operation", "result"}),
		EntityTotals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "prestamos",
			Name:      "entity_total",
			Help:      "Number of stored documents per collection, as of the last dashboard refresh.",
		}, []string{"collection"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prestamos",
			Name:      "notifications_total",
			Help:      "User-facing notifications by kind.",
		}, []string{"kind"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.RepositoryOps,
		m.EntityTotals,
		m.Notifications,
	)
	return m
}

// GetMetrics returns the process-wide metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics()
	})
	return metrics
}

// RecordRepositoryOp counts one repository call
func (m *Metrics) RecordRepositoryOp(collection, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RepositoryOps.WithLabelValues(collection, operation, result).Inc()
}

// RecordRequest observes one HTTP request
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, statusClass(status)).Observe(duration.Seconds())
}

// SetTotal publishes the latest count for a collection
func (m *Metrics) SetTotal(collection string, total int) {
	m.EntityTotals.WithLabelValues(collection).Set(float64(total))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
