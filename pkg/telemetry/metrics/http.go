package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/config"
)

// HTTPMetrics tracks the API surface.
//
// Metrics:
//   - ganymede_http_requests_total: requests by route, method and status
//   - ganymede_http_request_duration_seconds: request latency by route
//   - ganymede_http_requests_in_flight: currently active requests
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewHTTPMetrics creates and registers HTTP metrics.
func NewHTTPMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HTTPMetrics {
	hm := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
	}

	registry.MustRegister(hm.requestsTotal, hm.requestDuration, hm.inFlight)

	return hm
}

// RecordRequest records a completed request.
func (hm *HTTPMetrics) RecordRequest(route, method, status string, duration time.Duration) {
	hm.requestsTotal.WithLabelValues(route, method, status).Inc()
	hm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// IncInFlight marks a request as started.
func (hm *HTTPMetrics) IncInFlight() { hm.inFlight.Inc() }

// DecInFlight marks a request as finished.
func (hm *HTTPMetrics) DecInFlight() { hm.inFlight.Dec() }
