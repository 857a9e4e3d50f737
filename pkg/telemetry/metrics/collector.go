package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mercator-hq/ganymede/pkg/config"
)

// Collector owns the Prometheus registry and all metric subsystems.
type Collector struct {
	registry *prometheus.Registry

	Guardrail *GuardrailMetrics
	HTTP      *HTTPMetrics
	Evidence  *EvidenceMetrics
}

// NewCollector creates a collector and registers all metric families
// with the given registry. A nil registry creates a fresh one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "ganymede"
	}

	return &Collector{
		registry:  registry,
		Guardrail: NewGuardrailMetrics(cfg, registry),
		HTTP:      NewHTTPMetrics(cfg, registry),
		Evidence:  NewEvidenceMetrics(cfg, registry),
	}
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
