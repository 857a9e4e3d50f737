package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/config"
)

// GuardrailMetrics tracks policy evaluation.
//
// Metrics:
//   - ganymede_guardrail_evaluations_total: evaluations by stage and outcome
//   - ganymede_guardrail_evaluation_duration_seconds: evaluation latency by stage
//   - ganymede_guardrail_check_failures_total: assertion failures per check
//   - ganymede_guardrail_actions_total: remediation actions taken
//   - ganymede_guardrail_dispatch_errors_total: check implementation errors per check
//   - ganymede_guardrail_ruleset_reloads_total: ruleset reloads by outcome
//   - ganymede_guardrail_checks_loaded: checks in the active ruleset
type GuardrailMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	checkFailuresTotal *prometheus.CounterVec
	actionsTotal       *prometheus.CounterVec
	dispatchErrors     *prometheus.CounterVec
	rulesetReloads     *prometheus.CounterVec
	checksLoaded       prometheus.Gauge
}

// NewGuardrailMetrics creates and registers guardrail metrics.
func NewGuardrailMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GuardrailMetrics {
	gm := &GuardrailMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "guardrail_evaluations_total",
				Help:      "Total number of guardrail evaluations",
			},
			[]string{"stage", "outcome"},
		),
		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "guardrail_evaluation_duration_seconds",
				Help:      "Duration of a full guardrail evaluation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
			[]string{"stage"},
		),
		checkFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "guardrail_check_failures_total",
				Help:      "Total number of failed check assertions",
			},
			[]string{"check_id"},
		),
		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "guardrail_actions_total",
				Help:      "Total number of remediation actions taken",
			},
			[]string{"action"},
		),
		dispatchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "guardrail_dispatch_errors_total",
				Help:      "Total number of check implementation errors",
			},
			[]string{"check_id"},
		),
		rulesetReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "guardrail_ruleset_reloads_total",
				Help:      "Total number of ruleset reload attempts",
			},
			[]string{"outcome"},
		),
		checksLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "guardrail_checks_loaded",
				Help:      "Number of checks in the active ruleset",
			},
		),
	}

	registry.MustRegister(
		gm.evaluationsTotal,
		gm.evaluationDuration,
		gm.checkFailuresTotal,
		gm.actionsTotal,
		gm.dispatchErrors,
		gm.rulesetReloads,
		gm.checksLoaded,
	)

	return gm
}

// RecordEvaluation records one full evaluation pass. Outcome is
// "passed" or "failed".
func (gm *GuardrailMetrics) RecordEvaluation(stage, outcome string, duration time.Duration) {
	gm.evaluationsTotal.WithLabelValues(stage, outcome).Inc()
	gm.evaluationDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordCheckFailure records a failed assertion for a check.
func (gm *GuardrailMetrics) RecordCheckFailure(checkID string) {
	gm.checkFailuresTotal.WithLabelValues(checkID).Inc()
}

// RecordAction records a remediation action ("warn", "refuse", ...).
func (gm *GuardrailMetrics) RecordAction(action string) {
	gm.actionsTotal.WithLabelValues(action).Inc()
}

// RecordDispatchError records a check implementation error.
func (gm *GuardrailMetrics) RecordDispatchError(checkID string) {
	gm.dispatchErrors.WithLabelValues(checkID).Inc()
}

// RecordReload records a ruleset reload attempt. Outcome is "ok",
// "fallback", or "rejected".
func (gm *GuardrailMetrics) RecordReload(outcome string) {
	gm.rulesetReloads.WithLabelValues(outcome).Inc()
}

// SetChecksLoaded updates the active check count gauge.
func (gm *GuardrailMetrics) SetChecksLoaded(n int) {
	gm.checksLoaded.Set(float64(n))
}
