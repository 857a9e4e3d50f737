package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/config"
)

// EvidenceMetrics tracks verdict record persistence.
//
// Metrics:
//   - ganymede_evidence_records_written_total: successful writes
//   - ganymede_evidence_write_errors_total: failed writes
//   - ganymede_evidence_records_dropped_total: records dropped on a full buffer
//   - ganymede_evidence_records_pruned_total: records removed by retention
type EvidenceMetrics struct {
	recordsWritten prometheus.Counter
	writeErrors    prometheus.Counter
	recordsDropped prometheus.Counter
	recordsPruned  prometheus.Counter
}

// NewEvidenceMetrics creates and registers evidence metrics.
func NewEvidenceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvidenceMetrics {
	em := &EvidenceMetrics{
		recordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "evidence_records_written_total",
			Help:      "Total number of verdict records written to storage",
		}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "evidence_write_errors_total",
			Help:      "Total number of failed verdict record writes",
		}),
		recordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "evidence_records_dropped_total",
			Help:      "Total number of verdict records dropped because the recorder buffer was full",
		}),
		recordsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "evidence_records_pruned_total",
			Help:      "Total number of verdict records removed by retention",
		}),
	}

	registry.MustRegister(em.recordsWritten, em.writeErrors, em.recordsDropped, em.recordsPruned)

	return em
}

// RecordWrite records a successful storage write.
func (em *EvidenceMetrics) RecordWrite() { em.recordsWritten.Inc() }

// RecordWriteError records a failed storage write.
func (em *EvidenceMetrics) RecordWriteError() { em.writeErrors.Inc() }

// RecordDrop records a verdict dropped on a full recorder buffer.
func (em *EvidenceMetrics) RecordDrop() { em.recordsDropped.Inc() }

// RecordPruned records verdicts removed by the retention job.
func (em *EvidenceMetrics) RecordPruned(n int64) { em.recordsPruned.Add(float64(n)) }
