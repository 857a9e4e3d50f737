package retention

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/evidence"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays keeps records younger than this many days.
	// 0 disables age-based pruning.
	RetentionDays int

	// PruneSchedule is a cron expression for scheduled pruning.
	// Empty disables the scheduler.
	PruneSchedule string

	// MaxRecords caps the store size. 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
		MaxRecords:    0,
	}
}

// Pruner deletes verdict records per the retention configuration.
type Pruner struct {
	storage evidence.Storage
	config  *Config
	logger  *slog.Logger
	metrics *metrics.EvidenceMetrics
}

// NewPruner creates a pruner. The metrics collector may be nil.
func NewPruner(storage evidence.Storage, config *Config, logger *slog.Logger, em *metrics.EvidenceMetrics) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pruner{
		storage: storage,
		config:  config,
		logger:  logger.With("component", "evidence.retention"),
		metrics: em,
	}
}

// Prune runs one pruning cycle and returns how many records were
// deleted. Age-based deletion runs first, then count-based.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -p.config.RetentionDays)
		deleted, err := p.storage.DeleteBefore(ctx, cutoff)
		if err != nil {
			return total, err
		}
		total += deleted
		if deleted > 0 {
			p.logger.Info("pruned verdicts by age",
				"deleted", deleted,
				"cutoff", cutoff,
			)
		}
	}

	if p.config.MaxRecords > 0 {
		count, err := p.storage.Count(ctx, nil)
		if err != nil {
			return total, err
		}
		if excess := count - p.config.MaxRecords; excess > 0 {
			deleted, err := p.storage.DeleteOldest(ctx, excess)
			if err != nil {
				return total, err
			}
			total += deleted
			p.logger.Info("pruned verdicts by count",
				"deleted", deleted,
				"max_records", p.config.MaxRecords,
			)
		}
	}

	if total > 0 && p.metrics != nil {
		p.metrics.RecordPruned(total)
	}

	return total, nil
}
