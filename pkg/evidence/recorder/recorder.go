package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/evidence"
	"mercator-hq/ganymede/pkg/guardrail"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// Config contains configuration for the recorder.
type Config struct {
	// AsyncBuffer is the record channel size. 0 selects the default.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds one storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes verdict records asynchronously.
type Recorder struct {
	storage    evidence.Storage
	config     *Config
	recordChan chan *evidence.VerdictRecord
	done       chan struct{}
	wg         sync.WaitGroup
	logger     *slog.Logger
	metrics    *metrics.EvidenceMetrics
}

// NewRecorder creates a recorder and starts its background worker.
// The metrics collector may be nil.
func NewRecorder(storage evidence.Storage, config *Config, logger *slog.Logger, em *metrics.EvidenceMetrics) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *evidence.VerdictRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "evidence.recorder"),
		metrics:    em,
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("evidence recorder started",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record builds a verdict record from an evaluation result and
// enqueues it. It never blocks: on a full buffer the record is dropped
// and counted.
func (r *Recorder) Record(requestID string, stage guardrail.Stage, input string, result *guardrail.EvaluationResult, duration time.Duration) {
	output := input
	textModified := false
	if result.ModifiedText != nil {
		output = *result.ModifiedText
		textModified = true
	}

	record := &evidence.VerdictRecord{
		ID:           uuid.New().String(),
		RequestID:    requestID,
		Stage:        string(stage),
		Passed:       result.Passed,
		FailedChecks: append([]string{}, result.FailedChecks...),
		Warnings:     append([]string{}, result.Warnings...),
		ActionsTaken: append([]string{}, result.ActionsTaken...),
		TextModified: textModified,
		InputHash:    evidence.HashText(input),
		OutputHash:   evidence.HashText(output),
		Duration:     duration,
		RecordedAt:   time.Now().UTC(),
	}

	select {
	case r.recordChan <- record:
	default:
		if r.metrics != nil {
			r.metrics.RecordDrop()
		}
		r.logger.Warn("evidence buffer full, dropping verdict record",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
	}
}

// Close stops the worker after draining buffered records.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.write(record)
		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *evidence.VerdictRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		if r.metrics != nil {
			r.metrics.RecordWriteError()
		}
		r.logger.Error("failed to write verdict record",
			"record_id", record.ID,
			"error", err,
		)
		return
	}

	if r.metrics != nil {
		r.metrics.RecordWrite()
	}
}
