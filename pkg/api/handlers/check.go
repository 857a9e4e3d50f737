package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/ganymede/pkg/guardrail"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// VerdictRecorder receives evaluation outcomes for audit recording.
// Implemented by the evidence recorder.
type VerdictRecorder interface {
	Record(requestID string, stage guardrail.Stage, input string, result *guardrail.EvaluationResult, duration time.Duration)
}

// CheckHandler serves POST /v1/guardrails/check.
type CheckHandler struct {
	engine   *guardrail.Engine
	recorder VerdictRecorder
	metrics  *metrics.GuardrailMetrics
	logger   *slog.Logger

	// maxBodyBytes bounds the request body size.
	maxBodyBytes int64
}

// NewCheckHandler creates the check handler. Recorder and metrics may
// be nil.
func NewCheckHandler(engine *guardrail.Engine, recorder VerdictRecorder, gm *metrics.GuardrailMetrics, logger *slog.Logger) *CheckHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckHandler{
		engine:       engine,
		recorder:     recorder,
		metrics:      gm,
		logger:       logger,
		maxBodyBytes: 1 << 20,
	}
}

func (h *CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := logging.RequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	var req CheckRequest
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), requestID)
		return
	}

	stage := guardrail.Stage(req.Stage)
	if !stage.Valid() {
		writeError(w, http.StatusBadRequest, "invalid stage: must be pre_generation, post_generation or pre_return", requestID)
		return
	}

	start := time.Now()
	result := h.engine.Evaluate(r.Context(), req.Text, req.Context, stage)
	duration := time.Since(start)

	if h.metrics != nil {
		outcome := "passed"
		if !result.Passed {
			outcome = "failed"
		}
		h.metrics.RecordEvaluation(string(stage), outcome, duration)
		for _, checkID := range result.FailedChecks {
			h.metrics.RecordCheckFailure(checkID)
		}
	}

	if h.recorder != nil {
		h.recorder.Record(requestID, stage, req.Text, result, duration)
	}

	h.logger.Debug("guardrail check served",
		"request_id", requestID,
		"stage", stage,
		"passed", result.Passed,
		"failed_checks", result.FailedChecks,
		"duration_ms", duration.Milliseconds(),
	)

	writeJSON(w, http.StatusOK, CheckResponse{
		Passed:       result.Passed,
		FailedChecks: result.FailedChecks,
		Warnings:     result.Warnings,
		ActionsTaken: result.ActionsTaken,
		ModifiedText: result.ModifiedText,
		Stage:        string(stage),
		RequestID:    requestID,
		DurationMs:   duration.Milliseconds(),
	})
}
