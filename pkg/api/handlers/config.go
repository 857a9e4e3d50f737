package handlers

import (
	"log/slog"
	"net/http"

	"mercator-hq/ganymede/pkg/guardrail"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// ConfigHandler serves GET /v1/guardrails/config.
type ConfigHandler struct {
	engine *guardrail.Engine
}

// NewConfigHandler creates the config introspection handler.
func NewConfigHandler(engine *guardrail.Engine) *ConfigHandler {
	return &ConfigHandler{engine: engine}
}

func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := logging.RequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	ruleset := h.engine.RuleSet()
	writeJSON(w, http.StatusOK, ConfigResponse{
		Version: ruleset.Version,
		Checks:  ruleset.Summaries(),
	})
}

// ReloadHandler serves POST /v1/guardrails/reload.
type ReloadHandler struct {
	engine  *guardrail.Engine
	metrics *metrics.GuardrailMetrics
	logger  *slog.Logger
}

// NewReloadHandler creates the reload handler. Metrics may be nil.
func NewReloadHandler(engine *guardrail.Engine, gm *metrics.GuardrailMetrics, logger *slog.Logger) *ReloadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadHandler{engine: engine, metrics: gm, logger: logger}
}

func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := logging.RequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	if err := h.engine.Reload(r.Context()); err != nil {
		if h.metrics != nil {
			h.metrics.RecordReload("rejected")
		}
		h.logger.Warn("ruleset reload rejected", "error", err, "request_id", requestID)
		writeError(w, http.StatusUnprocessableEntity, "reload failed: "+err.Error(), requestID)
		return
	}

	ruleset := h.engine.RuleSet()
	if h.metrics != nil {
		h.metrics.RecordReload("ok")
		h.metrics.SetChecksLoaded(len(ruleset.Checks))
	}

	h.logger.Info("ruleset reloaded",
		"version", ruleset.Version,
		"checks", len(ruleset.Checks),
		"request_id", requestID,
	)

	writeJSON(w, http.StatusOK, ReloadResponse{
		Status:  "reloaded",
		Version: ruleset.Version,
		Checks:  ruleset.Summaries(),
	})
}
