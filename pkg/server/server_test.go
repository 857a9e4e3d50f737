package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/guardrail"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	engine, err := guardrail.NewEngine(nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	cfg := config.Default()
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	return New(&cfg.Server, Options{
		Engine:    engine,
		Collector: collector,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestServer_Routes(t *testing.T) {
	handler := newTestServer(t).Handler()

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{"check", "POST", "/v1/guardrails/check", `{"text": "hi", "stage": "pre_return"}`, 200},
		{"config", "GET", "/v1/guardrails/config", "", 200},
		{"reload", "POST", "/v1/guardrails/reload", "", 200},
		{"health", "GET", "/health", "", 200},
		{"ready", "GET", "/ready", "", 200},
		{"metrics", "GET", "/metrics", "", 200},
		{"unknown route", "GET", "/nope", "", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestServer_CheckEndToEnd(t *testing.T) {
	handler := newTestServer(t).Handler()

	body := `{"text": "hello there", "stage": "post_generation"}`
	req := httptest.NewRequest("POST", "/v1/guardrails/check", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("no request ID header")
	}

	var resp struct {
		Passed    bool   `json:"passed"`
		RequestID string `json:"request_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Passed {
		t.Error("benign text should pass the default ruleset")
	}
	if resp.RequestID != rec.Header().Get("X-Request-ID") {
		t.Errorf("request ID mismatch: body %q, header %q", resp.RequestID, rec.Header().Get("X-Request-ID"))
	}
}

func TestServer_MetricsScrapeAfterCheck(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	req := httptest.NewRequest("POST", "/v1/guardrails/check", strings.NewReader(`{"text": "x", "stage": "pre_return"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "ganymede_guardrail_evaluations_total") {
		t.Error("guardrail metrics missing from scrape")
	}
	if !strings.Contains(rec.Body.String(), "ganymede_http_requests_total") {
		t.Error("http metrics missing from scrape")
	}
}
