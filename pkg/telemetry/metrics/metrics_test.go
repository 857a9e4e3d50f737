package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/config"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	cfg := &config.MetricsConfig{Enabled: true, Namespace: "ganymede"}
	return NewCollector(cfg, prometheus.NewRegistry())
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestGuardrailMetrics(t *testing.T) {
	c := newTestCollector(t)

	c.Guardrail.RecordEvaluation("pre_return", "failed", 3*time.Millisecond)
	c.Guardrail.RecordCheckFailure("pii_leakage")
	c.Guardrail.RecordAction("mask_and_log")
	c.Guardrail.RecordDispatchError("toxicity_check")
	c.Guardrail.RecordReload("ok")
	c.Guardrail.SetChecksLoaded(3)

	body := scrape(t, c)

	for _, want := range []string{
		`ganymede_guardrail_evaluations_total{outcome="failed",stage="pre_return"} 1`,
		`ganymede_guardrail_check_failures_total{check_id="pii_leakage"} 1`,
		`ganymede_guardrail_actions_total{action="mask_and_log"} 1`,
		`ganymede_guardrail_dispatch_errors_total{check_id="toxicity_check"} 1`,
		`ganymede_guardrail_ruleset_reloads_total{outcome="ok"} 1`,
		`ganymede_guardrail_checks_loaded 3`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestHTTPMetrics(t *testing.T) {
	c := newTestCollector(t)

	c.HTTP.IncInFlight()
	c.HTTP.RecordRequest("/v1/guardrails/check", "POST", "200", 10*time.Millisecond)
	c.HTTP.DecInFlight()

	body := scrape(t, c)

	if !strings.Contains(body, `ganymede_http_requests_total{method="POST",route="/v1/guardrails/check",status="200"} 1`) {
		t.Errorf("request counter missing:\n%s", body)
	}
	if !strings.Contains(body, `ganymede_http_requests_in_flight 0`) {
		t.Errorf("in-flight gauge not back to zero:\n%s", body)
	}
}

func TestEvidenceMetrics(t *testing.T) {
	c := newTestCollector(t)

	c.Evidence.RecordWrite()
	c.Evidence.RecordWriteError()
	c.Evidence.RecordDrop()
	c.Evidence.RecordPruned(42)

	body := scrape(t, c)

	for _, want := range []string{
		`ganymede_evidence_records_written_total 1`,
		`ganymede_evidence_write_errors_total 1`,
		`ganymede_evidence_records_dropped_total 1`,
		`ganymede_evidence_records_pruned_total 42`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestNewCollector_DefaultNamespace(t *testing.T) {
	cfg := &config.MetricsConfig{}
	c := NewCollector(cfg, nil)

	c.Guardrail.SetChecksLoaded(1)

	if !strings.Contains(scrape(t, c), "ganymede_guardrail_checks_loaded 1") {
		t.Error("default namespace not applied")
	}
}
