package checks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mercator-hq/ganymede/pkg/guardrail"
)

// JudgeConfig configures the LLM judge check.
type JudgeConfig struct {
	// Endpoint is the judge service URL. Empty means no remote judge:
	// the check falls back to local heuristic scoring.
	Endpoint string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout bounds one judge call. Default: 30s. The engine applies
	// its own per-check timeout on top.
	Timeout time.Duration
}

// LLMJudge scores answer quality. When an endpoint is configured it POSTs
// the text and context to the judge service and relays the returned
// observation fields; otherwise it applies a local completeness
// heuristic.
//
// Observation fields:
//   - score: float64 in [0, 1]
//   - quality: "good" or "poor"
type LLMJudge struct {
	config JudgeConfig
	client *http.Client
	logger *slog.Logger
}

// judgeRequest is the wire request to the judge service.
type judgeRequest struct {
	Text    string         `json:"text"`
	Context map[string]any `json:"context,omitempty"`
}

// judgeResponse is the wire response from the judge service.
type judgeResponse struct {
	Score   float64 `json:"score"`
	Quality string  `json:"quality"`
}

// NewLLMJudge creates an LLM judge check.
func NewLLMJudge(config JudgeConfig, logger *slog.Logger) *LLMJudge {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMJudge{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Observe judges the text. Remote failures surface as errors so the
// engine can isolate them to a per-check warning.
func (j *LLMJudge) Observe(ctx context.Context, text string, evalCtx map[string]any) (guardrail.Observation, error) {
	if j.config.Endpoint == "" {
		return j.heuristic(text), nil
	}

	body, err := json.Marshal(judgeRequest{Text: text, Context: evalCtx})
	if err != nil {
		return nil, fmt.Errorf("failed to encode judge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create judge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if j.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+j.config.APIKey)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judge call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("judge returned status %d", resp.StatusCode)
	}

	var judged judgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&judged); err != nil {
		return nil, fmt.Errorf("failed to decode judge response: %w", err)
	}

	quality := judged.Quality
	if quality == "" {
		quality = qualityLabel(judged.Score)
	}

	return guardrail.Observation{
		"score":   judged.Score,
		"quality": quality,
	}, nil
}

// heuristic applies a local completeness check: short answers and answers
// without terminal punctuation score lower.
func (j *LLMJudge) heuristic(text string) guardrail.Observation {
	score := 0.8

	if len(text) < 50 {
		score -= 0.3
	}
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		score -= 0.2
	}

	if score < 0 {
		score = 0
	}

	return guardrail.Observation{
		"score":   score,
		"quality": qualityLabel(score),
	}
}

func qualityLabel(score float64) string {
	if score > 0.7 {
		return "good"
	}
	return "poor"
}
