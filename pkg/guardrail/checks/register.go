package checks

import (
	"fmt"
	"log/slog"

	"mercator-hq/ganymede/pkg/guardrail"
	"mercator-hq/ganymede/pkg/redaction"
)

// RegisterAll wires every built-in check implementation into the engine
// under its canonical type name. The length_check type is already built
// into the dispatcher.
func RegisterAll(engine *guardrail.Engine, patterns []redaction.Pattern, judgeCfg JudgeConfig, logger *slog.Logger) error {
	piiScan, err := NewPIIScan(patterns)
	if err != nil {
		return fmt.Errorf("failed to build pii_scan: %w", err)
	}
	classification, err := NewClassificationCheck(patterns)
	if err != nil {
		return fmt.Errorf("failed to build classification: %w", err)
	}

	engine.Register("pii_scan", piiScan)
	engine.Register("toxicity_scan", NewToxicityScan(nil))
	engine.Register("hallucination_score", NewHallucinationScore())
	engine.Register("llm_judge", NewLLMJudge(judgeCfg, logger))
	engine.Register("classification", classification)

	return nil
}
