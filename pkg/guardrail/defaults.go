package guardrail

// DefaultRuleSet returns the built-in guardrail checks installed when no
// ruleset source is configured or the source fails to load. The engine is
// never left with zero checks: PII leakage is caught before returning,
// toxicity and length bounds are checked after generation.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Version: "0.1",
		Checks: []CheckDefinition{
			{
				ID:   "pii_leakage",
				When: StagePreReturn,
				Run: Invocation{
					Type:          "pii_scan",
					InputTemplate: "{{answer}}",
				},
				Assert: []Assertion{
					{Operator: OperatorEqual, Field: "detected", Expected: false},
				},
				OnFail: OnFail{
					Action:  "mask_and_log",
					Message: "PII detected in response",
				},
			},
			{
				ID:   "toxicity_check",
				When: StagePostGeneration,
				Run: Invocation{
					Type:          "toxicity_scan",
					InputTemplate: "{{answer}}",
				},
				Assert: []Assertion{
					{Operator: OperatorLessEqual, Field: "score", Expected: 0.3},
				},
				OnFail: OnFail{
					Action:  "refuse",
					Message: "Content failed toxicity check",
				},
			},
			{
				ID:   "length_check",
				When: StagePostGeneration,
				Run: Invocation{
					Type:          "length_check",
					InputTemplate: "{{answer}}",
				},
				Assert: []Assertion{
					{Operator: OperatorGreaterEqual, Field: "length", Expected: 10},
					{Operator: OperatorLessEqual, Field: "length", Expected: 5000},
				},
				OnFail: OnFail{
					Action:  "truncate",
					Message: "Response length out of bounds",
				},
			},
		},
	}
}
