package guardrail

import (
	"strings"
	"testing"
)

func TestRuleSetWarnings(t *testing.T) {
	tests := []struct {
		name    string
		ruleset *RuleSet
		want    []string
	}{
		{
			name:    "default ruleset is clean",
			ruleset: DefaultRuleSet(),
			want:    nil,
		},
		{
			name: "unrecognized stage",
			ruleset: &RuleSet{Checks: []CheckDefinition{
				{ID: "c1", When: "mid_generation", Run: Invocation{Type: "pii_scan"}},
			}},
			want: []string{`unrecognized stage "mid_generation"`},
		},
		{
			name: "unrecognized operator",
			ruleset: &RuleSet{Checks: []CheckDefinition{
				{
					ID:   "c1",
					When: StagePreReturn,
					Run:  Invocation{Type: "pii_scan"},
					Assert: []Assertion{
						{Operator: "matches", Field: "detected", Expected: false},
					},
				},
			}},
			want: []string{`unrecognized operator "matches"`},
		},
		{
			name: "unrecognized action",
			ruleset: &RuleSet{Checks: []CheckDefinition{
				{
					ID:     "c1",
					When:   StagePreReturn,
					Run:    Invocation{Type: "pii_scan"},
					OnFail: OnFail{Action: "escalate"},
				},
			}},
			want: []string{`unrecognized action "escalate"`},
		},
		{
			name: "missing id and type",
			ruleset: &RuleSet{Checks: []CheckDefinition{
				{When: StagePreReturn},
			}},
			want: []string{"check #0 has no id", "declares no check type"},
		},
		{
			name: "warn and empty actions are recognized",
			ruleset: &RuleSet{Checks: []CheckDefinition{
				{ID: "c1", When: StagePreReturn, Run: Invocation{Type: "pii_scan"}, OnFail: OnFail{Action: "warn"}},
				{ID: "c2", When: StagePreReturn, Run: Invocation{Type: "pii_scan"}},
			}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ruleset.Warnings()
			if len(got) != len(tt.want) {
				t.Fatalf("Warnings() = %v, want %d warnings", got, len(tt.want))
			}
			for i, fragment := range tt.want {
				if !strings.Contains(got[i], fragment) {
					t.Errorf("warning %d = %q, want it to contain %q", i, got[i], fragment)
				}
			}
		})
	}
}
