package guardrail

import "fmt"

// validOperator reports whether op is one of the recognized comparison
// operators. Unrecognized operators are permissive at runtime, so they
// are surfaced as lint warnings rather than load errors.
func validOperator(op Operator) bool {
	switch op {
	case OperatorEqual, OperatorNotEqual, OperatorGreaterThan,
		OperatorGreaterEqual, OperatorLessThan, OperatorLessEqual:
		return true
	}
	return false
}

// validAction reports whether the action string names a recognized
// remediation. "warn" and "" both parse to the warn-only action.
func validAction(action string) bool {
	switch action {
	case "refuse", "mask_and_log", "fallback_or_refuse", "truncate", "warn", "":
		return true
	}
	return false
}

// Warnings lints the ruleset for declarations that are legal but almost
// certainly mistakes: unrecognized stages (the check never runs),
// unrecognized operators (the assertion never fails), unrecognized
// actions (degrade to warn-only), missing IDs, and missing check types.
// None of these block loading; the engine runs any ruleset within the
// check cap.
func (rs *RuleSet) Warnings() []string {
	var warnings []string

	for i, check := range rs.Checks {
		label := check.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			warnings = append(warnings, fmt.Sprintf("check %s has no id", label))
		}
		if !check.When.Valid() {
			warnings = append(warnings, fmt.Sprintf("check %s declares unrecognized stage %q and will never run", label, check.When))
		}
		if check.Run.Type == "" {
			warnings = append(warnings, fmt.Sprintf("check %s declares no check type", label))
		}
		for _, assertion := range check.Assert {
			if !validOperator(assertion.Operator) {
				warnings = append(warnings, fmt.Sprintf("check %s uses unrecognized operator %q; the assertion always passes", label, assertion.Operator))
			}
		}
		if !validAction(check.OnFail.Action) {
			warnings = append(warnings, fmt.Sprintf("check %s uses unrecognized action %q; it degrades to warn", label, check.OnFail.Action))
		}
	}

	return warnings
}
