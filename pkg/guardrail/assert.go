package guardrail

import (
	"fmt"
	"reflect"
)

// evaluateAssertions evaluates a check's assertions against an observation
// with AND semantics, short-circuiting on the first failing assertion. An
// empty assertion list passes.
func evaluateAssertions(assertions []Assertion, obs Observation) bool {
	for _, assertion := range assertions {
		if !evaluateAssertion(assertion, obs) {
			return false
		}
	}
	return true
}

// evaluateAssertion evaluates a single operator/field/value triple.
//
// A field absent from the observation is treated as the absent sentinel:
// every operator fails against it except ne with a non-absent expected
// value. Comparing against missing data never silently passes.
//
// Type mismatches (numeric operator on a non-numeric value) count as
// assertion failure, never as an error: evaluation must always produce a
// verdict.
func evaluateAssertion(assertion Assertion, obs Observation) bool {
	actual, present := obs[assertion.Field]
	if !present {
		return assertion.Operator == OperatorNotEqual && assertion.Expected != nil
	}

	switch assertion.Operator {
	case OperatorEqual:
		return looselyEqual(actual, assertion.Expected)

	case OperatorNotEqual:
		return !looselyEqual(actual, assertion.Expected)

	case OperatorGreaterThan:
		actualNum, expectedNum, ok := numericPair(actual, assertion.Expected)
		return ok && actualNum > expectedNum

	case OperatorGreaterEqual:
		actualNum, expectedNum, ok := numericPair(actual, assertion.Expected)
		return ok && actualNum >= expectedNum

	case OperatorLessThan:
		actualNum, expectedNum, ok := numericPair(actual, assertion.Expected)
		return ok && actualNum < expectedNum

	case OperatorLessEqual:
		actualNum, expectedNum, ok := numericPair(actual, assertion.Expected)
		return ok && actualNum <= expectedNum

	default:
		// Unrecognized operators never fail a check at runtime;
		// ruleset validation reports them at load time.
		return true
	}
}

// looselyEqual compares two values, trying numeric comparison first so
// int and float64 forms of the same number compare equal (YAML and JSON
// decode numbers differently). Strings never coerce to numbers.
func looselyEqual(actual, expected any) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}

	actualNum, actualErr := toFloat64(actual)
	expectedNum, expectedErr := toFloat64(expected)
	if actualErr == nil && expectedErr == nil {
		return actualNum == expectedNum
	}

	return reflect.DeepEqual(actual, expected)
}

// numericPair converts both values to float64 for ordered comparison.
func numericPair(actual, expected any) (float64, float64, bool) {
	actualNum, err := toFloat64(actual)
	if err != nil {
		return 0, 0, false
	}
	expectedNum, err := toFloat64(expected)
	if err != nil {
		return 0, 0, false
	}
	return actualNum, expectedNum, true
}

// toFloat64 converts a numeric value to float64. Strings and booleans are
// not numeric: there is no implicit coercion.
func toFloat64(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}
