// Package rules decides whether a checklist template applies to a quiz
// profile. Conditions are evaluated with AND semantics, fail closed on
// anything malformed, and never mutate the profile.
package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// absent is the sentinel returned when a condition path does not resolve
// inside the profile. It is distinct from an explicit null so that
// is_true/is_false can treat a missing answer as neither value.
type absent struct{}

// Absent is the resolved value for a missing profile path.
var Absent = absent{}

// Applies reports whether every clause in conds evaluates true against the
// profile. An empty or nil clause list applies unconditionally.
//
// A malformed clause yields a non-nil error and the template must be treated
// as non-applicable; callers log the error as a diagnostic. Evaluation
// short-circuits on the first failing clause.
func Applies(conds []Condition, profile map[string]any) (bool, error) {
	for _, c := range conds {
		if c.Err != nil {
			return false, fmt.Errorf("malformed clause: %w", c.Err)
		}
		if !evaluate(c, profile) {
			return false, nil
		}
	}
	return true, nil
}

func evaluate(c Condition, profile map[string]any) bool {
	value := ResolvePath(profile, c.Path)

	switch c.Op {
	case OpEquals:
		return looseEqual(value, c.Operand)
	case OpNotEquals:
		return !looseEqual(value, c.Operand)
	case OpIn:
		seq, ok := c.Operand.([]any)
		if !ok {
			return false
		}
		return contains(seq, value)
	case OpNotIn:
		seq, ok := c.Operand.([]any)
		if !ok {
			return false
		}
		return !contains(seq, value)
	case OpIsTrue:
		// Strict identity: an absent or null value is neither true nor
		// false, so the clause fails either way.
		b, ok := value.(bool)
		return ok && b
	case OpIsFalse:
		b, ok := value.(bool)
		return ok && !b
	default:
		return false
	}
}

// ResolvePath walks a dot-separated path through nested mappings and, for
// numeric segments, sequence indices. A missing key, out-of-range index, or
// non-traversable intermediate value resolves to Absent.
func ResolvePath(profile map[string]any, path string) any {
	var current any = profile
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[segment]
			if !ok {
				return Absent
			}
			current = v
		case []any:
			i, err := strconv.Atoi(segment)
			if err != nil || i < 0 || i >= len(node) {
				return Absent
			}
			current = node[i]
		default:
			return Absent
		}
	}
	return current
}

func contains(seq []any, value any) bool {
	for _, item := range seq {
		if looseEqual(value, item) {
			return true
		}
	}
	return false
}

// looseEqual compares a profile value (decoded from JSON, numbers are
// float64) with an operand (decoded from YAML, numbers are int). Numerics
// compare by value; everything else by interface equality.
func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
