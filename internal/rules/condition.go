package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Operator is the closed set of condition operators a template may use
// against a quiz profile.
type Operator int

const (
	// OpInvalid marks a clause whose operator key was missing or unknown.
	// Evaluation of such a clause always fails closed.
	OpInvalid Operator = iota
	OpEquals
	OpNotEquals
	OpIn
	OpNotIn
	OpIsTrue
	OpIsFalse
)

func (o Operator) String() string {
	switch o {
	case OpEquals:
		return "equals"
	case OpNotEquals:
		return "not_equals"
	case OpIn:
		return "in"
	case OpNotIn:
		return "not_in"
	case OpIsTrue:
		return "is_true"
	case OpIsFalse:
		return "is_false"
	default:
		return "invalid"
	}
}

var operatorKeys = map[string]Operator{
	"equals":     OpEquals,
	"not_equals": OpNotEquals,
	"in":         OpIn,
	"not_in":     OpNotIn,
	"is_true":    OpIsTrue,
	"is_false":   OpIsFalse,
}

// Condition is one parsed clause of a template's applies_if list: a
// dot-separated path into the quiz profile plus exactly one operator.
//
// The dot-path form only exists at the data boundary — templates are
// authored as YAML, so the clause mapping is decoded here and everything
// downstream works with the typed Operator.
type Condition struct {
	Path    string
	Op      Operator
	Operand any

	// Err records why parsing failed. A condition with a non-nil Err fails
	// its owning template closed rather than aborting the template load.
	Err error
}

// UnmarshalYAML decodes a clause mapping such as
//
//	{path: family.pets, is_true: true}
//	{path: moveType, in: [international]}
//
// Unknown operator keys and missing paths are recorded on Err instead of
// returned, so one bad clause never aborts decoding of the whole file.
func (c *Condition) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		c.Err = fmt.Errorf("clause is not a mapping: %w", err)
		return nil
	}

	path, ok := raw["path"].(string)
	if !ok || path == "" {
		c.Err = fmt.Errorf("clause has no path")
		return nil
	}
	c.Path = path

	for key, op := range operatorKeys {
		operand, present := raw[key]
		if !present {
			continue
		}
		if c.Op != OpInvalid {
			c.Err = fmt.Errorf("clause for %q has more than one operator", path)
			return nil
		}
		c.Op = op
		c.Operand = operand
	}
	if c.Op == OpInvalid {
		c.Err = fmt.Errorf("clause for %q has no recognized operator", path)
	}
	return nil
}
