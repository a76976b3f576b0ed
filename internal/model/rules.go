package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// State is the computed visibility of a field.
type State string

const (
	StateVisibleEnabled  State = "visibleEnabled"
	StateVisibleDisabled State = "visibleDisabled"
	StateHiddenDisabled  State = "hiddenDisabled"
)

// Visible reports whether the field is rendered.
func (s State) Visible() bool {
	return s == StateVisibleEnabled || s == StateVisibleDisabled || s == ""
}

// Enabled reports whether the field is editable.
func (s State) Enabled() bool {
	return s == StateVisibleEnabled || s == ""
}

// ParseState maps a wire state name to a State. The hidden-enabled variant
// some services emit is folded into StateHiddenDisabled since hidden fields
// never render.
func ParseState(raw string) (State, error) {
	switch strings.TrimSpace(raw) {
	case "visibleEnabled":
		return StateVisibleEnabled, nil
	case "visibleDisabled":
		return StateVisibleDisabled, nil
	case "hiddenDisabled", "hiddenEnabled":
		return StateHiddenDisabled, nil
	default:
		return "", fmt.Errorf("model: unknown visibility state %q", raw)
	}
}

// Operator names a visibility condition.
type Operator string

const (
	OpEquals      Operator = "$equals"
	OpNotEquals   Operator = "$notEquals"
	OpContains    Operator = "$contains"
	OpStartsWith  Operator = "$startsWith"
	OpEndsWith    Operator = "$endsWith"
	OpLessThan    Operator = "$lessThan"
	OpGreaterThan Operator = "$greaterThan"
	OpMatchesRe   Operator = "$matchesRegex"
	OpIsEnabled   Operator = "$isEnabled"
	OpIsEmpty     Operator = "$isEmpty"
	OpAllOf       Operator = "$allOf"
	OpAnyOf       Operator = "$anyOf"
	OpNot         Operator = "$not"
)

// Condition is a predicate over the current form values. Composite operators
// ($allOf, $anyOf, $not) carry their operands in Conditions.
type Condition struct {
	Op         Operator    `json:"op"`
	Parameter  string      `json:"parameter,omitempty"`
	Value      any         `json:"value,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// Parameters returns every field name the condition reads.
func (c Condition) Parameters() []string {
	var out []string
	if c.Parameter != "" {
		out = append(out, c.Parameter)
	}
	for _, nested := range c.Conditions {
		out = append(out, nested.Parameters()...)
	}
	return out
}

// Clause pairs a condition with the state applied when it holds.
type Clause struct {
	When Condition `json:"when"`
	Then State     `json:"then"`
}

// Rule is a field's declarative visibility rule. Clauses are tried in order
// and the first match wins; Else applies when none match. Expr holds an
// expression-language rule evaluated instead of the clauses when set.
type Rule struct {
	If   []Clause `json:"if,omitempty"`
	Else State    `json:"else,omitempty"`
	Expr string   `json:"expr,omitempty"`
}

// Dependencies returns the field names referenced by structured clauses.
func (r *Rule) Dependencies() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, clause := range r.If {
		out = append(out, clause.When.Parameters()...)
	}
	return out
}

var errEmptyCondition = errors.New("model: visibility condition is empty")

// DecodeRule converts a descriptor's raw visibility payload (as decoded from
// JSON or YAML) into a Rule. A string payload is treated as an expression
// rule. A nil payload yields a nil rule.
func DecodeRule(raw any) (*Rule, error) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil, nil
		}
		return &Rule{Expr: strings.TrimSpace(typed)}, nil
	case *Rule:
		return typed, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("model: encode visibility: %w", err)
	}
	return ParseRuleJSON(data)
}

// ParseRuleJSON decodes the wire form of a visibility rule:
//
//	{"if": [{"$equals": {"parameter": "mode", "value": "A"}, "then": "visibleEnabled"}],
//	 "else": "hiddenDisabled"}
func ParseRuleJSON(data []byte) (*Rule, error) {
	var wire struct {
		If   []map[string]json.RawMessage `json:"if"`
		Else string                       `json:"else"`
		Expr string                       `json:"expr"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("model: decode visibility: %w", err)
	}

	rule := &Rule{Expr: strings.TrimSpace(wire.Expr), Else: StateHiddenDisabled}
	if wire.Else != "" {
		state, err := ParseState(wire.Else)
		if err != nil {
			return nil, err
		}
		rule.Else = state
	}

	for idx, rawClause := range wire.If {
		clause, err := parseClause(rawClause)
		if err != nil {
			return nil, fmt.Errorf("model: visibility clause %d: %w", idx, err)
		}
		rule.If = append(rule.If, clause)
	}
	if len(rule.If) == 0 && rule.Expr == "" {
		return nil, nil
	}
	return rule, nil
}

func parseClause(raw map[string]json.RawMessage) (Clause, error) {
	clause := Clause{Then: StateVisibleEnabled}
	found := false
	for key, payload := range raw {
		if key == "then" {
			var name string
			if err := json.Unmarshal(payload, &name); err != nil {
				return Clause{}, fmt.Errorf("then: %w", err)
			}
			state, err := ParseState(name)
			if err != nil {
				return Clause{}, err
			}
			clause.Then = state
			continue
		}
		if !strings.HasPrefix(key, "$") {
			continue
		}
		if found {
			return Clause{}, fmt.Errorf("multiple conditions in one clause (%s)", key)
		}
		cond, err := parseCondition(Operator(key), payload)
		if err != nil {
			return Clause{}, err
		}
		clause.When = cond
		found = true
	}
	if !found {
		return Clause{}, errEmptyCondition
	}
	return clause, nil
}

func parseCondition(op Operator, payload json.RawMessage) (Condition, error) {
	switch op {
	case OpAllOf, OpAnyOf:
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			return Condition{}, fmt.Errorf("%s: %w", op, err)
		}
		cond := Condition{Op: op}
		for _, item := range items {
			nested, err := parseSingle(item)
			if err != nil {
				return Condition{}, fmt.Errorf("%s: %w", op, err)
			}
			cond.Conditions = append(cond.Conditions, nested)
		}
		return cond, nil
	case OpNot:
		var item map[string]json.RawMessage
		if err := json.Unmarshal(payload, &item); err != nil {
			return Condition{}, fmt.Errorf("%s: %w", op, err)
		}
		nested, err := parseSingle(item)
		if err != nil {
			return Condition{}, fmt.Errorf("%s: %w", op, err)
		}
		return Condition{Op: op, Conditions: []Condition{nested}}, nil
	case OpEquals, OpNotEquals, OpContains, OpStartsWith, OpEndsWith,
		OpLessThan, OpGreaterThan, OpMatchesRe, OpIsEnabled, OpIsEmpty:
		var operand struct {
			Parameter string `json:"parameter"`
			Value     any    `json:"value"`
		}
		if err := json.Unmarshal(payload, &operand); err != nil {
			return Condition{}, fmt.Errorf("%s: %w", op, err)
		}
		if strings.TrimSpace(operand.Parameter) == "" {
			return Condition{}, fmt.Errorf("%s: parameter is required", op)
		}
		return Condition{Op: op, Parameter: strings.TrimSpace(operand.Parameter), Value: operand.Value}, nil
	default:
		return Condition{}, fmt.Errorf("unsupported operator %q", op)
	}
}

func parseSingle(item map[string]json.RawMessage) (Condition, error) {
	if len(item) != 1 {
		return Condition{}, errEmptyCondition
	}
	for key, payload := range item {
		return parseCondition(Operator(key), payload)
	}
	return Condition{}, errEmptyCondition
}
