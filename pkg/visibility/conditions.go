package visibility

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/normalize"
)

// conditionEnv is the read-only view a condition is evaluated against.
type conditionEnv struct {
	values model.Values
	states map[string]model.State
}

func (env conditionEnv) holds(c model.Condition) bool {
	switch c.Op {
	case model.OpAllOf:
		for _, nested := range c.Conditions {
			if !env.holds(nested) {
				return false
			}
		}
		return true
	case model.OpAnyOf:
		for _, nested := range c.Conditions {
			if env.holds(nested) {
				return true
			}
		}
		return false
	case model.OpNot:
		if len(c.Conditions) == 0 {
			return false
		}
		return !env.holds(c.Conditions[0])
	case model.OpIsEnabled:
		state, ok := env.states[c.Parameter]
		return ok && state == model.StateVisibleEnabled
	case model.OpIsEmpty:
		return model.IsEmpty(env.values[c.Parameter])
	}

	current := env.values[c.Parameter]
	switch c.Op {
	case model.OpEquals:
		return equals(current, c.Value)
	case model.OpNotEquals:
		return !equals(current, c.Value)
	case model.OpContains:
		return containsValue(current, c.Value)
	case model.OpStartsWith:
		return anyText(current, func(s string) bool { return strings.HasPrefix(s, textOf(c.Value)) })
	case model.OpEndsWith:
		return anyText(current, func(s string) bool { return strings.HasSuffix(s, textOf(c.Value)) })
	case model.OpLessThan, model.OpGreaterThan:
		left, ok := normalize.Number(current)
		if !ok {
			return false
		}
		right, ok := normalize.Number(c.Value)
		if !ok {
			return false
		}
		if c.Op == model.OpLessThan {
			return left < right
		}
		return left > right
	case model.OpMatchesRe:
		re := compilePattern(textOf(c.Value))
		if re == nil {
			return false
		}
		return anyText(current, re.MatchString)
	default:
		return false
	}
}

// equals compares a form value with a rule operand. Numbers compare
// numerically, lists match when any element matches.
func equals(current model.Value, want any) bool {
	switch typed := current.(type) {
	case nil:
		return textOf(want) == ""
	case model.List:
		for _, item := range typed {
			if scalarEquals(item, want) {
				return true
			}
		}
		return false
	case model.Number:
		n, ok := normalize.Number(want)
		return ok && float64(typed) == n
	case model.Bool:
		return strconv.FormatBool(bool(typed)) == strings.ToLower(textOf(want))
	default:
		return scalarEquals(textOf(typed.Raw()), want)
	}
}

func scalarEquals(item string, want any) bool {
	if item == textOf(want) {
		return true
	}
	left, lok := normalize.Number(item)
	right, rok := normalize.Number(want)
	return lok && rok && left == right
}

func containsValue(current model.Value, want any) bool {
	needle := textOf(want)
	if list, ok := current.(model.List); ok {
		for _, item := range list {
			if item == needle {
				return true
			}
		}
		return false
	}
	return anyText(current, func(s string) bool { return strings.Contains(s, needle) })
}

func anyText(current model.Value, pred func(string) bool) bool {
	switch typed := current.(type) {
	case nil:
		return false
	case model.List:
		for _, item := range typed {
			if pred(item) {
				return true
			}
		}
		return false
	default:
		return pred(textOf(typed.Raw()))
	}
}

func textOf(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case model.Value:
		return textOf(typed.Raw())
	case map[string]any:
		if text, ok := typed["text"].(string); ok {
			return text
		}
		name, _ := typed["file"].(string)
		return name
	default:
		return model.OptionValueString(typed)
	}
}

var patternCache sync.Map

func compilePattern(pattern string) *regexp.Regexp {
	if cached, ok := patternCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	patternCache.Store(pattern, re)
	return re
}
