package visibility

import (
	"io"
	"log/slog"
	"sort"

	"github.com/goliatone/go-jobform/pkg/model"
)

// Engine computes field visibility states from declarative rules.
type Engine struct {
	evaluator Evaluator
	extras    map[string]any
	logger    *slog.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithEvaluator sets the evaluator used for expression rules. Without one,
// expression rules leave the field visible.
func WithEvaluator(evaluator Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = evaluator
	}
}

// WithExtras exposes caller data to expression rules.
func WithExtras(extras map[string]any) Option {
	return func(e *Engine) {
		e.extras = extras
	}
}

// WithLogger sets the logger used to report rule failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Evaluate computes the visibility state of every field against a snapshot
// of values. Rules are evaluated in declaration order but only read the
// snapshot and the previous pass, so the outcome does not depend on order.
// States already annotated on the fields are kept when they are a fixpoint.
// Otherwise passes start from all fields visible and repeat until the states
// stop changing; fields caught in a cycle that never settles are hidden.
func (e *Engine) Evaluate(fields []model.Field, values model.Values) map[string]model.State {
	raw := values.Raw()
	annotated := make(map[string]model.State, len(fields))
	visible := make(map[string]model.State, len(fields))
	for _, field := range fields {
		state := field.VisibilityState
		if state == "" {
			state = model.StateVisibleEnabled
		}
		annotated[field.Name] = state
		visible[field.Name] = model.StateVisibleEnabled
	}
	if next := e.pass(fields, values, raw, annotated, nil); sameStates(annotated, next) {
		return next
	}

	pinned := make(map[string]bool)
	for {
		states, unstable := e.settle(fields, values, raw, visible, pinned)
		if len(unstable) == 0 {
			return states
		}
		e.logger.Warn("visibility rules do not settle, hiding fields", "fields", unstable)
		for _, name := range unstable {
			pinned[name] = true
		}
	}
}

// settle repeats passes from start until the states stop changing. When they
// keep changing it reports the fields that still flip after the passes any
// acyclic rule set needs.
func (e *Engine) settle(fields []model.Field, values model.Values, raw map[string]any, start map[string]model.State, pinned map[string]bool) (map[string]model.State, []string) {
	limit := len(fields) + 1
	flipping := make(map[string]bool)
	prev := start
	for pass := 0; pass < 2*limit; pass++ {
		next := e.pass(fields, values, raw, prev, pinned)
		if sameStates(prev, next) {
			return next, nil
		}
		if pass >= limit {
			for name, state := range next {
				if prev[name] != state {
					flipping[name] = true
				}
			}
		}
		prev = next
	}

	names := make([]string, 0, len(flipping))
	for name := range flipping {
		names = append(names, name)
	}
	sort.Strings(names)
	return prev, names
}

func (e *Engine) pass(fields []model.Field, values model.Values, raw map[string]any, prev map[string]model.State, pinned map[string]bool) map[string]model.State {
	env := conditionEnv{values: values, states: prev}
	next := make(map[string]model.State, len(fields))
	for _, field := range fields {
		if pinned[field.Name] {
			next[field.Name] = model.StateHiddenDisabled
			continue
		}
		next[field.Name] = e.stateFor(field, env, raw)
	}
	return next
}

func (e *Engine) stateFor(field model.Field, env conditionEnv, raw map[string]any) model.State {
	rule := field.Visibility
	if rule == nil {
		return model.StateVisibleEnabled
	}

	if rule.Expr != "" && len(rule.If) == 0 {
		if e.evaluator == nil {
			return model.StateVisibleEnabled
		}
		ok, err := e.evaluator.Eval(field.Name, rule.Expr, Context{
			Values: raw,
			States: env.states,
			Extras: e.extras,
		})
		if err != nil {
			e.logger.Debug("visibility expression failed", "field", field.Name, "error", err)
			return model.StateVisibleEnabled
		}
		if ok {
			return model.StateVisibleEnabled
		}
		return elseState(rule)
	}

	for _, clause := range rule.If {
		if env.holds(clause.When) {
			if clause.Then == "" {
				return model.StateVisibleEnabled
			}
			return clause.Then
		}
	}
	return elseState(rule)
}

func elseState(rule *model.Rule) model.State {
	if rule.Else == "" {
		return model.StateHiddenDisabled
	}
	return rule.Else
}

// Outcome reports the side effects of Apply.
type Outcome struct {
	States map[string]model.State
	// Cleared lists fields whose value or file was removed because they
	// became hidden.
	Cleared []string
}

// Apply evaluates visibility, annotates each field's VisibilityState in place
// and enforces the consequences: hidden fields lose their value and file,
// and fields that are not visible lose their error. Clearing a value can
// change what other rules see, so evaluation repeats until nothing more is
// cleared. Any of values, files and errs may be nil.
func (e *Engine) Apply(fields []model.Field, values model.Values, files map[string]model.File, errs map[string]string) Outcome {
	out := Outcome{}
	for round := 0; round <= len(fields); round++ {
		states := e.Evaluate(fields, values)
		for i := range fields {
			fields[i].VisibilityState = states[fields[i].Name]
		}
		out.States = states

		cleared := false
		for _, field := range fields {
			state := states[field.Name]
			if !state.Visible() {
				delete(errs, field.Name)
			}
			if state != model.StateHiddenDisabled {
				continue
			}
			_, hasValue := values[field.Name]
			_, hasFile := files[field.Name]
			if hasValue || hasFile {
				delete(values, field.Name)
				delete(files, field.Name)
				out.Cleared = append(out.Cleared, field.Name)
				cleared = true
			}
		}
		if !cleared {
			return out
		}
	}
	return out
}

func sameStates(a, b map[string]model.State) bool {
	if len(a) != len(b) {
		return false
	}
	for name, state := range a {
		if b[name] != state {
			return false
		}
	}
	return true
}
