package visibility

import "github.com/goliatone/go-jobform/pkg/model"

// Evaluator decides whether an expression rule holds for a field given the
// current form snapshot.
type Evaluator interface {
	Eval(field, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the plain form values
// of the snapshot, States the visibility states of the previous pass, and
// Extras any caller supplied data (feature flags, user roles).
type Context struct {
	Values map[string]any
	States map[string]model.State
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(field, rule string, ctx Context) (bool, error) {
	return fn(field, rule, ctx)
}
