package render

import "context"

// ChangeFunc applies a value edit and returns the view rebuilt from the
// settled form state.
type ChangeFunc func(name string, value any) (View, error)

// Renderer presents a form view and reports edits through onChange. Renderers
// never mutate form state directly.
type Renderer interface {
	Name() string
	Render(ctx context.Context, view View, onChange ChangeFunc) error
}
