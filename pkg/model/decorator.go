package model

// Decorator enriches built field configurations with additional metadata
// before they reach the form state (for example, resolved control names).
type Decorator interface {
	Decorate(fields []Field) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(fields []Field) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(fields []Field) error {
	return fn(fields)
}
