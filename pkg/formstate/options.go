package formstate

import (
	"log/slog"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/validation"
	"github.com/goliatone/go-jobform/pkg/visibility"
)

// Option customises a Manager.
type Option func(*Manager)

// WithBuilder overrides the field configuration builder.
func WithBuilder(builder model.Builder) Option {
	return func(m *Manager) {
		if builder != nil {
			m.builder = builder
		}
	}
}

// WithVisibility overrides the visibility engine.
func WithVisibility(engine *visibility.Engine) Option {
	return func(m *Manager) {
		if engine != nil {
			m.engine = engine
		}
	}
}

// WithValidator overrides the validator.
func WithValidator(validator *validation.Validator) Option {
	return func(m *Manager) {
		if validator != nil {
			m.validator = validator
		}
	}
}

// WithLogger sets the logger. Only field names and counts are logged.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}
