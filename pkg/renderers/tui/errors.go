package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrIncomplete is returned when the form is still invalid after the
	// configured number of correction passes.
	ErrIncomplete = errors.New("tui: form still has invalid fields")
	// ErrNoChangeHandler is returned when Render is called without onChange.
	ErrNoChangeHandler = errors.New("tui: change handler is required")
)
