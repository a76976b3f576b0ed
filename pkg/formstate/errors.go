package formstate

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized reports an operation on a form with no loaded
	// parameters. It signals an integration error, not a user error.
	ErrNotInitialized = errors.New("formstate: form is not initialized")
	// ErrUnknownField reports an update for a name the form does not define.
	ErrUnknownField = errors.New("formstate: unknown field")
	// ErrNoSink reports a submit without a submission sink.
	ErrNoSink = errors.New("formstate: submission sink is required")
)

// ValidationError blocks a submission. It carries only the number of
// failing fields; per-field codes are available from Snapshot.
type ValidationError struct {
	Count int
}

func (e *ValidationError) Error() string {
	if e.Count == 1 {
		return "formstate: 1 field failed validation"
	}
	return fmt.Sprintf("formstate: %d fields failed validation", e.Count)
}
