package workspace

import (
	"context"
	"errors"
	"io/fs"

	"github.com/goliatone/go-jobform/pkg/params"
)

// Client fetches repository listings and workspace parameters. Both calls
// must honour ctx cancellation.
type Client interface {
	FetchWorkspaceList(ctx context.Context, repository string) ([]params.WorkspaceSummary, error)
	FetchParameters(ctx context.Context, repository, workspace string) (params.Detail, error)
}

// Error codes exposed through State.Err.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeFetchFailed   = "FETCH_FAILED"
	CodeConfiguration = "CONFIGURATION"
)

// ErrNotFound reports a missing repository or workspace.
var ErrNotFound = errors.New("workspace: not found")

// ErrClosed reports a call on a closed Loader.
var ErrClosed = errors.New("workspace: loader is closed")

// FetchError is the retryable failure recorded in State.
type FetchError struct {
	Op        string
	Workspace string
	Code      string
	Err       error
}

func (e *FetchError) Error() string {
	if e.Workspace != "" {
		return "workspace: " + e.Op + " " + e.Workspace + ": " + e.Err.Error()
	}
	return "workspace: " + e.Op + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// errorCode extracts a stable code from a client error. Clients can expose
// their own codes through an ErrorCode method.
func errorCode(err error) string {
	var coded interface{ ErrorCode() string }
	switch {
	case errors.As(err, &coded):
		return coded.ErrorCode()
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return CodeNotFound
	default:
		return CodeFetchFailed
	}
}
