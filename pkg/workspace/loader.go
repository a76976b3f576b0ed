package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-jobform/pkg/params"
)

// Latch sources used by the Loader.
const (
	SourceWorkspaces = "workspaces"
	SourceParameters = "parameters"
)

// State is a snapshot of what the Loader has accepted so far.
type State struct {
	Repository string                    `json:"repository,omitempty"`
	Workspaces []params.WorkspaceSummary `json:"workspaces,omitempty"`
	// Workspace is the most recently selected workspace; Detail belongs to
	// it once its fetch has completed.
	Workspace string         `json:"workspace,omitempty"`
	Detail    *params.Detail `json:"detail,omitempty"`

	LoadingWorkspaces bool `json:"loadingWorkspaces"`
	LoadingParameters bool `json:"loadingParameters"`

	Err       *FetchError `json:"-"`
	RequestID string      `json:"requestId,omitempty"`
}

// ParametersHandler receives accepted parameter results. It runs under the
// loader lock so it completes before any newer result can apply.
type ParametersHandler func(workspace string, detail params.Detail) error

// request tracks one in-flight fetch of a logical resource.
type request struct {
	seq    uint64
	id     string
	cancel context.CancelFunc
}

// Loader fetches the workspace list and workspace parameters, discarding
// results that were superseded by a newer request or arrived after Close.
type Loader struct {
	client Client
	logger *slog.Logger
	latch  *Latch

	onParameters ParametersHandler
	onSelect     func(workspace string)
	onChange     func(State)

	mu     sync.Mutex
	seq    uint64
	closed bool
	state  State

	list   *request
	detail *request
	retry  func(ctx context.Context) error
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithParametersHandler registers the consumer of accepted parameter
// results, typically formstate.Manager.Sync.
func WithParametersHandler(fn ParametersHandler) LoaderOption {
	return func(l *Loader) {
		l.onParameters = fn
	}
}

// WithSelectHandler registers a callback run under the loader lock as soon
// as a new workspace is selected, before its fetch starts. Forms use it to
// reset so no stale state survives a workspace switch.
func WithSelectHandler(fn func(workspace string)) LoaderOption {
	return func(l *Loader) {
		l.onSelect = fn
	}
}

// WithStateCallback registers fn to observe every accepted state change.
func WithStateCallback(fn func(State)) LoaderOption {
	return func(l *Loader) {
		l.onChange = fn
	}
}

// WithLatch routes loading flags through latch.
func WithLatch(latch *Latch) LoaderOption {
	return func(l *Loader) {
		l.latch = latch
	}
}

// WithLogger sets the loader logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader constructs a Loader around client.
func NewLoader(client Client, opts ...LoaderOption) *Loader {
	l := &Loader{
		client: client,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// State returns a copy of the current state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// LoadWorkspaces fetches the workspace list of repository. A result that is
// superseded or arrives after Close is dropped and nil is returned.
func (l *Loader) LoadWorkspaces(ctx context.Context, repository string) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	ctx, req := l.beginLocked(ctx, &l.list)
	l.state.Repository = repository
	l.state.LoadingWorkspaces = true
	l.setLoadingLocked(SourceWorkspaces, true)
	l.mu.Unlock()

	l.logger.Debug("loading workspaces", "repository", repository, "request_id", req.id)
	items, err := l.client.FetchWorkspaceList(ctx, repository)

	l.mu.Lock()
	if !l.currentLocked(l.list, req) {
		l.mu.Unlock()
		l.logger.Debug("discarding stale workspace list", "request_id", req.id)
		return nil
	}
	l.finishLocked(&l.list, req)
	l.state.LoadingWorkspaces = false
	l.setLoadingLocked(SourceWorkspaces, false)

	if err != nil {
		if isCancellation(ctx, err) {
			l.mu.Unlock()
			return nil
		}
		fetchErr := &FetchError{Op: "list workspaces", Code: errorCode(err), Err: err}
		l.state.Err = fetchErr
		l.retry = func(ctx context.Context) error { return l.LoadWorkspaces(ctx, repository) }
		state := l.snapshotLocked()
		l.mu.Unlock()
		l.logger.Warn("workspace list failed", "repository", repository, "code", fetchErr.Code, "error", err)
		l.notify(state)
		return fetchErr
	}

	l.state.Workspaces = append([]params.WorkspaceSummary(nil), items...)
	l.clearErrLocked("list workspaces")
	state := l.snapshotLocked()
	l.mu.Unlock()

	l.logger.Debug("workspaces loaded", "repository", repository, "count", len(items))
	l.notify(state)
	return nil
}

// SelectWorkspace makes name the current workspace and fetches its
// parameters. Selecting cancels any in-flight parameter fetch. Accepted
// results are handed to the parameters handler before the lock is released.
func (l *Loader) SelectWorkspace(ctx context.Context, repository, name string) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	ctx, req := l.beginLocked(ctx, &l.detail)
	changed := l.state.Workspace != name || l.state.Repository != repository
	l.state.Repository = repository
	l.state.Workspace = name
	l.state.LoadingParameters = true
	l.state.RequestID = req.id
	if changed {
		// Parameter identity is not stable across workspaces.
		l.state.Detail = nil
		if l.onSelect != nil {
			l.onSelect(name)
		}
	}
	l.setLoadingLocked(SourceParameters, true)
	l.mu.Unlock()

	l.logger.Debug("loading parameters", "repository", repository, "workspace", name, "request_id", req.id)
	detail, err := l.client.FetchParameters(ctx, repository, name)

	l.mu.Lock()
	if !l.currentLocked(l.detail, req) {
		l.mu.Unlock()
		l.logger.Debug("discarding stale parameters", "workspace", name, "request_id", req.id)
		return nil
	}
	l.finishLocked(&l.detail, req)
	l.state.LoadingParameters = false
	l.setLoadingLocked(SourceParameters, false)

	if err != nil {
		if isCancellation(ctx, err) {
			l.mu.Unlock()
			return nil
		}
		fetchErr := &FetchError{Op: "fetch parameters", Workspace: name, Code: errorCode(err), Err: err}
		l.state.Err = fetchErr
		l.retry = func(ctx context.Context) error { return l.SelectWorkspace(ctx, repository, name) }
		state := l.snapshotLocked()
		l.mu.Unlock()
		l.logger.Warn("parameter fetch failed", "workspace", name, "code", fetchErr.Code, "error", err)
		l.notify(state)
		return fetchErr
	}

	if l.onParameters != nil {
		if herr := l.onParameters(name, detail); herr != nil {
			fetchErr := &FetchError{Op: "apply parameters", Workspace: name, Code: CodeConfiguration, Err: herr}
			l.state.Err = fetchErr
			l.retry = nil
			state := l.snapshotLocked()
			l.mu.Unlock()
			l.logger.Error("parameters rejected", "workspace", name, "error", herr)
			l.notify(state)
			return fetchErr
		}
	}

	accepted := detail
	l.state.Detail = &accepted
	l.clearErrLocked("")
	state := l.snapshotLocked()
	l.mu.Unlock()

	l.logger.Debug("parameters loaded", "workspace", name, "count", len(detail.Parameters))
	l.notify(state)
	return nil
}

// Retry repeats the last failed fetch. It is a no-op when nothing failed.
func (l *Loader) Retry(ctx context.Context) error {
	l.mu.Lock()
	retry := l.retry
	l.mu.Unlock()
	if retry == nil {
		return nil
	}
	return retry(ctx)
}

// Close cancels in-flight fetches. Results arriving afterwards are dropped.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for _, req := range []*request{l.list, l.detail} {
		if req != nil {
			req.cancel()
		}
	}
	l.list, l.detail = nil, nil
	if l.latch != nil {
		l.latch.Set(SourceWorkspaces, false)
		l.latch.Set(SourceParameters, false)
	}
}

// beginLocked supersedes the in-flight request in slot and starts a new one.
func (l *Loader) beginLocked(parent context.Context, slot **request) (context.Context, *request) {
	if parent == nil {
		parent = context.Background()
	}
	if *slot != nil {
		(*slot).cancel()
	}
	l.seq++
	ctx, cancel := context.WithCancel(parent)
	req := &request{seq: l.seq, id: uuid.NewString(), cancel: cancel}
	*slot = req
	return ctx, req
}

func (l *Loader) currentLocked(slot, req *request) bool {
	return !l.closed && slot != nil && slot.seq == req.seq
}

func (l *Loader) finishLocked(slot **request, req *request) {
	req.cancel()
	*slot = nil
}

func (l *Loader) clearErrLocked(op string) {
	if l.state.Err == nil {
		return
	}
	if op == "" || l.state.Err.Op == op {
		l.state.Err = nil
		l.retry = nil
	}
}

func (l *Loader) setLoadingLocked(source string, loading bool) {
	if l.latch != nil {
		l.latch.Set(source, loading)
	}
}

func (l *Loader) snapshotLocked() State {
	out := l.state
	out.Workspaces = append([]params.WorkspaceSummary(nil), l.state.Workspaces...)
	if l.state.Detail != nil {
		detail := *l.state.Detail
		detail.Parameters = append([]params.Descriptor(nil), detail.Parameters...)
		out.Detail = &detail
	}
	return out
}

func (l *Loader) notify(state State) {
	if l.onChange != nil {
		l.onChange(state)
	}
}

func isCancellation(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || (ctx.Err() != nil && errors.Is(err, ctx.Err()))
}

