package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-jobform/pkg/formstate"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/params"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/widgets"
	"github.com/goliatone/go-jobform/pkg/workspace"
)

// ErrNoRepository reports a session configured without a repository.
var ErrNoRepository = errors.New("session: repository is required")

// Kind classifies the status shown to the user.
type Kind string

const (
	KindIdle          Kind = "idle"
	KindLoading       Kind = "loading"
	KindReady         Kind = "ready"
	KindConfiguration Kind = "configuration"
	KindFetch         Kind = "fetch"
	KindValidation    Kind = "validation"
)

// Status is the single message a surface should display. Only the highest
// priority problem is reported: configuration, then fetch, then validation.
type Status struct {
	Kind      Kind   `json:"kind"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Invalid   int    `json:"invalid,omitempty"`
	Loading   bool   `json:"loading"`
	Retryable bool   `json:"retryable"`
}

// Session binds a workspace loader to a form manager. Selecting a
// workspace clears the form and accepted parameters initialise it.
type Session struct {
	repository string
	loader     *workspace.Loader
	latch      *workspace.Latch
	form       *formstate.Manager
	sink       formstate.Sink
	viewOpts   []render.ViewOption
	logger     *slog.Logger

	builderOpts []model.BuilderOption
	minVisible  time.Duration
	onChange    func(Status)
}

// Option configures a Session.
type Option func(*Session)

// WithBuilderOptions forwards options to the field builder. The widget
// decorator is always applied.
func WithBuilderOptions(opts ...model.BuilderOption) Option {
	return func(s *Session) {
		s.builderOpts = append(s.builderOpts, opts...)
	}
}

// WithSink sets the default submission sink.
func WithSink(sink formstate.Sink) Option {
	return func(s *Session) {
		s.sink = sink
	}
}

// WithViewOptions forwards options to render.NewView.
func WithViewOptions(opts ...render.ViewOption) Option {
	return func(s *Session) {
		s.viewOpts = append(s.viewOpts, opts...)
	}
}

// WithMinVisible sets how long the loading indicator stays up.
func WithMinVisible(d time.Duration) Option {
	return func(s *Session) {
		s.minVisible = d
	}
}

// WithStatusCallback registers fn to run after every loader transition.
func WithStatusCallback(fn func(Status)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithLogger sets the session logger. It is shared with the loader and the
// form manager.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a session reading workspaces of repository through client.
func New(client workspace.Client, repository string, opts ...Option) *Session {
	s := &Session{
		repository: strings.TrimSpace(repository),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	registry := widgets.NewRegistry()
	builderOpts := append(append([]model.BuilderOption(nil), s.builderOpts...), model.WithDecorators(registry))
	s.form = formstate.New(
		formstate.WithBuilder(model.NewBuilder(builderOpts...)),
		formstate.WithLogger(s.logger),
	)
	s.viewOpts = append([]render.ViewOption{render.WithControls(registry)}, s.viewOpts...)
	s.latch = workspace.NewLatch(s.minVisible)
	s.loader = workspace.NewLoader(client,
		workspace.WithLatch(s.latch),
		workspace.WithLogger(s.logger),
		workspace.WithSelectHandler(func(string) { s.form.Reset() }),
		workspace.WithParametersHandler(s.applyParameters),
		workspace.WithStateCallback(func(workspace.State) {
			if s.onChange != nil {
				s.onChange(s.Status())
			}
		}),
	)
	return s
}

func (s *Session) applyParameters(name string, detail params.Detail) error {
	changed, err := s.form.Sync(name, detail.Parameters)
	if err != nil {
		return err
	}
	s.logger.Debug("form synced", "workspace", name, "rebuilt", changed, "parameters", len(detail.Parameters))
	return nil
}

// Repository reports the repository the session reads from.
func (s *Session) Repository() string {
	return s.repository
}

// LoadWorkspaces refreshes the workspace list.
func (s *Session) LoadWorkspaces(ctx context.Context) error {
	if s.repository == "" {
		return ErrNoRepository
	}
	return s.loader.LoadWorkspaces(ctx, s.repository)
}

// Workspaces returns the last loaded workspace list.
func (s *Session) Workspaces() []params.WorkspaceSummary {
	return s.loader.State().Workspaces
}

// Select makes name the active workspace and loads its form.
func (s *Session) Select(ctx context.Context, name string) error {
	if s.repository == "" {
		return ErrNoRepository
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("session: workspace name is required")
	}
	return s.loader.SelectWorkspace(ctx, s.repository, name)
}

// Retry repeats the last failed fetch.
func (s *Session) Retry(ctx context.Context) error {
	return s.loader.Retry(ctx)
}

// Detail returns the accepted parameters of the active workspace.
func (s *Session) Detail() (params.Detail, bool) {
	state := s.loader.State()
	if state.Detail == nil {
		return params.Detail{}, false
	}
	return *state.Detail, true
}

// View renders the current form for a surface.
func (s *Session) View() render.View {
	return render.NewView(s.form.Snapshot(), s.viewOpts...)
}

// Update applies one field change and returns the settled view. It has the
// render.ChangeFunc signature so renderers can call it directly.
func (s *Session) Update(name string, value any) (render.View, error) {
	if err := s.form.UpdateField(name, value); err != nil {
		return render.View{}, err
	}
	return s.View(), nil
}

// SetGeometry stores the drawn area and returns the settled view.
func (s *Session) SetGeometry(geometry string) render.View {
	s.form.SetGeometry(geometry)
	return s.View()
}

// Payload assembles the current submission without sending it.
func (s *Session) Payload() (formstate.Payload, error) {
	return s.form.Payload()
}

// Submit validates the form and hands the payload to sink, or to the
// default sink when sink is nil.
func (s *Session) Submit(sink formstate.Sink) (formstate.Payload, error) {
	if sink == nil {
		sink = s.sink
	}
	return s.form.Submit(sink)
}

// Status reports the highest priority condition of the session.
func (s *Session) Status() Status {
	state := s.loader.State()
	busy := state.LoadingWorkspaces || state.LoadingParameters
	loading := busy || s.latch.Visible()

	if s.repository == "" {
		return Status{
			Kind:    KindConfiguration,
			Code:    workspace.CodeConfiguration,
			Message: "No repository configured",
			Loading: loading,
		}
	}
	if err := state.Err; err != nil {
		if err.Code == workspace.CodeConfiguration {
			return Status{
				Kind:    KindConfiguration,
				Code:    err.Code,
				Message: err.Error(),
				Loading: loading,
			}
		}
		return Status{
			Kind:      KindFetch,
			Code:      err.Code,
			Message:   err.Error(),
			Loading:   loading,
			Retryable: true,
		}
	}

	snap := s.form.Snapshot()
	if snap.Initialized && !snap.Valid {
		count := len(snap.Errors)
		msg := fmt.Sprintf("%d fields need attention", count)
		if count == 1 {
			msg = "1 field needs attention"
		}
		return Status{Kind: KindValidation, Message: msg, Invalid: count, Loading: loading}
	}

	switch {
	case busy:
		return Status{Kind: KindLoading, Loading: true}
	case snap.Initialized:
		return Status{Kind: KindReady, Loading: loading}
	default:
		return Status{Kind: KindIdle, Loading: loading}
	}
}

// Close cancels in-flight fetches.
func (s *Session) Close() {
	s.loader.Close()
}
