// Package jobform turns the published parameters of a remote processing
// workspace into a live, validated job form. The root package offers
// shortcuts over the pkg/ packages for the common wiring.
package jobform

import (
	"context"
	"os"

	"github.com/goliatone/go-jobform/pkg/fmeflow"
	"github.com/goliatone/go-jobform/pkg/formstate"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/renderers/tui"
	"github.com/goliatone/go-jobform/pkg/session"
	"github.com/goliatone/go-jobform/pkg/workspace"
)

// Session aliases session.Session for callers that only import the root
// package.
type Session = session.Session

// Status aliases session.Status.
type Status = session.Status

// View aliases render.View.
type View = render.View

// Payload aliases formstate.Payload.
type Payload = formstate.Payload

// NewRemoteClient returns a workspace client for the FME Flow server at
// baseURL.
func NewRemoteClient(baseURL, token string, options ...fmeflow.Option) (*fmeflow.Client, error) {
	return fmeflow.New(baseURL, token, options...)
}

// NewFixtureClient returns a workspace client reading fixture files from
// dir, laid out as <repository>/<workspace>.{yaml,yml,json}.
func NewFixtureClient(dir string) *workspace.FSClient {
	return workspace.NewFSClient(os.DirFS(dir))
}

// NewSampleClient returns a workspace client over the bundled sample
// repository.
func NewSampleClient() *workspace.FSClient {
	return workspace.NewFSClient(SampleFixturesFS())
}

// NewSession exposes the session constructor from the top-level module.
func NewSession(client workspace.Client, repository string, options ...session.Option) *Session {
	return session.New(client, repository, options...)
}

// OpenForm creates a session and selects name. The session is returned even
// when loading fails so callers can inspect Status and Retry.
func OpenForm(ctx context.Context, client workspace.Client, repository, name string, options ...session.Option) (*Session, error) {
	sess := session.New(client, repository, options...)
	if err := sess.Select(ctx, name); err != nil {
		return sess, err
	}
	return sess, nil
}

// RunTerminal walks the session's form with the terminal renderer.
func RunTerminal(ctx context.Context, sess *Session, options ...tui.Option) error {
	return tui.New(options...).Render(ctx, sess.View(), sess.Update)
}
