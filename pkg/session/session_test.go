package session_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jobform/pkg/formstate"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/session"
	"github.com/goliatone/go-jobform/pkg/widgets"
	"github.com/goliatone/go-jobform/pkg/workspace"
)

const bufferFixture = `
item:
  title: Buffer features
parameters:
  - name: DISTANCE
    description: Buffer distance
    type: INTEGER
    minimum: 1
  - name: CLEAN
    description: Clean geometry
    type: CHECKBOX
    defaultValue: "false"
`

const brokenFixture = `
parameters:
  - name: A
    type: TEXT
  - name: A
    type: TEXT
`

func fixtures() fstest.MapFS {
	return fstest.MapFS{
		"samples/buffer.yaml": {Data: []byte(bufferFixture)},
		"samples/broken.yaml": {Data: []byte(brokenFixture)},
	}
}

func TestSelectInitialisesForm(t *testing.T) {
	t.Parallel()

	s := session.New(workspace.NewFSClient(fixtures()), "samples")
	defer s.Close()

	if got := s.Status().Kind; got != session.KindIdle {
		t.Fatalf("expected idle before selection, got %q", got)
	}
	if err := s.LoadWorkspaces(context.Background()); err != nil {
		t.Fatalf("LoadWorkspaces: %v", err)
	}
	var names []string
	for _, ws := range s.Workspaces() {
		names = append(names, ws.Name)
	}
	if diff := cmp.Diff([]string{"broken", "buffer"}, names); diff != "" {
		t.Fatalf("workspaces mismatch (-want +got):\n%s", diff)
	}

	if err := s.Select(context.Background(), "buffer"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	view := s.View()
	if view.Workspace != "buffer" || len(view.Fields) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}
	clean, _ := view.Field("CLEAN")
	if clean.Control != widgets.WidgetToggle {
		t.Fatalf("expected toggle control, got %q", clean.Control)
	}

	status := s.Status()
	if status.Kind != session.KindValidation || status.Invalid != 1 {
		t.Fatalf("expected one invalid field, got %+v", status)
	}

	if _, err := s.Update("DISTANCE", 25); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := s.Status().Kind; got != session.KindReady {
		t.Fatalf("expected ready after fix, got %q", got)
	}
}

func TestConfigurationErrorOutranksEverything(t *testing.T) {
	t.Parallel()

	s := session.New(workspace.NewFSClient(fixtures()), "samples")
	defer s.Close()

	err := s.Select(context.Background(), "broken")
	var fetchErr *workspace.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Code != workspace.CodeConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}

	status := s.Status()
	if status.Kind != session.KindConfiguration || status.Retryable {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestMissingRepositoryIsConfiguration(t *testing.T) {
	t.Parallel()

	s := session.New(workspace.NewFSClient(fixtures()), "  ")
	defer s.Close()

	if err := s.LoadWorkspaces(context.Background()); !errors.Is(err, session.ErrNoRepository) {
		t.Fatalf("expected ErrNoRepository, got %v", err)
	}
	if got := s.Status().Kind; got != session.KindConfiguration {
		t.Fatalf("expected configuration status, got %q", got)
	}
}

func TestFetchErrorOutranksValidation(t *testing.T) {
	t.Parallel()

	fsys := fixtures()
	s := session.New(workspace.NewFSClient(fsys), "samples")
	defer s.Close()

	if err := s.Select(context.Background(), "buffer"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := s.Status().Kind; got != session.KindValidation {
		t.Fatalf("expected validation status, got %q", got)
	}

	delete(fsys, "samples/buffer.yaml")
	delete(fsys, "samples/broken.yaml")
	if err := s.LoadWorkspaces(context.Background()); err == nil {
		t.Fatalf("expected list failure")
	}

	status := s.Status()
	if status.Kind != session.KindFetch || status.Code != workspace.CodeNotFound || !status.Retryable {
		t.Fatalf("expected retryable fetch status, got %+v", status)
	}

	fsys["samples/buffer.yaml"] = &fstest.MapFile{Data: []byte(bufferFixture)}
	if err := s.Retry(context.Background()); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if got := s.Status().Kind; got != session.KindValidation {
		t.Fatalf("expected validation after retry, got %q", got)
	}
}

func TestSubmitUsesDefaultSink(t *testing.T) {
	t.Parallel()

	var got []formstate.Payload
	sink := formstate.SinkFunc(func(p formstate.Payload) { got = append(got, p) })
	s := session.New(workspace.NewFSClient(fixtures()), "samples",
		session.WithSink(sink),
		session.WithBuilderOptions(model.WithRemoteDataset(true)),
	)
	defer s.Close()

	if err := s.Select(context.Background(), "buffer"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	var verr *formstate.ValidationError
	if _, err := s.Submit(nil); !errors.As(err, &verr) || verr.Count != 1 {
		t.Fatalf("expected blocked submission, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("sink must not be called for an invalid form")
	}

	if _, err := s.Update("DISTANCE", 5); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := s.Submit(nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(got) != 1 || got[0].Type != "buffer" || got[0].Data["DISTANCE"] != float64(5) {
		t.Fatalf("unexpected payloads %+v", got)
	}
}

func TestSubmitWithoutSink(t *testing.T) {
	t.Parallel()

	s := session.New(workspace.NewFSClient(fixtures()), "samples")
	defer s.Close()

	if _, err := s.Submit(nil); !errors.Is(err, formstate.ErrNoSink) {
		t.Fatalf("expected ErrNoSink, got %v", err)
	}
}

func TestStatusCallbackFollowsLoader(t *testing.T) {
	t.Parallel()

	var kinds []session.Kind
	s := session.New(workspace.NewFSClient(fixtures()), "samples",
		session.WithStatusCallback(func(st session.Status) { kinds = append(kinds, st.Kind) }),
	)
	defer s.Close()

	if err := s.Select(context.Background(), "buffer"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(kinds) == 0 || kinds[len(kinds)-1] != session.KindValidation {
		t.Fatalf("unexpected status sequence %v", kinds)
	}
}
