package jobform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jobform"
	"github.com/goliatone/go-jobform/pkg/render"
)

func TestSampleWorkspacesLoad(t *testing.T) {
	sess := jobform.NewSession(jobform.NewSampleClient(), jobform.SampleRepository)
	defer sess.Close()

	if err := sess.LoadWorkspaces(context.Background()); err != nil {
		t.Fatalf("LoadWorkspaces: %v", err)
	}
	var names []string
	for _, ws := range sess.Workspaces() {
		names = append(names, ws.Name)
	}
	if diff := cmp.Diff([]string{"buffer", "convert", "report"}, names); diff != "" {
		t.Fatalf("sample workspaces mismatch (-want +got):\n%s", diff)
	}

	for _, name := range names {
		if err := sess.Select(context.Background(), name); err != nil {
			t.Fatalf("Select %s: %v", name, err)
		}
		if view := sess.View(); view.Workspace != name || len(view.Fields) == 0 {
			t.Fatalf("%s: unexpected view %+v", name, view)
		}
	}
}

func TestOpenFormRevealsDependentField(t *testing.T) {
	sess, err := jobform.OpenForm(context.Background(), jobform.NewSampleClient(), jobform.SampleRepository, "buffer")
	if err != nil {
		t.Fatalf("OpenForm: %v", err)
	}
	defer sess.Close()

	if _, ok := sess.View().Field("DISSOLVE_ATTR"); ok {
		t.Fatalf("dissolve attribute should start hidden")
	}
	view, err := sess.Update("DISSOLVE", true)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, ok := view.Field("DISSOLVE_ATTR"); !ok {
		t.Fatalf("dissolve attribute should be revealed")
	}

	payload, err := sess.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if payload.Data["DISSOLVE"] != "YES" {
		t.Fatalf("expected toggle wire value YES, got %#v", payload.Data["DISSOLVE"])
	}
}

func TestOpenFormReportsMissingWorkspace(t *testing.T) {
	sess, err := jobform.OpenForm(context.Background(), jobform.NewSampleClient(), jobform.SampleRepository, "ghost")
	if err == nil {
		t.Fatalf("expected an error for a missing workspace")
	}
	defer sess.Close()
	if got := sess.Status(); !got.Retryable {
		t.Fatalf("missing workspace should be retryable, got %+v", got)
	}
}

func TestDefaultCatalog(t *testing.T) {
	catalog, err := jobform.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	if diff := cmp.Diff([]string{"en", "fr"}, catalog.Locales()); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}

	cases := []struct {
		locale, key string
		args        []any
		want        string
	}{
		{locale: "fr-CA", key: "validation.belowMin", args: []any{"5"}, want: "Doit être au moins 5"},
		{locale: "fr", key: "uploadFile", want: "Téléverser un jeu de données"},
		{locale: "de", key: "validation.required", want: "This field is required"},
		{locale: "en", key: "validation.aboveMaxExclusive", args: []any{"10"}, want: "Must be less than 10"},
	}
	for _, tc := range cases {
		got, err := catalog.Translate(tc.locale, tc.key, tc.args...)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.locale, tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("%s/%s: want %q, got %q", tc.locale, tc.key, tc.want, got)
		}
	}

	if _, err := catalog.Translate("fr", "nope"); !errors.Is(err, render.ErrMissingMessage) {
		t.Fatalf("expected ErrMissingMessage, got %v", err)
	}
}

func TestCatalogLocalizesView(t *testing.T) {
	catalog, err := jobform.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	sess, err := jobform.OpenForm(context.Background(), jobform.NewSampleClient(), jobform.SampleRepository, "report")
	if err != nil {
		t.Fatalf("OpenForm: %v", err)
	}
	defer sess.Close()

	if _, err := sess.Update("MAX_ROWS", 0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	view := sess.View()
	render.Localize(&view, "fr", catalog, nil)

	rows, _ := view.Field("MAX_ROWS")
	if rows.Message != "Doit être au moins 1" {
		t.Fatalf("unexpected localized message %q", rows.Message)
	}
}
