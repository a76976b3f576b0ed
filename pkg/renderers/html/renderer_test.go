package html_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/renderers/html"
	"github.com/goliatone/go-jobform/pkg/widgets"
)

func floatPtr(v float64) *float64 { return &v }

func sampleView() render.View {
	return render.View{
		Workspace: "buffer",
		Valid:     false,
		Errors:    []string{"DISTANCE"},
		Fields: []render.FieldView{
			{
				Field:   model.Field{Name: "INTRO", Label: `Read <b>carefully</b><script>alert(1)</script>`, Type: model.FieldTypeMessage},
				Control: widgets.WidgetMessage,
			},
			{
				Field:   model.Field{Name: "DISTANCE", Label: "Distance", Type: model.FieldTypeNumber, Required: true, Min: floatPtr(1), Max: floatPtr(500)},
				Control: widgets.WidgetNumber,
				Value:   float64(0),
				Error:   "belowMin",
				Message: "Must be at least 1",
			},
			{
				Field: model.Field{Name: "UNITS", Label: "Units", Type: model.FieldTypeSelect, Options: []model.Option{
					{Value: "m", Label: "Metres"},
					{Value: "km", Label: "Kilometres"},
				}},
				Control: widgets.WidgetSelect,
				Value:   "km",
			},
			{
				Field:   model.Field{Name: "CLEAN", Label: "Clean", Type: model.FieldTypeCheckbox},
				Control: widgets.WidgetToggle,
				Value:   true,
			},
			{
				Field:   model.Field{Name: "NOTE", Label: "Note", Type: model.FieldTypeText},
				Control: "",
				Value:   `<"quoted">`,
			},
		},
	}
}

func TestRenderForm(t *testing.T) {
	t.Parallel()

	r, err := html.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := r.Render(context.Background(), sampleView())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		`data-workspace="buffer"`,
		`1 field needs attention`,
		`<b>carefully</b>`,
		`type="number" id="field-distance" name="DISTANCE" value="0" min="1" max="500" required`,
		`data-code="belowMin"`,
		`Must be at least 1`,
		`<option value="km" selected>Kilometres</option>`,
		`<option value="m">Metres</option>`,
		`type="checkbox" id="field-clean" name="CLEAN" checked`,
		`value="&lt;`,
		`<button type="submit" disabled>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("output missing %q:\n%s", want, page)
		}
	}
	if strings.Contains(page, "<script>") || strings.Contains(page, `<"quoted">`) {
		t.Fatalf("markup must be sanitised or escaped:\n%s", page)
	}
}

func TestRenderValidFormEnablesSubmit(t *testing.T) {
	t.Parallel()

	r, err := html.New(html.WithAction("/jobs"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := r.Render(context.Background(), render.View{Workspace: "w", Valid: true, Geometry: `{"type":"Point"}`})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	page := string(out)
	if !strings.Contains(page, `action="/jobs"`) || !strings.Contains(page, `<button type="submit">`) {
		t.Fatalf("unexpected output:\n%s", page)
	}
	if strings.Contains(page, "attention") {
		t.Fatalf("valid form must not show a summary:\n%s", page)
	}
	if !strings.Contains(page, `name="geometry"`) {
		t.Fatalf("geometry should be carried:\n%s", page)
	}
}

func TestCustomTemplates(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"form.tpl": {Data: []byte(`{{ workspace }}:{% for f in fields %}{{ f.Name }}{% endfor %}`)}}
	r, err := html.New(html.WithTemplatesFS(fsys))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := r.Render(context.Background(), sampleView())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := string(out); got != "buffer:INTRODISTANCEUNITSCLEANNOTE" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMissingTemplates(t *testing.T) {
	t.Parallel()

	if _, err := html.New(html.WithTemplatesFS(fstest.MapFS{})); err == nil {
		t.Fatalf("expected parse error for empty bundle")
	}
	if _, err := html.New(html.WithTemplatesFS(nil)); !errors.Is(err, html.ErrNoTemplates) {
		t.Fatalf("expected ErrNoTemplates, got %v", err)
	}
}

func TestRenderHonoursCancellation(t *testing.T) {
	t.Parallel()

	r, err := html.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, sampleView()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDocumentAdapter(t *testing.T) {
	t.Parallel()

	r, err := html.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf strings.Builder
	doc := r.Document(&buf)

	registry := render.NewRegistry()
	registry.MustRegister(doc)
	got, err := registry.Get("html")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := got.Render(context.Background(), sampleView(), nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), `name="DISTANCE"`) {
		t.Fatalf("unexpected document:\n%s", buf.String())
	}
}
