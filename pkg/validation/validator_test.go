package validation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/validation"
)

func float(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func TestValidateRequiredGating(t *testing.T) {
	t.Parallel()

	fields := []model.Field{
		{Name: "title", Type: model.FieldTypeText, Required: true},
		{Name: "notes", Type: model.FieldTypeTextarea},
		{Name: "layers", Type: model.FieldTypeMultiSelect},
	}

	result := validation.New().Validate(model.Values{}, fields)
	if result.IsValid {
		t.Fatalf("expected invalid result")
	}
	want := map[string]string{"title": validation.CodeRequired}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	result = validation.New().Validate(model.Values{"title": model.Text("  ")}, fields)
	if result.Errors["title"] != validation.CodeRequired {
		t.Fatalf("whitespace should count as empty, got %#v", result.Errors)
	}
}

func TestValidateNumericBounds(t *testing.T) {
	t.Parallel()

	qty := model.Field{Name: "qty", Type: model.FieldTypeNumber, Required: true, Min: float(1), Max: float(10)}
	v := validation.New()

	result := v.Validate(model.Values{"qty": model.Number(11)}, []model.Field{qty})
	if result.IsValid || result.Errors["qty"] != validation.CodeAboveMax {
		t.Fatalf("expected aboveMax for 11, got %#v", result)
	}

	result = v.Validate(model.Values{"qty": model.Number(5)}, []model.Field{qty})
	if !result.IsValid {
		t.Fatalf("expected 5 to be valid, got %#v", result.Errors)
	}

	result = v.Validate(model.Values{"qty": model.Number(1)}, []model.Field{qty})
	if !result.IsValid {
		t.Fatalf("inclusive min should accept 1, got %#v", result.Errors)
	}

	qty.MinExclusive = true
	qty.MaxExclusive = true
	cases := map[float64]string{1: validation.CodeBelowMin, 10: validation.CodeAboveMax, 0.5: validation.CodeBelowMin}
	for value, code := range cases {
		result = v.Validate(model.Values{"qty": model.Number(value)}, []model.Field{qty})
		if result.Errors["qty"] != code {
			t.Fatalf("value %v: got %q, want %q", value, result.Errors["qty"], code)
		}
	}
}

func TestValidateIntegerAndNumberCodes(t *testing.T) {
	t.Parallel()

	count := model.Field{Name: "count", Type: model.FieldTypeNumericInput, DecimalPrecision: intPtr(0)}
	v := validation.New()

	if got := v.Validate(model.Values{"count": model.Number(2.5)}, []model.Field{count}).Errors["count"]; got != validation.CodeInteger {
		t.Fatalf("expected integer code, got %q", got)
	}
	if got := v.Validate(model.Values{"count": model.Text("many")}, []model.Field{count}).Errors["count"]; got != validation.CodeNumber {
		t.Fatalf("expected number code, got %q", got)
	}
	if res := v.Validate(model.Values{"count": model.Number(3)}, []model.Field{count}); !res.IsValid {
		t.Fatalf("expected integral value to pass, got %#v", res.Errors)
	}
}

func TestValidateScheduleStart(t *testing.T) {
	t.Parallel()

	start := model.Field{Name: model.FieldScheduleStart, Type: model.FieldTypeText, Required: true}
	v := validation.New()

	cases := map[string]string{
		"":                    validation.CodeRequired,
		"2024-05-01T10:00:00": validation.CodeScheduleStartFormat,
		"2024-13-01 10:00:00": validation.CodeScheduleStartFormat,
		"2024-05-01 10:00":    validation.CodeScheduleStartFormat,
		"2024-05-01 10:00:00": "",
	}
	for input, want := range cases {
		got := v.Validate(model.Values{start.Name: model.Text(input)}, []model.Field{start}).Errors[start.Name]
		if got != want {
			t.Fatalf("schedule start %q: got %q, want %q", input, got, want)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	t.Parallel()

	fields := []model.Field{
		{Name: "day", Type: model.FieldTypeDate},
		{Name: "at", Type: model.FieldTypeTime},
		{Name: "tint", Type: model.FieldTypeColor},
		{Name: "source", Type: model.FieldTypeURL},
	}
	values := model.Values{
		"day":    model.Text("2024-02-30"),
		"at":     model.Text("10:15"),
		"tint":   model.Text("blue"),
		"source": model.Text("not a url"),
	}

	result := validation.New().Validate(values, fields)
	want := map[string]string{
		"day":    validation.CodeFormat,
		"tint":   validation.CodeFormat,
		"source": validation.CodeURL,
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSkipsHiddenFields(t *testing.T) {
	t.Parallel()

	fields := []model.Field{
		{Name: "detail", Type: model.FieldTypeText, Required: true, VisibilityState: model.StateHiddenDisabled},
		{Name: "locked", Type: model.FieldTypeText, Required: true, VisibilityState: model.StateVisibleDisabled},
		{Name: "info", Type: model.FieldTypeMessage, Required: true},
	}

	result := validation.New().Validate(model.Values{}, fields)
	want := map[string]string{"locked": validation.CodeRequired}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateCustomCheck(t *testing.T) {
	t.Parallel()

	v := validation.New(validation.WithCheck(func(field model.Field, value model.Value) string {
		if field.Name == "code" && value != model.Text("OK") {
			return "custom"
		}
		return ""
	}))
	fields := []model.Field{{Name: "code", Type: model.FieldTypeText}}

	if got := v.Validate(model.Values{"code": model.Text("NO")}, fields).Errors["code"]; got != "custom" {
		t.Fatalf("expected custom code, got %q", got)
	}
	if res := v.Validate(model.Values{"code": model.Text("OK")}, fields); !res.IsValid {
		t.Fatalf("expected valid result, got %#v", res.Errors)
	}
}
