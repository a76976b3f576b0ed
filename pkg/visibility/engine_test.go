package visibility_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/visibility"
	"github.com/goliatone/go-jobform/pkg/visibility/expr"
)

func modeDetailFields() []model.Field {
	return []model.Field{
		{
			Name:    "mode",
			Type:    model.FieldTypeSelect,
			Options: []model.Option{{Value: "A", Label: "A"}, {Value: "B", Label: "B"}},
		},
		{
			Name: "detail",
			Type: model.FieldTypeText,
			Visibility: &model.Rule{
				If: []model.Clause{{
					When: model.Condition{Op: model.OpEquals, Parameter: "mode", Value: "A"},
					Then: model.StateVisibleEnabled,
				}},
				Else: model.StateHiddenDisabled,
			},
		},
	}
}

func TestApplyClearsHiddenValues(t *testing.T) {
	t.Parallel()

	engine := visibility.NewEngine()
	fields := modeDetailFields()
	values := model.Values{"mode": model.Text("A"), "detail": model.Text("keep me")}
	files := map[string]model.File{}
	errs := map[string]string{}

	out := engine.Apply(fields, values, files, errs)
	if out.States["detail"] != model.StateVisibleEnabled {
		t.Fatalf("expected detail visible for mode A, got %q", out.States["detail"])
	}
	if _, ok := values["detail"]; !ok {
		t.Fatalf("visible field value should be kept")
	}

	values["mode"] = model.Text("B")
	errs["detail"] = "required"
	out = engine.Apply(fields, values, files, errs)

	if out.States["detail"] != model.StateHiddenDisabled {
		t.Fatalf("expected detail hidden for mode B, got %q", out.States["detail"])
	}
	if _, ok := values["detail"]; ok {
		t.Fatalf("hidden field value should be removed, got %#v", values["detail"])
	}
	if _, ok := errs["detail"]; ok {
		t.Fatalf("hidden field error should be cleared")
	}
	if diff := cmp.Diff([]string{"detail"}, out.Cleared); diff != "" {
		t.Fatalf("cleared mismatch (-want +got):\n%s", diff)
	}
	if fields[1].VisibilityState != model.StateHiddenDisabled {
		t.Fatalf("expected fields to be annotated in place")
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	t.Parallel()

	engine := visibility.NewEngine(visibility.WithEvaluator(expr.New()))
	fields := append(modeDetailFields(),
		model.Field{
			Name: "extra",
			Type: model.FieldTypeText,
			Visibility: &model.Rule{
				If: []model.Clause{{
					When: model.Condition{Op: model.OpIsEnabled, Parameter: "detail"},
					Then: model.StateVisibleDisabled,
				}},
			},
		},
		model.Field{
			Name:       "note",
			Type:       model.FieldTypeText,
			Visibility: &model.Rule{Expr: `mode == "B"`, Else: model.StateHiddenDisabled},
		},
	)
	values := model.Values{"mode": model.Text("A")}

	first := engine.Evaluate(fields, values)
	second := engine.Evaluate(fields, values)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("evaluation not idempotent (-first +second):\n%s", diff)
	}

	want := map[string]model.State{
		"mode":   model.StateVisibleEnabled,
		"detail": model.StateVisibleEnabled,
		"extra":  model.StateVisibleDisabled,
		"note":   model.StateHiddenDisabled,
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateIsOrderIndependent(t *testing.T) {
	t.Parallel()

	engine := visibility.NewEngine()
	fields := modeDetailFields()
	reversed := []model.Field{fields[1], fields[0]}
	values := model.Values{"mode": model.Text("B")}

	if diff := cmp.Diff(engine.Evaluate(fields, values), engine.Evaluate(reversed, values)); diff != "" {
		t.Fatalf("declaration order changed the outcome:\n%s", diff)
	}
}

func TestApplyCascadesThroughDependents(t *testing.T) {
	t.Parallel()

	engine := visibility.NewEngine()
	fields := append(modeDetailFields(), model.Field{
		Name: "depth",
		Type: model.FieldTypeNumber,
		Visibility: &model.Rule{
			If: []model.Clause{{
				When: model.Condition{Op: model.OpNot, Conditions: []model.Condition{
					{Op: model.OpIsEmpty, Parameter: "detail"},
				}},
			}},
		},
	})
	values := model.Values{
		"mode":   model.Text("B"),
		"detail": model.Text("x"),
		"depth":  model.Number(3),
	}
	files := map[string]model.File{"depth": {Name: "depth.bin"}}

	out := engine.Apply(fields, values, files, nil)
	if out.States["depth"] != model.StateHiddenDisabled {
		t.Fatalf("expected depth hidden once detail is cleared, got %q", out.States["depth"])
	}
	if len(values) != 1 {
		t.Fatalf("expected only mode to remain, got %#v", values)
	}
	if len(files) != 0 {
		t.Fatalf("expected hidden field file to be cleared")
	}
}

func TestConditionOperators(t *testing.T) {
	t.Parallel()

	values := model.Values{
		"name":   model.Text("roads_2024.shp"),
		"zoom":   model.Number(7),
		"layers": model.List{"roads", "rivers"},
		"flag":   model.Bool(true),
	}
	cases := []struct {
		name string
		cond model.Condition
		want bool
	}{
		{"equals number as text", model.Condition{Op: model.OpEquals, Parameter: "zoom", Value: "7"}, true},
		{"not equals", model.Condition{Op: model.OpNotEquals, Parameter: "name", Value: "x"}, true},
		{"contains text", model.Condition{Op: model.OpContains, Parameter: "name", Value: "2024"}, true},
		{"contains list", model.Condition{Op: model.OpContains, Parameter: "layers", Value: "rivers"}, true},
		{"starts with", model.Condition{Op: model.OpStartsWith, Parameter: "name", Value: "roads"}, true},
		{"ends with", model.Condition{Op: model.OpEndsWith, Parameter: "name", Value: ".gpkg"}, false},
		{"less than", model.Condition{Op: model.OpLessThan, Parameter: "zoom", Value: 10.0}, true},
		{"greater than", model.Condition{Op: model.OpGreaterThan, Parameter: "zoom", Value: "10"}, false},
		{"regex", model.Condition{Op: model.OpMatchesRe, Parameter: "name", Value: `^\w+_\d{4}\.shp$`}, true},
		{"bad regex", model.Condition{Op: model.OpMatchesRe, Parameter: "name", Value: `(`}, false},
		{"bool equals", model.Condition{Op: model.OpEquals, Parameter: "flag", Value: true}, true},
		{"empty missing", model.Condition{Op: model.OpIsEmpty, Parameter: "missing"}, true},
		{"any of", model.Condition{Op: model.OpAnyOf, Conditions: []model.Condition{
			{Op: model.OpEquals, Parameter: "zoom", Value: 1.0},
			{Op: model.OpEquals, Parameter: "layers", Value: "roads"},
		}}, true},
		{"all of", model.Condition{Op: model.OpAllOf, Conditions: []model.Condition{
			{Op: model.OpEquals, Parameter: "zoom", Value: 7.0},
			{Op: model.OpIsEmpty, Parameter: "name"},
		}}, false},
	}

	engine := visibility.NewEngine()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			fields := []model.Field{{
				Name: "target",
				Visibility: &model.Rule{
					If:   []model.Clause{{When: tc.cond, Then: model.StateVisibleEnabled}},
					Else: model.StateHiddenDisabled,
				},
			}}
			got := engine.Evaluate(fields, values)["target"] == model.StateVisibleEnabled
			if got != tc.want {
				t.Fatalf("condition %s = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestExpressionErrorsKeepFieldVisible(t *testing.T) {
	t.Parallel()

	engine := visibility.NewEngine(visibility.WithEvaluator(expr.New()))
	fields := []model.Field{{
		Name:       "broken",
		Visibility: &model.Rule{Expr: "a = 1", Else: model.StateHiddenDisabled},
	}}
	if got := engine.Evaluate(fields, model.Values{})["broken"]; got != model.StateVisibleEnabled {
		t.Fatalf("expected malformed expression to leave field visible, got %q", got)
	}
}

func TestOscillatingRulesSettleHidden(t *testing.T) {
	t.Parallel()

	engine := visibility.NewEngine()
	fields := []model.Field{
		{
			Name: "a",
			Type: model.FieldTypeText,
			Visibility: &model.Rule{
				If: []model.Clause{{
					When: model.Condition{Op: model.OpIsEnabled, Parameter: "b"},
					Then: model.StateHiddenDisabled,
				}},
				Else: model.StateVisibleEnabled,
			},
		},
		{
			Name: "b",
			Type: model.FieldTypeText,
			Visibility: &model.Rule{
				If: []model.Clause{{
					When: model.Condition{Op: model.OpIsEnabled, Parameter: "a"},
					Then: model.StateVisibleEnabled,
				}},
				Else: model.StateHiddenDisabled,
			},
		},
		{Name: "c", Type: model.FieldTypeText},
	}

	first := engine.Evaluate(fields, model.Values{})
	want := map[string]model.State{
		"a": model.StateHiddenDisabled,
		"b": model.StateHiddenDisabled,
		"c": model.StateVisibleEnabled,
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}

	for i := range fields {
		fields[i].VisibilityState = first[fields[i].Name]
	}
	second := engine.Evaluate(fields, model.Values{})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("re-evaluating annotated states changed them (-first +second):\n%s", diff)
	}
}
