package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jobform/pkg/params"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuildMapsDescriptorsInOrder(t *testing.T) {
	t.Parallel()

	fields, err := New(Options{}).Build([]params.Descriptor{
		{Name: "buffer_distance", Type: params.TypeInteger, Minimum: floatPtr(1)},
		{Name: "NOTE", Description: "<b>Free</b>   text", Type: params.TypeText, Optional: true},
		{Name: "SPEED", Type: params.TypeRangeSlider},
		{Name: "INFO", Description: "Read me", Type: params.TypeMessage},
		{Name: "SRC", Type: params.TypeFilenameMustExist},
		{Name: "LEGACY", Type: params.Type("SOMETHING_NEW")},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var got []string
	for _, f := range fields {
		got = append(got, f.Name+":"+string(f.Type)+":"+f.Label)
	}
	want := []string{
		"buffer_distance:numeric-input:Buffer Distance",
		"NOTE:text:Free text",
		"SPEED:slider:Speed",
		"INFO:message:Read me",
		"SRC:file:Src",
		"LEGACY:text:Legacy",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if p := fields[0].DecimalPrecision; p == nil || *p != 0 {
		t.Fatalf("integer fields need zero precision, got %v", p)
	}
	if !fields[0].Required || fields[1].Required {
		t.Fatalf("unexpected required flags %v %v", fields[0].Required, fields[1].Required)
	}
	if s := fields[2].Step; s == nil || *s != 1 {
		t.Fatalf("slider step should default to 1, got %v", s)
	}
	if fields[3].Required || !fields[3].ReadOnly {
		t.Fatalf("message fields are read-only and optional")
	}
	if fields[4].File == nil || !fields[4].File.MustExist || fields[4].File.Directory {
		t.Fatalf("unexpected file config %+v", fields[4].File)
	}
}

func TestBuildNormalisesOptions(t *testing.T) {
	t.Parallel()

	fields, err := New(Options{}).Build([]params.Descriptor{
		{Name: "LEVEL", Type: params.TypeChoice, ListOptions: []params.Option{
			{Value: float64(1), Caption: "Low"},
			{Value: "2"},
			{Value: float64(1), Caption: "Duplicate"},
		}},
		{Name: "ONLY", Type: params.TypeChoice, ListOptions: []params.Option{{Value: "x"}}},
		{Name: "FLAG", Type: params.TypeCheckbox, ListOptions: []params.Option{{Value: "Y"}, {Value: "N"}}},
		{Name: "PLAIN", Type: params.TypeCheckbox},
		{Name: "EMPTY", Type: params.TypeListbox},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	level := fields[0]
	if diff := cmp.Diff([]Option{{Value: "1", Label: "Low"}, {Value: "2", Label: "2"}}, level.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if !level.CoerceNumber {
		t.Fatalf("numeric choices should coerce to numbers")
	}
	if only := fields[1]; !only.AutoSelect || !only.ReadOnly {
		t.Fatalf("a single option should auto-select, got %+v", only)
	}
	if diff := cmp.Diff(&ToggleConfig{Checked: "Y", Unchecked: "N"}, fields[2].Toggle); diff != "" {
		t.Fatalf("toggle mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&ToggleConfig{Checked: "true", Unchecked: "false"}, fields[3].Toggle); diff != "" {
		t.Fatalf("default toggle mismatch (-want +got):\n%s", diff)
	}
	if fields[4].Type != FieldTypeText {
		t.Fatalf("a list box without options degrades to text, got %q", fields[4].Type)
	}
}

func TestBuildVisibilityRules(t *testing.T) {
	t.Parallel()

	fields, err := New(Options{}).Build([]params.Descriptor{
		{Name: "MODE", Type: params.TypeText},
		{Name: "EXPR", Type: params.TypeText, VisibilityRule: ` MODE == "A" `},
		{Name: "BROKEN", Type: params.TypeText, Visibility: map[string]any{"if": "nope"}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if fields[0].Visibility != nil {
		t.Fatalf("no rule expected, got %+v", fields[0].Visibility)
	}
	if rule := fields[1].Visibility; rule == nil || rule.Expr != `MODE == "A"` || rule.Else != StateHiddenDisabled {
		t.Fatalf("unexpected expression rule %+v", rule)
	}
	broken := fields[2]
	if broken.Visibility != nil || broken.Metadata["visibilityError"] == "" {
		t.Fatalf("a malformed rule should degrade to visible, got %+v", broken)
	}
}

func TestBuildSyntheticFields(t *testing.T) {
	t.Parallel()

	fields, err := New(Options{
		AllowUpload:        true,
		AllowRemoteDataset: true,
		AllowSchedule:      true,
		UploadAccept:       []string{".zip"},
	}).Build([]params.Descriptor{{Name: "A", Type: params.TypeText}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var keys []string
	for _, f := range fields[1:] {
		if !f.Synthetic() {
			t.Fatalf("%s should be synthetic", f.Name)
		}
		keys = append(keys, f.Metadata["labelKey"])
	}
	want := []string{"uploadFile", "remoteDatasetUrl", "scheduleStart", "scheduleName", "scheduleCategory"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("synthetic fields mismatch (-want +got):\n%s", diff)
	}
	if fields[0].Synthetic() {
		t.Fatalf("descriptor fields are not synthetic")
	}
	if diff := cmp.Diff([]string{".zip"}, fields[1].File.Accept); diff != "" {
		t.Fatalf("accept mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRejectsBadDescriptors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		descriptors []params.Descriptor
		want        error
	}{
		{name: "missing name", descriptors: []params.Descriptor{{Name: "  "}}, want: errParameterNameMissing},
		{name: "duplicate", descriptors: []params.Descriptor{{Name: "A"}, {Name: " A "}}, want: errParameterDuplicate},
		{name: "reserved", descriptors: []params.Descriptor{{Name: "__upload_file__"}}, want: errParameterReserved},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(Options{}).Build(tc.descriptors); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDefaultLabeler(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                       "",
		"buffer_distance":        "Buffer Distance",
		"maxRows":                "Max rows",
		"layer2name":             "Layer 2 name",
		"OUTPUT-FORMAT":          "Output Format",
		"__remote_dataset_url__": "Remote Dataset URL",
		"$(SourceDataset)":       "Source dataset",
		"target.crs":             "Target CRS",
		"layerId":                "Layer ID",
	}
	for in, want := range cases {
		if got := DefaultLabeler(in); got != want {
			t.Errorf("DefaultLabeler(%q) = %q, want %q", in, got, want)
		}
	}
}
