package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jobform/pkg/formstate"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/params"
	"github.com/goliatone/go-jobform/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	prompted     []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.prompted = append(s.prompted, cfg.Message)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	s.prompted = append(s.prompted, cfg.Message)
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	s.prompted = append(s.prompted, cfg.Message)
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.prompted = append(s.prompted, cfg.Message)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	s.prompted = append(s.prompted, cfg.Message)
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	s.prompted = append(s.prompted, cfg.Message)
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func jobDescriptors() []params.Descriptor {
	return []params.Descriptor{
		{
			Name:         "mode",
			Description:  "Mode",
			Type:         params.TypeChoice,
			DefaultValue: "A",
			ListOptions:  []params.Option{{Value: "A"}, {Value: "B"}},
		},
		{
			Name:        "detail",
			Description: "Detail",
			Type:        params.TypeText,
			Optional:    true,
			Visibility: map[string]any{
				"if": []any{
					map[string]any{
						"$equals": map[string]any{"parameter": "mode", "value": "A"},
						"then":    "visibleEnabled",
					},
				},
				"else": "hiddenDisabled",
			},
		},
		{
			Name:        "qty",
			Description: "Quantity",
			Type:        params.TypeInteger,
			Minimum:     floatPtr(1),
			Maximum:     floatPtr(10),
		},
	}
}

func newSession(t *testing.T, descriptors []params.Descriptor) (*formstate.Manager, render.View, render.ChangeFunc) {
	t.Helper()

	m := formstate.New()
	if err := m.Initialize("buffer", descriptors); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	onChange := func(name string, value any) (render.View, error) {
		if err := m.UpdateField(name, value); err != nil {
			return render.View{}, err
		}
		return render.NewView(m.Snapshot()), nil
	}
	return m, render.NewView(m.Snapshot()), onChange
}

func TestRenderSkipsFieldsHiddenByEarlierAnswers(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{1},
		inputs:    []string{"0", "5"},
	}
	m, view, onChange := newSession(t, jobDescriptors())

	if err := New(WithPromptDriver(driver)).Render(context.Background(), view, onChange); err != nil {
		t.Fatalf("render: %v", err)
	}

	if diff := cmp.Diff([]string{"Mode *", "Quantity *", "Quantity *"}, driver.prompted); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], "Must be at least 1") {
		t.Fatalf("expected one correction message, got %v", driver.infoMessages)
	}

	snap := m.Snapshot()
	if !snap.Valid {
		t.Fatalf("expected valid form, errors %v", snap.Errors)
	}
	if snap.Values["mode"] != model.Text("B") || snap.Values["qty"] != model.Number(5) {
		t.Fatalf("unexpected values %#v", snap.Values)
	}
	if _, ok := snap.Values["detail"]; ok {
		t.Fatalf("hidden detail must not hold a value")
	}
}

func TestRenderAsksRevealedFields(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{0},
		inputs:    []string{"keep edges", "3"},
	}
	m, view, onChange := newSession(t, jobDescriptors())

	if err := New(WithPromptDriver(driver)).Render(context.Background(), view, onChange); err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"Mode *", "Detail", "Quantity *"}, driver.prompted); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if got := m.Snapshot().Values["detail"]; got != model.Text("keep edges") {
		t.Fatalf("unexpected detail %#v", got)
	}
}

func TestRenderGivesUpAfterCorrectionPasses(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{1},
		inputs:    []string{"0", "11"},
	}
	_, view, onChange := newSession(t, jobDescriptors())

	err := New(WithPromptDriver(driver), WithCorrectionPasses(1)).Render(context.Background(), view, onChange)
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if !strings.Contains(err.Error(), "qty") {
		t.Fatalf("error should name the invalid field, got %v", err)
	}
}

func TestRenderTogglesFilesAndMultiSelect(t *testing.T) {
	driver := &stubDriver{
		confirm:  []bool{true},
		multiIdx: [][]int{{0, 2}},
		inputs:   []string{"missing.csv", "/tmp/lookup.csv"},
	}
	descriptors := []params.Descriptor{
		{Name: "CLEAN", Description: "Clean", Type: params.TypeCheckbox},
		{
			Name:        "LAYERS",
			Description: "Layers",
			Type:        params.TypeListbox,
			ListOptions: []params.Option{{Value: "roads"}, {Value: "rivers"}, {Value: "rail"}},
		},
		{Name: "LOOKUP", Description: "Lookup", Type: params.TypeFilename, Optional: true},
	}
	m, view, onChange := newSession(t, descriptors)

	reader := func(path string) (model.File, error) {
		if path != "/tmp/lookup.csv" {
			return model.File{}, errors.New("no such file")
		}
		return model.File{Name: "lookup.csv", Data: []byte("a,b")}, nil
	}
	r := New(WithPromptDriver(driver), WithFileReader(reader), WithTheme(Theme{ErrorPrefix: "! "}))
	if err := r.Render(context.Background(), view, onChange); err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(driver.infoMessages) != 1 || !strings.HasPrefix(driver.infoMessages[0], "! Cannot read missing.csv") {
		t.Fatalf("expected unreadable file message, got %v", driver.infoMessages)
	}

	snap := m.Snapshot()
	if diff := cmp.Diff(model.List{"roads", "rail"}, snap.Values["LAYERS"]); diff != "" {
		t.Fatalf("layers mismatch (-want +got):\n%s", diff)
	}
	if snap.Files["LOOKUP"].Name != "lookup.csv" {
		t.Fatalf("expected lookup file attached, got %+v", snap.Files)
	}
	payload, err := m.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if _, ok := payload.Data["LOOKUP"].(model.File); !ok {
		t.Fatalf("payload should carry the file, got %#v", payload.Data["LOOKUP"])
	}
}

func TestRenderPropagatesAbort(t *testing.T) {
	_, view, onChange := newSession(t, jobDescriptors())

	aborting := &abortDriver{}
	err := New(WithPromptDriver(aborting)).Render(context.Background(), view, onChange)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRenderRequiresChangeHandler(t *testing.T) {
	if err := New(WithPromptDriver(&stubDriver{})).Render(context.Background(), render.View{}, nil); !errors.Is(err, ErrNoChangeHandler) {
		t.Fatalf("expected ErrNoChangeHandler, got %v", err)
	}
}

type abortDriver struct{ stubDriver }

func (abortDriver) Select(context.Context, SelectConfig) (int, error) { return -1, ErrAborted }
