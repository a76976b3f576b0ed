package formstate

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/normalize"
	"github.com/goliatone/go-jobform/pkg/params"
	"github.com/goliatone/go-jobform/pkg/validation"
	"github.com/goliatone/go-jobform/pkg/visibility"
	"github.com/goliatone/go-jobform/pkg/visibility/expr"
)

// Payload is the assembled submission: the workspace name and the merged
// wire values. File attachments appear as model.File.
type Payload struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Sink receives submission payloads. The manager does not wait for or
// interpret the outcome.
type Sink interface {
	Submit(payload Payload)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(payload Payload)

// Submit delegates to the underlying function.
func (fn SinkFunc) Submit(payload Payload) { fn(payload) }

// Snapshot is a consistent, caller-owned copy of the form state.
type Snapshot struct {
	Workspace   string                `json:"workspace"`
	Initialized bool                  `json:"initialized"`
	Fields      []model.Field         `json:"fields"`
	Values      model.Values          `json:"values"`
	Files       map[string]model.File `json:"files,omitempty"`
	Errors      map[string]string     `json:"errors,omitempty"`
	Valid       bool                  `json:"valid"`
	Geometry    string                `json:"geometry,omitempty"`
}

// Manager owns the state of one form: field configurations, values, the
// file side-table and validation errors. Every mutation settles visibility
// before validation runs. Manager is safe for concurrent use; mutations are
// serialised.
type Manager struct {
	mu sync.Mutex

	builder   model.Builder
	engine    *visibility.Engine
	validator *validation.Validator
	logger    *slog.Logger

	initialized bool
	workspace   string
	signature   string
	fields      []model.Field
	values      model.Values
	files       map[string]model.File
	errors      map[string]string
	valid       bool
	geometry    string
}

// New constructs a Manager. Without options it uses the default builder, an
// expression-aware visibility engine and the default validator.
func New(opts ...Option) *Manager {
	m := &Manager{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.builder == nil {
		m.builder = model.NewBuilder()
	}
	if m.engine == nil {
		m.engine = visibility.NewEngine(
			visibility.WithEvaluator(expr.New()),
			visibility.WithLogger(m.logger),
		)
	}
	if m.validator == nil {
		m.validator = validation.New()
	}
	m.clear()
	return m
}

// Initialize builds fields for workspace, seeds values from defaults, then
// runs one visibility pass and one validation pass. Any previous state is
// discarded.
func (m *Manager) Initialize(workspace string, descriptors []params.Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialize(workspace, descriptors)
}

// Sync initializes the form only when the workspace or its parameter name
// list differs from the current one. It reports whether a rebuild happened.
func (m *Manager) Sync(workspace string, descriptors []params.Descriptor) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized && m.workspace == workspace && m.signature == params.Signature(descriptors) {
		return false, nil
	}
	if err := m.initialize(workspace, descriptors); err != nil {
		return false, err
	}
	return true, nil
}

// Reset discards all fields, values, files and errors. The external geometry
// is kept since the manager does not own it.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
	m.logger.Debug("form reset")
}

// UpdateField stores value for the named field and settles the form. Files
// (model.File or *model.File) go to the side-table while a surrogate takes
// the field's slot; a nil value clears both.
func (m *Manager) UpdateField(name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	field, ok := model.Lookup(m.fields, name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	m.store(field, value)
	m.settle()
	m.logger.Debug("field updated", "field", name, "valid", m.valid)
	return nil
}

// SetGeometry mirrors an externally owned geometry string into every
// geometry field in one batch, then settles the form once. The value is
// remembered and applied again after the next initialization.
func (m *Manager) SetGeometry(geometry string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.geometry = geometry
	if !m.initialized {
		return
	}
	if m.applyGeometry() {
		m.settle()
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	files := make(map[string]model.File, len(m.files))
	for name, file := range m.files {
		files[name] = file
	}
	errs := make(map[string]string, len(m.errors))
	for name, code := range m.errors {
		errs[name] = code
	}
	return Snapshot{
		Workspace:   m.workspace,
		Initialized: m.initialized,
		Fields:      model.CloneFields(m.fields),
		Values:      m.values.Clone(),
		Files:       files,
		Errors:      errs,
		Valid:       m.valid,
		Geometry:    m.geometry,
	}
}

// Payload assembles the submission payload without validating.
func (m *Manager) Payload() (Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return Payload{}, ErrNotInitialized
	}
	return m.payload(), nil
}

// Submit revalidates the form and, when it is valid, hands the payload to
// sink. Validation failures are reported as a *ValidationError carrying only
// the number of failing fields.
func (m *Manager) Submit(sink Sink) (Payload, error) {
	if sink == nil {
		return Payload{}, ErrNoSink
	}

	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return Payload{}, ErrNotInitialized
	}
	m.settle()
	if !m.valid {
		count := len(m.errors)
		m.mu.Unlock()
		m.logger.Info("submission blocked", "invalid_fields", count)
		return Payload{}, &ValidationError{Count: count}
	}
	payload := m.payload()
	m.mu.Unlock()

	m.logger.Info("submitting form", "workspace", payload.Type, "fields", len(payload.Data))
	sink.Submit(payload)
	return payload, nil
}

func (m *Manager) initialize(workspace string, descriptors []params.Descriptor) error {
	fields, err := m.builder.Build(descriptors)
	if err != nil {
		return fmt.Errorf("formstate: build fields for %q: %w", workspace, err)
	}

	m.clear()
	m.workspace = workspace
	m.signature = params.Signature(descriptors)
	m.fields = fields

	for _, field := range m.fields {
		if value, ok := seedValue(field); ok {
			m.values[field.Name] = value
		}
	}
	m.applyGeometry()
	m.initialized = true
	m.settle()

	m.logger.Debug("form initialized", "workspace", workspace, "fields", len(fields), "valid", m.valid)
	return nil
}

func (m *Manager) clear() {
	m.initialized = false
	m.workspace = ""
	m.signature = ""
	m.fields = nil
	m.values = model.Values{}
	m.files = map[string]model.File{}
	m.errors = map[string]string{}
	m.valid = false
}

// settle runs visibility (clearing hidden values and files) and then
// validation over the settled values. Pinning a single-option field can
// reveal fields that read it, so pinning and visibility alternate until no
// pinned value changes.
func (m *Manager) settle() {
	m.enforceAutoSelect()
	m.engine.Apply(m.fields, m.values, m.files, m.errors)
	for round := 0; round < len(m.fields) && m.enforceAutoSelect(); round++ {
		m.engine.Apply(m.fields, m.values, m.files, m.errors)
	}
	result := m.validator.Validate(m.values, m.fields)
	m.errors = result.Errors
	m.valid = result.IsValid
}

// enforceAutoSelect keeps single-option fields that are not hidden pinned to
// their option. It reports whether any value changed.
func (m *Manager) enforceAutoSelect() bool {
	changed := false
	for _, field := range m.fields {
		if !field.AutoSelect || field.VisibilityState == model.StateHiddenDisabled {
			continue
		}
		value, ok := autoSelectValue(field)
		if !ok || sameValue(m.values[field.Name], value) {
			continue
		}
		m.values[field.Name] = value
		changed = true
	}
	return changed
}

func sameValue(current, want model.Value) bool {
	switch typed := want.(type) {
	case model.List:
		got, ok := current.(model.List)
		if !ok || len(got) != len(typed) {
			return false
		}
		for i := range typed {
			if got[i] != typed[i] {
				return false
			}
		}
		return true
	default:
		return current == want
	}
}

func (m *Manager) applyGeometry() bool {
	touched := false
	for _, field := range m.fields {
		if field.Type != model.FieldTypeGeometry {
			continue
		}
		touched = true
		if m.geometry == "" {
			delete(m.values, field.Name)
			continue
		}
		m.values[field.Name] = model.Text(m.geometry)
	}
	return touched
}

func (m *Manager) store(field model.Field, value any) {
	name := field.Name
	switch typed := value.(type) {
	case nil:
		delete(m.values, name)
		delete(m.files, name)
		return
	case *model.File:
		if typed == nil {
			delete(m.values, name)
			delete(m.files, name)
			return
		}
		m.storeFile(field, *typed)
		return
	case model.File:
		m.storeFile(field, typed)
		return
	}

	normalized := normalize.Value(field, value)
	if tof, ok := normalized.(model.TextOrFile); !ok || tof.Mode != model.ModeFile {
		delete(m.files, name)
	}
	m.values[name] = normalized
}

func (m *Manager) storeFile(field model.Field, file model.File) {
	m.files[field.Name] = file
	if field.Type == model.FieldTypeTextOrFile {
		m.values[field.Name] = model.TextOrFile{Mode: model.ModeFile, FileName: file.Name}
		return
	}
	m.values[field.Name] = model.FileRef{Name: file.Name}
}

func (m *Manager) payload() Payload {
	data := make(map[string]any, len(m.values)+len(m.files))
	for _, field := range m.fields {
		if field.VisibilityState == model.StateHiddenDisabled || !field.Type.HoldsValue() {
			continue
		}
		if file, ok := m.files[field.Name]; ok {
			data[field.Name] = file
			continue
		}
		if value, ok := m.values[field.Name]; ok {
			data[field.Name] = normalize.ToWire(field, value)
		}
	}
	return Payload{Type: m.workspace, Data: data}
}

func seedValue(field model.Field) (model.Value, bool) {
	if field.AutoSelect {
		return autoSelectValue(field)
	}
	if field.Default == nil || !field.Type.HoldsValue() {
		return nil, false
	}
	return normalize.Value(field, field.Default), true
}

func autoSelectValue(field model.Field) (model.Value, bool) {
	if len(field.Options) != 1 {
		return nil, false
	}
	if field.Type == model.FieldTypeMultiSelect {
		return model.List{field.Options[0].Value}, true
	}
	return model.Text(field.Options[0].Value), true
}
