package render

import (
	"sort"

	"github.com/goliatone/go-jobform/pkg/formstate"
	"github.com/goliatone/go-jobform/pkg/model"
)

// ControlResolver picks the control name used to present a field.
type ControlResolver interface {
	Resolve(field model.Field) (string, bool)
}

// FieldView is one visible field ready for presentation.
type FieldView struct {
	Field    model.Field `json:"field"`
	Control  string      `json:"control"`
	Value    any         `json:"value,omitempty"`
	FileName string      `json:"fileName,omitempty"`
	Error    string      `json:"error,omitempty"`
	Message  string      `json:"message,omitempty"`
	State    model.State `json:"state"`
	Disabled bool        `json:"disabled,omitempty"`
}

// View is the presentation of a settled form snapshot. Hidden fields are
// omitted; field order follows the descriptor order.
type View struct {
	Workspace string      `json:"workspace"`
	Fields    []FieldView `json:"fields"`
	Valid     bool        `json:"valid"`
	Errors    []string    `json:"errors,omitempty"`
	Geometry  string      `json:"geometry,omitempty"`
}

// Field returns the view of the named field when it is visible.
func (v View) Field(name string) (FieldView, bool) {
	for _, field := range v.Fields {
		if field.Field.Name == name {
			return field, true
		}
	}
	return FieldView{}, false
}

// NewView builds a View from snapshot.
func NewView(snapshot formstate.Snapshot, opts ...ViewOption) View {
	cfg := viewConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	view := View{
		Workspace: snapshot.Workspace,
		Valid:     snapshot.Valid,
		Geometry:  snapshot.Geometry,
	}
	for _, field := range snapshot.Fields {
		state := field.VisibilityState
		if state == "" {
			state = model.StateVisibleEnabled
		}
		if !state.Visible() {
			continue
		}

		fv := FieldView{
			Field:    field,
			Control:  controlFor(field, cfg.controls),
			State:    state,
			Disabled: !state.Enabled() || field.ReadOnly,
			Error:    snapshot.Errors[field.Name],
		}
		if value, ok := snapshot.Values[field.Name]; ok && value != nil {
			fv.Value = value.Raw()
		}
		if file, ok := snapshot.Files[field.Name]; ok {
			fv.FileName = file.Name
		}
		if fv.Error != "" {
			fv.Message = DefaultMessage(fv.Error, field)
		}
		view.Fields = append(view.Fields, fv)
	}

	for name := range snapshot.Errors {
		view.Errors = append(view.Errors, name)
	}
	sort.Strings(view.Errors)

	if cfg.translator != nil {
		Localize(&view, cfg.locale, cfg.translator, cfg.onMissing)
	}
	return view
}

func controlFor(field model.Field, resolver ControlResolver) string {
	if resolver != nil {
		if control, ok := resolver.Resolve(field); ok && control != "" {
			return control
		}
	}
	return string(field.Type)
}
