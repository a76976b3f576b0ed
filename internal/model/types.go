package model

// FieldType is the form control category a parameter resolves to.
type FieldType string

const (
	FieldTypeText         FieldType = "text"
	FieldTypeTextarea     FieldType = "textarea"
	FieldTypePassword     FieldType = "password"
	FieldTypeNumber       FieldType = "number"
	FieldTypeNumericInput FieldType = "numeric-input"
	FieldTypeSlider       FieldType = "slider"
	FieldTypeSelect       FieldType = "select"
	FieldTypeMultiSelect  FieldType = "multi-select"
	FieldTypeDate         FieldType = "date"
	FieldTypeTime         FieldType = "time"
	FieldTypeDateTime     FieldType = "date-time"
	FieldTypeColor        FieldType = "color"
	FieldTypeTable        FieldType = "table"
	FieldTypeFile         FieldType = "file"
	FieldTypeTextOrFile   FieldType = "text-or-file"
	FieldTypeCheckbox     FieldType = "checkbox"
	FieldTypeSwitch       FieldType = "switch"
	FieldTypeGeometry     FieldType = "geometry"
	FieldTypeMessage      FieldType = "message"
	FieldTypeHidden       FieldType = "hidden"
	FieldTypeURL          FieldType = "url"
	FieldTypeCoordSys     FieldType = "coordsys"
)

// IsMultiValued reports whether the field holds a list rather than a scalar.
func (t FieldType) IsMultiValued() bool {
	return t == FieldTypeMultiSelect
}

// IsNumeric reports whether the field carries numeric bounds.
func (t FieldType) IsNumeric() bool {
	switch t {
	case FieldTypeNumber, FieldTypeNumericInput, FieldTypeSlider:
		return true
	default:
		return false
	}
}

// IsBoolean reports whether the field is a two-state toggle.
func (t FieldType) IsBoolean() bool {
	return t == FieldTypeCheckbox || t == FieldTypeSwitch
}

// HoldsValue reports whether the field contributes to the submission. Message
// fields are display-only.
func (t FieldType) HoldsValue() bool {
	return t != FieldTypeMessage
}

// Option is a normalised choice entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TableColumn describes one column of a table field.
type TableColumn struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Type  string `json:"type,omitempty"`
}

// TableConfig configures table fields.
type TableConfig struct {
	Columns []TableColumn `json:"columns"`
}

// ColumnNames returns the configured column names, falling back to a single
// "value" column.
func (c *TableConfig) ColumnNames() []string {
	if c == nil || len(c.Columns) == 0 {
		return []string{"value"}
	}
	names := make([]string, 0, len(c.Columns))
	for _, col := range c.Columns {
		names = append(names, col.Name)
	}
	return names
}

// FileConfig configures file and text-or-file fields.
type FileConfig struct {
	Accept    []string `json:"accept,omitempty"`
	Directory bool     `json:"directory,omitempty"`
	MustExist bool     `json:"mustExist,omitempty"`
}

// ColorConfig configures colour fields.
type ColorConfig struct {
	Default string `json:"default,omitempty"`
}

// ToggleConfig configures checkbox and switch fields. Checked and Unchecked are
// the wire values submitted for each state.
type ToggleConfig struct {
	Checked   string `json:"checked"`
	Unchecked string `json:"unchecked"`
}

// Field is the resolved description of one renderable control derived from a
// parameter descriptor (or a synthetic capability field).
type Field struct {
	Name             string            `json:"name"`
	Label            string            `json:"label,omitempty"`
	Description      string            `json:"description,omitempty"`
	Placeholder      string            `json:"placeholder,omitempty"`
	Type             FieldType         `json:"type"`
	ParamType        string            `json:"paramType,omitempty"`
	Required         bool              `json:"required"`
	ReadOnly         bool              `json:"readOnly,omitempty"`
	AutoSelect       bool              `json:"autoSelect,omitempty"`
	CoerceNumber     bool              `json:"coerceNumber,omitempty"`
	Options          []Option          `json:"options,omitempty"`
	Min              *float64          `json:"min,omitempty"`
	Max              *float64          `json:"max,omitempty"`
	MinExclusive     bool              `json:"minExclusive,omitempty"`
	MaxExclusive     bool              `json:"maxExclusive,omitempty"`
	Step             *float64          `json:"step,omitempty"`
	DecimalPrecision *int              `json:"decimalPrecision,omitempty"`
	Default          any               `json:"default,omitempty"`
	Visibility       *Rule             `json:"visibility,omitempty"`
	VisibilityState  State             `json:"visibilityState,omitempty"`
	Table            *TableConfig      `json:"tableConfig,omitempty"`
	File             *FileConfig       `json:"fileConfig,omitempty"`
	Color            *ColorConfig      `json:"colorConfig,omitempty"`
	Toggle           *ToggleConfig     `json:"toggleConfig,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Synthetic reports whether the field was appended by the builder rather than
// derived from a remote descriptor.
func (f Field) Synthetic() bool {
	return len(f.Name) > 2 && f.Name[:2] == SyntheticPrefix
}

// OptionValues returns the option values in declaration order.
func (f Field) OptionValues() []string {
	if len(f.Options) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.Options))
	for _, opt := range f.Options {
		out = append(out, opt.Value)
	}
	return out
}

// SyntheticPrefix prefixes every builder-generated field name so it cannot
// collide with remote parameter names.
const SyntheticPrefix = "__"

// Names of the synthetic capability fields.
const (
	FieldUploadFile       = "__upload_file__"
	FieldRemoteDatasetURL = "__remote_dataset_url__"
	FieldScheduleStart    = "__schedule_start__"
	FieldScheduleName     = "__schedule_name__"
	FieldScheduleCategory = "__schedule_category__"
)

// Lookup returns the field with the supplied name.
func Lookup(fields []Field, name string) (Field, bool) {
	for _, field := range fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// CloneFields returns a copy of fields whose slices and maps can be mutated
// without touching the original.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		if field.Options != nil {
			field.Options = append([]Option(nil), field.Options...)
		}
		if field.Metadata != nil {
			meta := make(map[string]string, len(field.Metadata))
			for k, v := range field.Metadata {
				meta[k] = v
			}
			field.Metadata = meta
		}
		out[i] = field
	}
	return out
}
