package model

import internalmodel "github.com/goliatone/go-jobform/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeText         = internalmodel.FieldTypeText
	FieldTypeTextarea     = internalmodel.FieldTypeTextarea
	FieldTypePassword     = internalmodel.FieldTypePassword
	FieldTypeNumber       = internalmodel.FieldTypeNumber
	FieldTypeNumericInput = internalmodel.FieldTypeNumericInput
	FieldTypeSlider       = internalmodel.FieldTypeSlider
	FieldTypeSelect       = internalmodel.FieldTypeSelect
	FieldTypeMultiSelect  = internalmodel.FieldTypeMultiSelect
	FieldTypeDate         = internalmodel.FieldTypeDate
	FieldTypeTime         = internalmodel.FieldTypeTime
	FieldTypeDateTime     = internalmodel.FieldTypeDateTime
	FieldTypeColor        = internalmodel.FieldTypeColor
	FieldTypeTable        = internalmodel.FieldTypeTable
	FieldTypeFile         = internalmodel.FieldTypeFile
	FieldTypeTextOrFile   = internalmodel.FieldTypeTextOrFile
	FieldTypeCheckbox     = internalmodel.FieldTypeCheckbox
	FieldTypeSwitch       = internalmodel.FieldTypeSwitch
	FieldTypeGeometry     = internalmodel.FieldTypeGeometry
	FieldTypeMessage      = internalmodel.FieldTypeMessage
	FieldTypeHidden       = internalmodel.FieldTypeHidden
	FieldTypeURL          = internalmodel.FieldTypeURL
	FieldTypeCoordSys     = internalmodel.FieldTypeCoordSys
)

type (
	Field        = internalmodel.Field
	Option       = internalmodel.Option
	TableColumn  = internalmodel.TableColumn
	TableConfig  = internalmodel.TableConfig
	FileConfig   = internalmodel.FileConfig
	ColorConfig  = internalmodel.ColorConfig
	ToggleConfig = internalmodel.ToggleConfig
)

// Synthetic field names.
const (
	SyntheticPrefix       = internalmodel.SyntheticPrefix
	FieldUploadFile       = internalmodel.FieldUploadFile
	FieldRemoteDatasetURL = internalmodel.FieldRemoteDatasetURL
	FieldScheduleStart    = internalmodel.FieldScheduleStart
	FieldScheduleName     = internalmodel.FieldScheduleName
	FieldScheduleCategory = internalmodel.FieldScheduleCategory
)

// Visibility types.
type (
	State     = internalmodel.State
	Operator  = internalmodel.Operator
	Condition = internalmodel.Condition
	Clause    = internalmodel.Clause
	Rule      = internalmodel.Rule
)

const (
	StateVisibleEnabled  = internalmodel.StateVisibleEnabled
	StateVisibleDisabled = internalmodel.StateVisibleDisabled
	StateHiddenDisabled  = internalmodel.StateHiddenDisabled
)

const (
	OpEquals      = internalmodel.OpEquals
	OpNotEquals   = internalmodel.OpNotEquals
	OpContains    = internalmodel.OpContains
	OpStartsWith  = internalmodel.OpStartsWith
	OpEndsWith    = internalmodel.OpEndsWith
	OpLessThan    = internalmodel.OpLessThan
	OpGreaterThan = internalmodel.OpGreaterThan
	OpMatchesRe   = internalmodel.OpMatchesRe
	OpIsEnabled   = internalmodel.OpIsEnabled
	OpIsEmpty     = internalmodel.OpIsEmpty
	OpAllOf       = internalmodel.OpAllOf
	OpAnyOf       = internalmodel.OpAnyOf
	OpNot         = internalmodel.OpNot
)

// Value types.
type (
	Value          = internalmodel.Value
	ValueKind      = internalmodel.ValueKind
	Values         = internalmodel.Values
	Text           = internalmodel.Text
	Number         = internalmodel.Number
	Bool           = internalmodel.Bool
	List           = internalmodel.List
	Rows           = internalmodel.Rows
	TextOrFile     = internalmodel.TextOrFile
	TextOrFileMode = internalmodel.TextOrFileMode
	FileRef        = internalmodel.FileRef
	File           = internalmodel.File
)

const (
	KindText       = internalmodel.KindText
	KindNumber     = internalmodel.KindNumber
	KindBool       = internalmodel.KindBool
	KindList       = internalmodel.KindList
	KindRows       = internalmodel.KindRows
	KindTextOrFile = internalmodel.KindTextOrFile
	KindFileRef    = internalmodel.KindFileRef

	ModeText = internalmodel.ModeText
	ModeFile = internalmodel.ModeFile
)

// IsEmpty reports whether v counts as "no value" for required checks.
func IsEmpty(v Value) bool { return internalmodel.IsEmpty(v) }

// ParseState maps a wire visibility state name to a State.
func ParseState(raw string) (State, error) { return internalmodel.ParseState(raw) }

// DecodeRule converts a raw visibility payload into a Rule.
func DecodeRule(raw any) (*Rule, error) { return internalmodel.DecodeRule(raw) }

// ParseRuleJSON decodes the wire JSON form of a visibility rule.
func ParseRuleJSON(data []byte) (*Rule, error) { return internalmodel.ParseRuleJSON(data) }

// Lookup returns the field with the supplied name.
func Lookup(fields []Field, name string) (Field, bool) { return internalmodel.Lookup(fields, name) }

// CloneFields copies a field list so it can be annotated independently.
func CloneFields(fields []Field) []Field { return internalmodel.CloneFields(fields) }

// OptionValueString renders an option value the way it is compared and
// submitted.
func OptionValueString(value any) string { return internalmodel.OptionValueString(value) }

// DefaultLabeler converts a field name into a human-friendly label.
func DefaultLabeler(name string) string { return internalmodel.DefaultLabeler(name) }
