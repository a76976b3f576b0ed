package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-jobform/pkg/params"
)

// Builder converts parameter descriptors into field configurations. It is a
// pure schema transform: no values are normalised here.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	if options.Sanitizer != nil {
		opts.Sanitizer = options.Sanitizer
	}
	opts.AllowUpload = options.AllowUpload
	opts.AllowRemoteDataset = options.AllowRemoteDataset
	opts.AllowSchedule = options.AllowSchedule
	opts.UploadAccept = append([]string(nil), options.UploadAccept...)
	return &Builder{opts: opts}
}

// Build maps descriptors to fields, preserving input order, and appends the
// synthetic capability fields enabled in the options.
func (b *Builder) Build(descriptors []params.Descriptor) ([]Field, error) {
	if err := validateDescriptors(descriptors); err != nil {
		return nil, err
	}

	fields := make([]Field, 0, len(descriptors)+5)
	for _, d := range descriptors {
		fields = append(fields, b.fieldFromDescriptor(d))
	}
	fields = append(fields, b.syntheticFields()...)
	return fields, nil
}

func (b *Builder) fieldFromDescriptor(d params.Descriptor) Field {
	name := strings.TrimSpace(d.Name)
	paramType := d.Type.Normalize()
	options := normalizeOptions(d.ListOptions, b.opts.Sanitizer)

	field := Field{
		Name:             name,
		Label:            b.label(name, d.Description),
		Type:             mapType(paramType, len(options) > 0),
		ParamType:        string(paramType),
		Required:         d.IsRequired(),
		Default:          d.DefaultValue,
		Min:              copyFloat(d.Minimum),
		Max:              copyFloat(d.Maximum),
		MinExclusive:     d.MinimumExclusive,
		MaxExclusive:     d.MaximumExclusive,
		Step:             copyFloat(d.Step),
		DecimalPrecision: copyInt(d.DecimalPrecision),
		VisibilityState:  StateVisibleEnabled,
	}

	switch field.Type {
	case FieldTypeSelect, FieldTypeMultiSelect:
		field.Options = options
		if len(options) == 1 {
			field.AutoSelect = true
			field.ReadOnly = true
		}
		if field.Type == FieldTypeSelect && numericOptions(options) {
			field.CoerceNumber = true
		}
	case FieldTypeCheckbox, FieldTypeSwitch:
		field.Toggle = toggleConfig(options)
	case FieldTypeTable:
		field.Table = tableConfig(d.Columns, b.opts.Sanitizer)
	case FieldTypeFile:
		field.File = &FileConfig{
			Directory: strings.HasPrefix(string(paramType), "DIRNAME"),
			MustExist: strings.HasSuffix(string(paramType), "_MUSTEXIST"),
		}
	case FieldTypeTextOrFile:
		field.File = &FileConfig{}
	case FieldTypeColor:
		field.Color = &ColorConfig{Default: "#000000"}
	case FieldTypeMessage:
		field.Required = false
		field.ReadOnly = true
	case FieldTypeHidden:
		field.Required = false
	}

	if paramType == params.TypeInteger {
		zero := 0
		field.DecimalPrecision = &zero
	}
	if field.Type == FieldTypeSlider && field.Step == nil {
		step := 1.0
		if field.DecimalPrecision != nil && *field.DecimalPrecision > 0 {
			step = math.Pow10(-*field.DecimalPrecision)
		}
		field.Step = &step
	}

	field.Placeholder = placeholderFor(field)
	b.applyVisibility(&field, d)
	return field
}

func (b *Builder) label(name, description string) string {
	if label := b.opts.Sanitizer(description); label != "" {
		return label
	}
	return b.opts.Labeler(name)
}

func (b *Builder) applyVisibility(field *Field, d params.Descriptor) {
	rule, err := DecodeRule(d.Visibility)
	if err != nil {
		// A malformed rule degrades to an always-visible field.
		field.ensureMetadata()["visibilityError"] = err.Error()
		rule = nil
	}
	if rule == nil && strings.TrimSpace(d.VisibilityRule) != "" {
		rule = &Rule{Expr: strings.TrimSpace(d.VisibilityRule), Else: StateHiddenDisabled}
	}
	field.Visibility = rule
}

func (b *Builder) syntheticFields() []Field {
	var out []Field
	if b.opts.AllowUpload {
		out = append(out, Field{
			Name:            FieldUploadFile,
			Label:           b.opts.Labeler("upload_file"),
			Type:            FieldTypeFile,
			File:            &FileConfig{Accept: append([]string(nil), b.opts.UploadAccept...)},
			VisibilityState: StateVisibleEnabled,
			Metadata:        map[string]string{"labelKey": "uploadFile"},
		})
	}
	if b.opts.AllowRemoteDataset {
		out = append(out, Field{
			Name:            FieldRemoteDatasetURL,
			Label:           b.opts.Labeler("remote_dataset_url"),
			Type:            FieldTypeURL,
			Placeholder:     "https://",
			VisibilityState: StateVisibleEnabled,
			Metadata:        map[string]string{"labelKey": "remoteDatasetUrl"},
		})
	}
	if b.opts.AllowSchedule {
		out = append(out,
			Field{
				Name:            FieldScheduleStart,
				Label:           b.opts.Labeler("schedule_start"),
				Type:            FieldTypeText,
				Required:        true,
				Placeholder:     "YYYY-MM-DD HH:MM:SS",
				VisibilityState: StateVisibleEnabled,
				Metadata:        map[string]string{"labelKey": "scheduleStart"},
			},
			Field{
				Name:            FieldScheduleName,
				Label:           b.opts.Labeler("schedule_name"),
				Type:            FieldTypeText,
				Required:        true,
				VisibilityState: StateVisibleEnabled,
				Metadata:        map[string]string{"labelKey": "scheduleName"},
			},
			Field{
				Name:            FieldScheduleCategory,
				Label:           b.opts.Labeler("schedule_category"),
				Type:            FieldTypeText,
				Required:        true,
				VisibilityState: StateVisibleEnabled,
				Metadata:        map[string]string{"labelKey": "scheduleCategory"},
			},
		)
	}
	return out
}

func mapType(t params.Type, hasOptions bool) FieldType {
	switch t {
	case params.TypeText, params.TypeString, params.TypeStringOrAttr,
		params.TypeAttributeName, params.TypeDBConnection, params.TypeWebConnection,
		params.TypeScripted:
		return FieldTypeText
	case params.TypeStringOrChoice, params.TypeChoice, params.TypeLookupChoice:
		if hasOptions {
			return FieldTypeSelect
		}
		return FieldTypeText
	case params.TypeListbox, params.TypeLookupListbox, params.TypeAttributeList:
		if hasOptions {
			return FieldTypeMultiSelect
		}
		return FieldTypeText
	case params.TypeTextEdit:
		return FieldTypeTextarea
	case params.TypePassword:
		return FieldTypePassword
	case params.TypeInteger, params.TypeFloat:
		return FieldTypeNumericInput
	case params.TypeNumber:
		return FieldTypeNumber
	case params.TypeRangeSlider:
		return FieldTypeSlider
	case params.TypeCheckbox:
		return FieldTypeCheckbox
	case params.TypeBoolean:
		return FieldTypeSwitch
	case params.TypeDate:
		return FieldTypeDate
	case params.TypeTime:
		return FieldTypeTime
	case params.TypeDatetime, params.TypeDateTime:
		return FieldTypeDateTime
	case params.TypeColor, params.TypeColorPick:
		return FieldTypeColor
	case params.TypeTable:
		return FieldTypeTable
	case params.TypeFilename, params.TypeFilenameMustExist, params.TypeDirname,
		params.TypeDirnameMustExist, params.TypeDirnameSrc, params.TypeLookupFile,
		params.TypeReprojectionFile:
		return FieldTypeFile
	case params.TypeTextOrFile:
		return FieldTypeTextOrFile
	case params.TypeCoordSys:
		return FieldTypeCoordSys
	case params.TypeGeometry:
		return FieldTypeGeometry
	case params.TypeMessage:
		return FieldTypeMessage
	case params.TypeURL:
		return FieldTypeURL
	case params.TypeNoValue:
		return FieldTypeHidden
	default:
		return FieldTypeText
	}
}

func normalizeOptions(raw []params.Option, sanitize func(string) string) []Option {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Option, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, opt := range raw {
		value := OptionValueString(opt.Value)
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		label := sanitize(opt.Caption)
		if label == "" {
			label = value
		}
		out = append(out, Option{Value: value, Label: label})
	}
	return out
}

// OptionValueString renders an option value the way it is compared and
// submitted.
func OptionValueString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

// numericOptions reports whether every option value is a finite number whose
// canonical string form matches the original text.
func numericOptions(options []Option) bool {
	if len(options) == 0 {
		return false
	}
	for _, opt := range options {
		parsed, err := strconv.ParseFloat(opt.Value, 64)
		if err != nil || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
			return false
		}
		if strconv.FormatFloat(parsed, 'f', -1, 64) != opt.Value {
			return false
		}
	}
	return true
}

func toggleConfig(options []Option) *ToggleConfig {
	if len(options) == 2 {
		return &ToggleConfig{Checked: options[0].Value, Unchecked: options[1].Value}
	}
	return &ToggleConfig{Checked: "true", Unchecked: "false"}
}

func tableConfig(columns []params.Column, sanitize func(string) string) *TableConfig {
	cfg := &TableConfig{}
	for _, col := range columns {
		name := strings.TrimSpace(col.Name)
		if name == "" {
			continue
		}
		label := sanitize(col.Title)
		if label == "" {
			label = DefaultLabeler(name)
		}
		cfg.Columns = append(cfg.Columns, TableColumn{Name: name, Label: label, Type: strings.TrimSpace(col.Type)})
	}
	if len(cfg.Columns) == 0 {
		cfg.Columns = []TableColumn{{Name: "value", Label: "Value"}}
	}
	return cfg
}

func placeholderFor(field Field) string {
	switch field.Type {
	case FieldTypeDate:
		return "YYYY-MM-DD"
	case FieldTypeTime:
		return "HH:MM:SS"
	case FieldTypeDateTime:
		return "YYYY-MM-DD HH:MM:SS"
	case FieldTypeColor:
		return "#RRGGBB"
	case FieldTypeURL:
		return "https://"
	case FieldTypeNumber, FieldTypeNumericInput:
		switch {
		case field.Min != nil && field.Max != nil:
			return formatFloat(*field.Min) + " - " + formatFloat(*field.Max)
		case field.Min != nil:
			return ">= " + formatFloat(*field.Min)
		case field.Max != nil:
			return "<= " + formatFloat(*field.Max)
		}
	}
	return ""
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func (f *Field) ensureMetadata() map[string]string {
	if f.Metadata == nil {
		f.Metadata = make(map[string]string)
	}
	return f.Metadata
}
