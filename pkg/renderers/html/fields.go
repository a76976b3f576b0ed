package html

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/widgets"
)

// fieldData is the flattened shape the templates consume.
type fieldData struct {
	Name     string
	ID       string
	Label    string
	Help     string
	Control  string
	Input    string
	Value    string
	Checked  bool
	Multiple bool
	Required bool
	Disabled bool
	Min      string
	Max      string
	Step     string
	Accept   string
	FileName string
	Error    string
	Message  string
	HTML     string
	Options  []optionData
	Columns  []string
	Rows     [][]string
}

type optionData struct {
	Value    string
	Label    string
	Selected bool
}

func (r *Renderer) fieldData(fv render.FieldView) fieldData {
	field := fv.Field
	data := fieldData{
		Name:     field.Name,
		ID:       "field-" + strings.ToLower(field.Name),
		Label:    field.Label,
		Help:     field.Description,
		Control:  fv.Control,
		Required: field.Required,
		Disabled: fv.Disabled,
		FileName: fv.FileName,
		Error:    fv.Error,
		Message:  fv.Message,
	}
	if data.Label == "" {
		data.Label = field.Name
	}
	if data.Help == data.Label {
		data.Help = ""
	}

	switch fv.Control {
	case widgets.WidgetMessage:
		text := field.Label
		if field.Description != "" && field.Description != field.Label {
			text += "<br>" + field.Description
		}
		data.HTML = r.policy.Sanitize(text)
	case widgets.WidgetToggle:
		data.Checked, _ = fv.Value.(bool)
	case widgets.WidgetSelect, widgets.WidgetChips:
		selected := selectedValues(fv.Value)
		data.Multiple = field.Type == model.FieldTypeMultiSelect
		for _, opt := range field.Options {
			label := opt.Label
			if label == "" {
				label = opt.Value
			}
			_, ok := selected[opt.Value]
			data.Options = append(data.Options, optionData{Value: opt.Value, Label: label, Selected: ok})
		}
	case widgets.WidgetNumber, widgets.WidgetSlider:
		data.Input = "number"
		if fv.Control == widgets.WidgetSlider {
			data.Input = "range"
		}
		data.Min = formatFloat(field.Min)
		data.Max = formatFloat(field.Max)
		data.Step = formatFloat(field.Step)
		if data.Step == "" && field.DecimalPrecision != nil && *field.DecimalPrecision == 0 {
			data.Step = "1"
		}
		data.Value = scalarText(fv.Value)
	case widgets.WidgetDatePicker:
		data.Input = dateInput(field.Type)
		data.Value = scalarText(fv.Value)
	case widgets.WidgetTimePicker:
		data.Input = "time"
		data.Value = scalarText(fv.Value)
	case widgets.WidgetColorPicker:
		data.Input = "color"
		data.Value = scalarText(fv.Value)
	case widgets.WidgetFileUpload:
		if field.File != nil {
			data.Accept = strings.Join(field.File.Accept, ",")
		}
	case widgets.WidgetTextOrFile:
		if v, ok := fv.Value.(map[string]any); ok {
			data.Value, _ = v["text"].(string)
			if name, ok := v["file"].(string); ok && data.FileName == "" {
				data.FileName = name
			}
		}
	case widgets.WidgetTableEditor:
		data.Columns = field.Table.ColumnNames()
		data.Rows = tableRows(fv.Value, data.Columns)
	default:
		data.Input = textInput(field.Type)
		data.Value = scalarText(fv.Value)
	}
	return data
}

func selectedValues(value any) map[string]struct{} {
	out := make(map[string]struct{})
	switch v := value.(type) {
	case string:
		out[v] = struct{}{}
	case []any:
		for _, item := range v {
			out[fmt.Sprint(item)] = struct{}{}
		}
	}
	return out
}

func tableRows(value any, columns []string) [][]string {
	rows, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([][]string, 0, len(rows))
	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		cells := make([]string, len(columns))
		for i, col := range columns {
			if cell, ok := row[col]; ok && cell != nil {
				cells[i] = fmt.Sprint(cell)
			}
		}
		out = append(out, cells)
	}
	return out
}

func scalarText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		sort.Strings(parts)
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func dateInput(t model.FieldType) string {
	if t == model.FieldTypeDateTime {
		return "datetime-local"
	}
	return "date"
}

func textInput(t model.FieldType) string {
	switch t {
	case model.FieldTypePassword:
		return "password"
	case model.FieldTypeURL:
		return "url"
	case model.FieldTypeHidden:
		return "hidden"
	default:
		return "text"
	}
}
