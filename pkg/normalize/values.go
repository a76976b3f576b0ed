package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-jobform/pkg/model"
)

// EmptyValue returns the well-typed "no value" for a field.
func EmptyValue(field model.Field) model.Value {
	switch field.Type {
	case model.FieldTypeMultiSelect:
		return model.List{}
	case model.FieldTypeTable:
		return model.Rows{}
	case model.FieldTypeCheckbox, model.FieldTypeSwitch:
		return model.Bool(false)
	case model.FieldTypeTextOrFile:
		return model.TextOrFile{Mode: model.ModeText}
	default:
		return model.Text("")
	}
}

// Value narrows raw input into the variant a field expects. Input in the
// wrong shape falls back to the field's empty value so controls always
// receive a well-typed value. Wire formats (compact dates, float colours,
// encoded tables) are converted into their edit formats.
func Value(field model.Field, raw any) model.Value {
	if raw == nil {
		return EmptyValue(field)
	}

	switch field.Type {
	case model.FieldTypeMultiSelect:
		return listValue(raw)
	case model.FieldTypeTable:
		return Table(raw, field.Table.ColumnNames())
	case model.FieldTypeCheckbox, model.FieldTypeSwitch:
		return boolValue(field, raw)
	case model.FieldTypeTextOrFile:
		return TextOrFile(raw)
	case model.FieldTypeFile:
		return fileValue(raw)
	case model.FieldTypeNumber, model.FieldTypeNumericInput, model.FieldTypeSlider:
		return numberValue(raw)
	case model.FieldTypeDate:
		return temporalValue(raw, WireToEditDate, EditToWireDate, EditDateLayout)
	case model.FieldTypeTime:
		return temporalValue(raw, WireToEditTime, EditToWireTime, EditTimeLayout)
	case model.FieldTypeDateTime:
		return temporalValue(raw, WireToEditDateTime, EditToWireDateTime, EditDateTimeLayout)
	case model.FieldTypeColor:
		return colorValue(field, raw)
	default:
		if s, ok := scalarString(raw); ok {
			return model.Text(s)
		}
		return EmptyValue(field)
	}
}

// ToWire converts a normalised value into the representation submitted to
// the remote service. Files are not handled here; the form state swaps them
// in for their surrogates.
func ToWire(field model.Field, value model.Value) any {
	if value == nil {
		return nil
	}
	switch field.Type {
	case model.FieldTypeDate:
		return wireString(value, EditToWireDate)
	case model.FieldTypeTime:
		return wireString(value, EditToWireTime)
	case model.FieldTypeDateTime:
		return wireString(value, EditToWireDateTime)
	case model.FieldTypeColor:
		return wireString(value, HexToWire)
	case model.FieldTypeTable:
		if rows, ok := value.(model.Rows); ok {
			return TableToWire(rows)
		}
	case model.FieldTypeMultiSelect:
		if list, ok := value.(model.List); ok {
			return append([]string{}, list...)
		}
	case model.FieldTypeCheckbox, model.FieldTypeSwitch:
		if b, ok := value.(model.Bool); ok {
			toggle := field.Toggle
			if toggle == nil {
				return bool(b)
			}
			if b {
				return toggle.Checked
			}
			return toggle.Unchecked
		}
	case model.FieldTypeNumber, model.FieldTypeNumericInput, model.FieldTypeSlider:
		if n, ok := Number(value); ok {
			return n
		}
	case model.FieldTypeSelect:
		if field.CoerceNumber {
			if n, ok := Number(value); ok {
				return n
			}
		}
	case model.FieldTypeTextOrFile:
		if tof, ok := value.(model.TextOrFile); ok {
			if tof.Mode == model.ModeFile {
				return tof.FileName
			}
			return tof.Text
		}
	}
	return value.Raw()
}

// Number extracts a finite float from numeric values or numeric strings.
func Number(raw any) (float64, bool) {
	var (
		f  float64
		ok bool
	)
	switch typed := raw.(type) {
	case model.Number:
		f, ok = float64(typed), true
	case model.Text:
		f, ok = parseFloat(string(typed))
	case float64:
		f, ok = typed, true
	case float32:
		f, ok = float64(typed), true
	case int:
		f, ok = float64(typed), true
	case int64:
		f, ok = float64(typed), true
	case int32:
		f, ok = float64(typed), true
	case uint:
		f, ok = float64(typed), true
	case uint64:
		f, ok = float64(typed), true
	case json.Number:
		f, ok = parseFloat(typed.String())
	case string:
		f, ok = parseFloat(typed)
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseList splits a multi-value default. JSON arrays are decoded; otherwise
// a comma-separated list is split on commas, and anything else on whitespace
// with double quotes grouping tokens.
func ParseList(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []any
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return stringsFrom(items)
		}
	}
	if strings.Contains(trimmed, ",") {
		var out []string
		for _, part := range strings.Split(trimmed, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return splitQuoted(trimmed)
}

// TextOrFile narrows input for text-or-file fields.
func TextOrFile(raw any) model.TextOrFile {
	switch typed := raw.(type) {
	case model.TextOrFile:
		if typed.Mode != model.ModeFile {
			typed.Mode = model.ModeText
		}
		return typed
	case model.File:
		return model.TextOrFile{Mode: model.ModeFile, FileName: typed.Name}
	case *model.File:
		if typed == nil {
			return model.TextOrFile{Mode: model.ModeText}
		}
		return model.TextOrFile{Mode: model.ModeFile, FileName: typed.Name}
	case model.FileRef:
		return model.TextOrFile{Mode: model.ModeFile, FileName: typed.Name}
	case model.Text:
		return model.TextOrFile{Mode: model.ModeText, Text: string(typed)}
	case string:
		return model.TextOrFile{Mode: model.ModeText, Text: typed}
	case map[string]any:
		mode, _ := typed["mode"].(string)
		if model.TextOrFileMode(mode) == model.ModeFile {
			name, _ := typed["fileName"].(string)
			if name == "" {
				name, _ = typed["file"].(string)
			}
			return model.TextOrFile{Mode: model.ModeFile, FileName: name}
		}
		text, _ := typed["text"].(string)
		return model.TextOrFile{Mode: model.ModeText, Text: text}
	default:
		return model.TextOrFile{Mode: model.ModeText}
	}
}

func listValue(raw any) model.Value {
	switch typed := raw.(type) {
	case model.List:
		return append(model.List{}, typed...)
	case []string:
		return append(model.List{}, typed...)
	case []any:
		return model.List(stringsFrom(typed))
	case model.Text:
		return model.List(ParseList(string(typed)))
	case string:
		return model.List(ParseList(typed))
	default:
		if s, ok := scalarString(raw); ok && s != "" {
			return model.List{s}
		}
		return model.List{}
	}
}

func boolValue(field model.Field, raw any) model.Value {
	switch typed := raw.(type) {
	case model.Bool:
		return typed
	case bool:
		return model.Bool(typed)
	case model.Text:
		return model.Bool(truthyString(field, string(typed)))
	case string:
		return model.Bool(truthyString(field, typed))
	default:
		if n, ok := Number(raw); ok {
			return model.Bool(n != 0)
		}
		return model.Bool(false)
	}
}

func truthyString(field model.Field, s string) bool {
	s = strings.TrimSpace(s)
	if field.Toggle != nil {
		if strings.EqualFold(s, field.Toggle.Checked) {
			return true
		}
		if strings.EqualFold(s, field.Toggle.Unchecked) {
			return false
		}
	}
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1", "on":
		return true
	default:
		return false
	}
}

func fileValue(raw any) model.Value {
	switch typed := raw.(type) {
	case model.FileRef:
		return typed
	case model.File:
		return model.FileRef{Name: typed.Name}
	case *model.File:
		if typed == nil {
			return model.Text("")
		}
		return model.FileRef{Name: typed.Name}
	case model.Text:
		return model.Text(typed)
	case string:
		return model.Text(typed)
	default:
		return model.Text("")
	}
}

func numberValue(raw any) model.Value {
	switch typed := raw.(type) {
	case model.Number:
		return typed
	case model.Text:
		return numberFromString(string(typed))
	case string:
		return numberFromString(typed)
	}
	if n, ok := Number(raw); ok {
		return model.Number(n)
	}
	return model.Text("")
}

// numberFromString keeps unparsable input as text so validation can report
// it instead of silently dropping what the user typed.
func numberFromString(s string) model.Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return model.Text("")
	}
	if n, ok := parseFloat(trimmed); ok {
		return model.Number(n)
	}
	return model.Text(trimmed)
}

func temporalValue(raw any, wireToEdit, editToWire func(string) (string, bool), layout string) model.Value {
	var s string
	switch typed := raw.(type) {
	case time.Time:
		return model.Text(typed.Format(layout))
	case model.Text:
		s = string(typed)
	case string:
		s = typed
	default:
		n, ok := Number(raw)
		if !ok || n < 0 || n != math.Trunc(n) {
			return model.Text("")
		}
		s = strconv.FormatFloat(n, 'f', 0, 64)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Text("")
	}
	if edit, ok := wireToEdit(s); ok {
		return model.Text(edit)
	}
	if _, ok := editToWire(s); ok && layout == EditDateTimeLayout {
		// Schedule-style input uses a space separator.
		return model.Text(strings.Replace(s, " ", "T", 1))
	}
	// Invalid input is kept so validation can flag it.
	return model.Text(s)
}

func colorValue(field model.Field, raw any) model.Value {
	s, ok := scalarString(raw)
	if !ok {
		return colorFallback(field)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Text("")
	}
	if hex, ok := NormalizeHex(s); ok && strings.HasPrefix(s, "#") {
		return model.Text(hex)
	}
	if hex, ok := WireToHex(s); ok {
		return model.Text(hex)
	}
	if hex, ok := NormalizeHex(s); ok {
		return model.Text(hex)
	}
	return colorFallback(field)
}

func colorFallback(field model.Field) model.Value {
	if field.Color != nil && field.Color.Default != "" {
		return model.Text(field.Color.Default)
	}
	return model.Text("")
}

func wireString(value model.Value, convert func(string) (string, bool)) any {
	text, ok := value.(model.Text)
	if !ok {
		return value.Raw()
	}
	s := strings.TrimSpace(string(text))
	if s == "" {
		return ""
	}
	if wire, ok := convert(s); ok {
		return wire
	}
	return s
}

func scalarString(raw any) (string, bool) {
	switch typed := raw.(type) {
	case model.Text:
		return string(typed), true
	case string:
		return typed, true
	case model.Number:
		return strconv.FormatFloat(float64(typed), 'f', -1, 64), true
	case model.Bool:
		return strconv.FormatBool(bool(typed)), true
	case bool:
		return strconv.FormatBool(typed), true
	case json.Number:
		return typed.String(), true
	case float64, float32, int, int64, int32, uint, uint64:
		n, _ := Number(typed)
		return strconv.FormatFloat(n, 'f', -1, 64), true
	default:
		return "", false
	}
}

func stringsFrom(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := scalarString(item); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func splitQuoted(s string) []string {
	var (
		out     []string
		current strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			out = append(out, current.String())
		}
		current.Reset()
		started = false
	}
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()
	return out
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
