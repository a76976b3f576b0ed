package model

import "strings"

// ValueKind tags the variants of Value.
type ValueKind string

const (
	KindText       ValueKind = "text"
	KindNumber     ValueKind = "number"
	KindBool       ValueKind = "bool"
	KindList       ValueKind = "list"
	KindRows       ValueKind = "rows"
	KindTextOrFile ValueKind = "text-or-file"
	KindFileRef    ValueKind = "file-ref"
)

// Value is the closed set of shapes a form value can take. Only the types in
// this package implement it.
type Value interface {
	Kind() ValueKind
	// Raw returns a plain Go representation (string, float64, bool, []any,
	// map[string]any) suitable for expression evaluation and JSON encoding.
	Raw() any
	isValue()
}

// Text is a single-line or multi-line string value.
type Text string

// Number is a numeric value.
type Number float64

// Bool is a toggle value.
type Bool bool

// List is a multi-select value.
type List []string

// Rows is a table value; each row is keyed by column name.
type Rows []map[string]any

// TextOrFileMode selects which half of a TextOrFile value is active.
type TextOrFileMode string

const (
	ModeText TextOrFileMode = "text"
	ModeFile TextOrFileMode = "file"
)

// TextOrFile is the structured value of text-or-file fields. When Mode is
// ModeFile the file itself lives in the form's file side-table and FileName
// carries its display name.
type TextOrFile struct {
	Mode     TextOrFileMode `json:"mode"`
	Text     string         `json:"text,omitempty"`
	FileName string         `json:"fileName,omitempty"`
}

// FileRef is the display surrogate stored in place of an uploaded file.
type FileRef struct {
	Name string `json:"name"`
}

// File is an opaque uploaded file handle. Files are kept outside Values
// because they do not serialise like the other variants.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"-"`
}

// Size reports the file length in bytes.
func (f File) Size() int { return len(f.Data) }

func (Text) Kind() ValueKind       { return KindText }
func (Number) Kind() ValueKind     { return KindNumber }
func (Bool) Kind() ValueKind       { return KindBool }
func (List) Kind() ValueKind       { return KindList }
func (Rows) Kind() ValueKind       { return KindRows }
func (TextOrFile) Kind() ValueKind { return KindTextOrFile }
func (FileRef) Kind() ValueKind    { return KindFileRef }

func (v Text) Raw() any   { return string(v) }
func (v Number) Raw() any { return float64(v) }
func (v Bool) Raw() any   { return bool(v) }

func (v List) Raw() any {
	out := make([]any, len(v))
	for i, item := range v {
		out[i] = item
	}
	return out
}

func (v Rows) Raw() any {
	out := make([]any, len(v))
	for i, row := range v {
		clone := make(map[string]any, len(row))
		for k, cell := range row {
			clone[k] = cell
		}
		out[i] = clone
	}
	return out
}

func (v TextOrFile) Raw() any {
	out := map[string]any{"mode": string(v.Mode)}
	if v.Mode == ModeFile {
		out["file"] = v.FileName
	} else {
		out["text"] = v.Text
	}
	return out
}

func (v FileRef) Raw() any { return v.Name }

func (Text) isValue()       {}
func (Number) isValue()     {}
func (Bool) isValue()       {}
func (List) isValue()       {}
func (Rows) isValue()       {}
func (TextOrFile) isValue() {}
func (FileRef) isValue()    {}

// IsEmpty reports whether v counts as "no value" for required checks.
// Numbers and booleans are never empty once set.
func IsEmpty(v Value) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case Text:
		return strings.TrimSpace(string(typed)) == ""
	case List:
		return len(typed) == 0
	case Rows:
		return len(typed) == 0
	case TextOrFile:
		if typed.Mode == ModeFile {
			return typed.FileName == ""
		}
		return strings.TrimSpace(typed.Text) == ""
	case FileRef:
		return typed.Name == ""
	default:
		return false
	}
}

// Values maps field names to their current value. A missing key means the
// field has no value at all.
type Values map[string]Value

// Clone returns a deep copy of the map. List and Rows values get their own
// backing arrays and row maps.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = CloneValue(val)
	}
	return out
}

// CloneValue copies the mutable variants of Value. The others are returned
// as is.
func CloneValue(val Value) Value {
	switch typed := val.(type) {
	case List:
		if typed == nil {
			return typed
		}
		return append(List{}, typed...)
	case Rows:
		if typed == nil {
			return typed
		}
		out := make(Rows, len(typed))
		for i, row := range typed {
			clone := make(map[string]any, len(row))
			for col, cell := range row {
				clone[col] = cell
			}
			out[i] = clone
		}
		return out
	default:
		return val
	}
}

// Raw converts the map into plain Go values for expression evaluation.
func (v Values) Raw() map[string]any {
	out := make(map[string]any, len(v))
	for k, val := range v {
		if val == nil {
			continue
		}
		out[k] = val.Raw()
	}
	return out
}
