package validation

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/normalize"
)

// Error codes. Message text is resolved by the caller.
const (
	CodeRequired            = "required"
	CodeBelowMin            = "belowMin"
	CodeAboveMax            = "aboveMax"
	CodeInteger             = "integer"
	CodeNumber              = "number"
	CodeFormat              = "format"
	CodeScheduleStartFormat = "scheduleStartFormat"
	CodeURL                 = "url"
)

var scheduleStartPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

// Result is the outcome of a validation pass. IsValid is true exactly when
// Errors is empty.
type Result struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Check inspects one non-empty field value and returns an error code, or ""
// when the value is acceptable.
type Check func(field model.Field, value model.Value) string

// Validator computes per-field error codes.
type Validator struct {
	checks []Check
}

// Option customises a Validator.
type Option func(*Validator)

// WithCheck appends a check run after the built-in ones for every visible,
// non-empty field without an error.
func WithCheck(check Check) Option {
	return func(v *Validator) {
		if check != nil {
			v.checks = append(v.checks, check)
		}
	}
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate checks values against fields. Fields whose VisibilityState is
// hidden are exempt, as are fields that carry no value (messages, hidden
// parameters).
func (v *Validator) Validate(values model.Values, fields []model.Field) Result {
	errs := make(map[string]string)
	for _, field := range fields {
		if !field.VisibilityState.Visible() || !field.Type.HoldsValue() {
			continue
		}
		if code := v.validateField(field, values[field.Name]); code != "" {
			errs[field.Name] = code
		}
	}
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

func (v *Validator) validateField(field model.Field, value model.Value) string {
	if model.IsEmpty(value) {
		if field.Required {
			return CodeRequired
		}
		return ""
	}

	if code := checkField(field, value); code != "" {
		return code
	}
	for _, check := range v.checks {
		if code := check(field, value); code != "" {
			return code
		}
	}
	return ""
}

func checkField(field model.Field, value model.Value) string {
	if field.Name == model.FieldScheduleStart {
		if !scheduleStartPattern.MatchString(textValue(value)) {
			return CodeScheduleStartFormat
		}
		if _, ok := normalize.ParseEditDateTime(textValue(value)); !ok {
			return CodeScheduleStartFormat
		}
		return ""
	}

	switch {
	case field.Type.IsNumeric():
		return checkNumber(field, value)
	case field.Type == model.FieldTypeDate:
		return checkFormat(value, normalize.EditToWireDate)
	case field.Type == model.FieldTypeTime:
		return checkFormat(value, normalize.EditToWireTime)
	case field.Type == model.FieldTypeDateTime:
		return checkFormat(value, normalize.EditToWireDateTime)
	case field.Type == model.FieldTypeColor:
		return checkFormat(value, normalize.NormalizeHex)
	case field.Type == model.FieldTypeURL:
		return checkURL(textValue(value))
	}
	return ""
}

func checkNumber(field model.Field, value model.Value) string {
	n, ok := normalize.Number(value)
	if !ok {
		return CodeNumber
	}
	if field.DecimalPrecision != nil && *field.DecimalPrecision == 0 && n != math.Trunc(n) {
		return CodeInteger
	}
	if field.Min != nil {
		min := *field.Min
		if (field.MinExclusive && n <= min) || (!field.MinExclusive && n < min) {
			return CodeBelowMin
		}
	}
	if field.Max != nil {
		max := *field.Max
		if (field.MaxExclusive && n >= max) || (!field.MaxExclusive && n > max) {
			return CodeAboveMax
		}
	}
	return ""
}

func checkFormat(value model.Value, parse func(string) (string, bool)) string {
	if _, ok := parse(textValue(value)); !ok {
		return CodeFormat
	}
	return ""
}

func checkURL(raw string) string {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return CodeURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
		return ""
	default:
		return CodeURL
	}
}

func textValue(value model.Value) string {
	switch typed := value.(type) {
	case model.Text:
		return strings.TrimSpace(string(typed))
	case model.TextOrFile:
		return strings.TrimSpace(typed.Text)
	default:
		return ""
	}
}
