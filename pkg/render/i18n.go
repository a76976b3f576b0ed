package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/validation"
)

const (
	fieldLabelKeyHint       = "labelKey"
	fieldDescriptionKeyHint = "descriptionKey"
	fieldPlaceholderKeyHint = "placeholderKey"

	validationKeyPrefix = "validation."
)

// ErrMissingTranslator is passed to the missing handler when no translator
// is configured.
var ErrMissingTranslator = errors.New("render: translator is not configured")

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler produces the string used when key has no
// translation. args carries a {"default": fallback} map as its first entry.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Localize translates field labels, descriptions, placeholders and error
// messages in place. Fields opt in through labelKey, descriptionKey and
// placeholderKey metadata; error messages use "validation.<code>" keys.
func Localize(view *View, locale string, t Translator, onMissing MissingTranslationHandler) {
	if view == nil {
		return
	}
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	for i := range view.Fields {
		fv := &view.Fields[i]
		meta := fv.Field.Metadata
		if key := strings.TrimSpace(meta[fieldLabelKeyHint]); key != "" {
			fv.Field.Label = translate(locale, key, fv.Field.Label, t, onMissing)
		}
		if key := strings.TrimSpace(meta[fieldDescriptionKeyHint]); key != "" {
			fv.Field.Description = translate(locale, key, fv.Field.Description, t, onMissing)
		}
		if key := strings.TrimSpace(meta[fieldPlaceholderKeyHint]); key != "" {
			fv.Field.Placeholder = translate(locale, key, fv.Field.Placeholder, t, onMissing)
		}
		if fv.Error != "" {
			key, args := messageKey(fv.Error, fv.Field)
			fv.Message = translate(locale, key, fv.Message, t, onMissing, args...)
		}
	}
}

// DefaultMessage returns the English message for a validation code.
func DefaultMessage(code string, field model.Field) string {
	switch code {
	case validation.CodeRequired:
		return "This field is required"
	case validation.CodeBelowMin:
		if field.Min == nil {
			return "Value is too small"
		}
		if field.MinExclusive {
			return "Must be greater than " + formatBound(*field.Min)
		}
		return "Must be at least " + formatBound(*field.Min)
	case validation.CodeAboveMax:
		if field.Max == nil {
			return "Value is too large"
		}
		if field.MaxExclusive {
			return "Must be less than " + formatBound(*field.Max)
		}
		return "Must be at most " + formatBound(*field.Max)
	case validation.CodeInteger:
		return "Must be a whole number"
	case validation.CodeNumber:
		return "Must be a number"
	case validation.CodeScheduleStartFormat:
		return "Use the format YYYY-MM-DD HH:MM:SS"
	case validation.CodeURL:
		return "Must be a valid URL"
	case validation.CodeFormat:
		switch field.Type {
		case model.FieldTypeDate:
			return "Use the format YYYY-MM-DD"
		case model.FieldTypeTime:
			return "Use the format HH:MM"
		case model.FieldTypeDateTime:
			return "Use the format YYYY-MM-DDTHH:MM"
		case model.FieldTypeColor:
			return "Use a #RRGGBB colour"
		}
		return "Invalid format"
	default:
		return fmt.Sprintf("Invalid value (%s)", code)
	}
}

// messageKey returns the translation key of a validation code. Range codes
// get a variant per bound kind and receive the bound as their argument.
func messageKey(code string, field model.Field) (string, []any) {
	key := validationKeyPrefix + code
	var bound *float64
	var exclusive bool
	switch code {
	case validation.CodeBelowMin:
		bound, exclusive = field.Min, field.MinExclusive
	case validation.CodeAboveMax:
		bound, exclusive = field.Max, field.MaxExclusive
	default:
		return key, nil
	}
	switch {
	case bound == nil:
		return key + "Unbounded", nil
	case exclusive:
		return key + "Exclusive", []any{formatBound(*bound)}
	default:
		return key, []any{formatBound(*bound)}
	}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler, params ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	args := []any{map[string]any{"default": fallback}}
	if t == nil {
		return onMissing(locale, key, args, ErrMissingTranslator)
	}

	result, err := t.Translate(locale, key, params...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, args, err)
}

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	if len(args) > 0 {
		if values, ok := args[0].(map[string]any); ok {
			if fallback, ok := values["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}
