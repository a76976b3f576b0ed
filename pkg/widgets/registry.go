package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-jobform/pkg/model"
)

// Built-in control identifiers exposed by the registry.
const (
	WidgetToggle      = "toggle"
	WidgetSelect      = "select"
	WidgetChips       = "chips"
	WidgetSlider      = "slider"
	WidgetNumber      = "number"
	WidgetDatePicker  = "date-picker"
	WidgetTimePicker  = "time-picker"
	WidgetColorPicker = "color-picker"
	WidgetTableEditor = "table-editor"
	WidgetFileUpload  = "file-upload"
	WidgetTextOrFile  = "text-or-file"
	WidgetTextArea    = "textarea"
	WidgetMessage     = "message"
)

// MetadataKey is the field metadata entry that pins a control explicitly.
const MetadataKey = "widget"

// Matcher decides whether a control should present the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects controls for fields based on explicit metadata or
// registered matchers. Higher priority wins; ties fall back to registration
// order. An empty registry never resolves a control.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher with the provided name and priority.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the control name for a field. Explicit widget metadata is
// honoured before matcher evaluation.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := strings.TrimSpace(field.Metadata[MetadataKey]); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate implements model.Decorator, recording the resolved control in
// each field's widget metadata unless one is already set.
func (r *Registry) Decorate(fields []model.Field) error {
	if r == nil {
		return nil
	}
	for i := range fields {
		widget, ok := r.Resolve(fields[i])
		if !ok || widget == "" {
			continue
		}
		if fields[i].Metadata == nil {
			fields[i].Metadata = make(map[string]string)
		}
		if fields[i].Metadata[MetadataKey] == "" {
			fields[i].Metadata[MetadataKey] = widget
		}
	}
	return nil
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetMessage, 100, func(field model.Field) bool {
		return field.Type == model.FieldTypeMessage
	})

	r.Register(WidgetToggle, 90, func(field model.Field) bool {
		return field.Type.IsBoolean()
	})

	r.Register(WidgetChips, 80, func(field model.Field) bool {
		return field.Type == model.FieldTypeMultiSelect
	})

	r.Register(WidgetSelect, 70, func(field model.Field) bool {
		if field.Type == model.FieldTypeSelect {
			return true
		}
		return len(field.Options) > 0 && field.Type == model.FieldTypeText
	})

	r.Register(WidgetSlider, 65, func(field model.Field) bool {
		return field.Type == model.FieldTypeSlider && field.Min != nil && field.Max != nil
	})

	r.Register(WidgetNumber, 60, func(field model.Field) bool {
		return field.Type.IsNumeric()
	})

	r.Register(WidgetDatePicker, 55, func(field model.Field) bool {
		return field.Type == model.FieldTypeDate || field.Type == model.FieldTypeDateTime
	})

	r.Register(WidgetTimePicker, 55, func(field model.Field) bool {
		return field.Type == model.FieldTypeTime
	})

	r.Register(WidgetColorPicker, 50, func(field model.Field) bool {
		return field.Type == model.FieldTypeColor
	})

	r.Register(WidgetTableEditor, 50, func(field model.Field) bool {
		return field.Type == model.FieldTypeTable
	})

	r.Register(WidgetFileUpload, 45, func(field model.Field) bool {
		return field.Type == model.FieldTypeFile
	})

	r.Register(WidgetTextOrFile, 45, func(field model.Field) bool {
		return field.Type == model.FieldTypeTextOrFile
	})

	r.Register(WidgetTextArea, 40, func(field model.Field) bool {
		return field.Type == model.FieldTypeTextarea
	})
}
