package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/render"
)

const (
	defaultCorrectionPasses = 3

	textOrFileText = "Enter text"
	textOrFileFile = "Attach a file"
)

var _ render.Renderer = (*Renderer)(nil)

// Renderer walks a form view in a terminal, one prompt per visible field.
// Every answer goes through onChange and the next prompt is chosen from the
// returned view, so fields revealed or hidden by an answer are honoured.
type Renderer struct {
	driver   PromptDriver
	theme    Theme
	readFile FileReader
	passes   int
	logger   *slog.Logger
}

// New constructs a TUI renderer using the survey driver unless overridden.
func New(options ...Option) *Renderer {
	r := &Renderer{
		readFile: readLocalFile,
		passes:   defaultCorrectionPasses,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// Render prompts for every visible field, then asks again for fields that
// still fail validation.
func (r *Renderer) Render(ctx context.Context, view render.View, onChange render.ChangeFunc) error {
	if onChange == nil {
		return ErrNoChangeHandler
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	asked := make(map[string]bool, len(view.Fields))
	for {
		fv, ok := nextField(view, asked)
		if !ok {
			break
		}
		asked[fv.Field.Name] = true

		next, err := r.ask(ctx, fv, view, onChange)
		if err != nil {
			return err
		}
		view = next
	}

	for pass := 0; !view.Valid; pass++ {
		if pass >= r.passes {
			return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(view.Errors, ", "))
		}
		for _, name := range view.Errors {
			fv, ok := view.Field(name)
			if !ok || fv.Disabled {
				continue
			}
			r.info(ctx, r.theme.ErrorPrefix+displayLabel(fv.Field)+": "+fv.Message)
			next, err := r.ask(ctx, fv, view, onChange)
			if err != nil {
				return err
			}
			view = next
		}
	}
	return nil
}

func nextField(view render.View, asked map[string]bool) (render.FieldView, bool) {
	for _, fv := range view.Fields {
		if !asked[fv.Field.Name] {
			return fv, true
		}
	}
	return render.FieldView{}, false
}

// ask prompts for one field and applies the answer. Fields that take no
// input leave the view unchanged.
func (r *Renderer) ask(ctx context.Context, fv render.FieldView, view render.View, onChange render.ChangeFunc) (render.View, error) {
	value, skip, err := r.prompt(ctx, fv)
	if err != nil {
		return view, err
	}
	if skip {
		return view, nil
	}
	next, err := onChange(fv.Field.Name, value)
	if err != nil {
		return view, fmt.Errorf("tui: apply %s: %w", fv.Field.Name, err)
	}
	r.logger.Debug("field answered", "field", fv.Field.Name, "valid", next.Valid)
	return next, nil
}

func (r *Renderer) prompt(ctx context.Context, fv render.FieldView) (any, bool, error) {
	field := fv.Field
	switch field.Type {
	case model.FieldTypeMessage:
		r.info(ctx, r.theme.InfoPrefix+messageText(field))
		return nil, true, nil
	case model.FieldTypeHidden, model.FieldTypeGeometry:
		return nil, true, nil
	}
	if fv.Disabled {
		r.info(ctx, r.theme.InfoPrefix+displayLabel(field)+": "+defaultText(fv.Value))
		return nil, true, nil
	}

	label := displayLabel(field)
	help := displayHelp(field)

	switch field.Type {
	case model.FieldTypeCheckbox, model.FieldTypeSwitch:
		current, _ := fv.Value.(bool)
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: current, Help: help})
		return answer, false, err
	case model.FieldTypeSelect:
		return r.promptSelect(ctx, fv, label, help)
	case model.FieldTypeMultiSelect:
		return r.promptMultiSelect(ctx, fv, label, help)
	case model.FieldTypePassword:
		answer, err := r.driver.Password(ctx, InputConfig{Message: label, Help: help})
		return answer, false, err
	case model.FieldTypeTextarea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: defaultText(fv.Value), Help: help})
		return answer, false, err
	case model.FieldTypeNumber, model.FieldTypeNumericInput, model.FieldTypeSlider:
		return r.promptNumber(ctx, fv, label, help)
	case model.FieldTypeFile:
		return r.promptFile(ctx, fv, label, help)
	case model.FieldTypeTextOrFile:
		return r.promptTextOrFile(ctx, fv, label, help)
	case model.FieldTypeTable:
		return r.promptTable(ctx, fv, label, help)
	default:
		answer, err := r.driver.Input(ctx, InputConfig{Message: label, Default: defaultText(fv.Value), Help: help})
		return answer, false, err
	}
}

func (r *Renderer) promptSelect(ctx context.Context, fv render.FieldView, label, help string) (any, bool, error) {
	options := optionLabels(fv.Field.Options)
	current := defaultText(fv.Value)
	defaultIdx := -1
	for i, opt := range fv.Field.Options {
		if opt.Value == current {
			defaultIdx = i
		}
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         help,
		})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(options) {
			r.info(ctx, r.theme.ErrorPrefix+"Invalid "+label+" selection")
			continue
		}
		return fv.Field.Options[idx].Value, false, nil
	}
}

func (r *Renderer) promptMultiSelect(ctx context.Context, fv render.FieldView, label, help string) (any, bool, error) {
	selected := make(map[string]bool)
	if items, ok := fv.Value.([]any); ok {
		for _, item := range items {
			selected[fmt.Sprint(item)] = true
		}
	}
	var defaults []int
	for i, opt := range fv.Field.Options {
		if selected[opt.Value] {
			defaults = append(defaults, i)
		}
	}

	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  label,
		Options:  optionLabels(fv.Field.Options),
		Defaults: defaults,
		Help:     help,
	})
	if err != nil {
		return nil, false, err
	}
	values := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(fv.Field.Options) {
			values = append(values, fv.Field.Options[idx].Value)
		}
	}
	return values, false, nil
}

func (r *Renderer) promptNumber(ctx context.Context, fv render.FieldView, label, help string) (any, bool, error) {
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   defaultText(fv.Value),
			Help:      help,
			Validator: validateNumber,
		})
		if err != nil {
			return nil, false, err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return nil, false, nil
		}
		if err := validateNumber(input); err != nil {
			r.info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.ErrorPrefix, label, err))
			continue
		}
		n, _ := strconv.ParseFloat(input, 64)
		return n, false, nil
	}
}

func (r *Renderer) promptFile(ctx context.Context, fv render.FieldView, label, help string) (any, bool, error) {
	for {
		path, err := r.driver.Input(ctx, InputConfig{Message: label, Default: fv.FileName, Help: help})
		if err != nil {
			return nil, false, err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, false, nil
		}
		if fv.FileName != "" && path == fv.FileName {
			return nil, true, nil
		}
		file, err := r.readFile(path)
		if err != nil {
			r.info(ctx, fmt.Sprintf("%sCannot read %s: %v", r.theme.ErrorPrefix, path, err))
			continue
		}
		return file, false, nil
	}
}

func (r *Renderer) promptTextOrFile(ctx context.Context, fv render.FieldView, label, help string) (any, bool, error) {
	modes := []string{textOrFileText, textOrFileFile}
	current, _ := fv.Value.(map[string]any)
	defaultIdx := 0
	if current["mode"] == string(model.ModeFile) {
		defaultIdx = 1
	}

	idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: modes, DefaultIndex: defaultIdx, Help: help})
	if err != nil {
		return nil, false, err
	}
	if idx == 1 {
		return r.promptFile(ctx, fv, label, help)
	}

	text, _ := current["text"].(string)
	answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: text, Help: help})
	if err != nil {
		return nil, false, err
	}
	return map[string]any{"mode": string(model.ModeText), "text": answer}, false, nil
}

func (r *Renderer) promptTable(ctx context.Context, fv render.FieldView, label, help string) (any, bool, error) {
	current := "[]"
	if fv.Value != nil {
		if data, err := json.Marshal(fv.Value); err == nil {
			current = string(data)
		}
	}
	columns := ""
	if fv.Field.Table != nil {
		columns = strings.Join(fv.Field.Table.ColumnNames(), ", ")
	}
	if columns != "" {
		help = strings.TrimSpace(help + " (JSON rows with columns: " + columns + ")")
	}

	for {
		input, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current, Help: help})
		if err != nil {
			return nil, false, err
		}
		if strings.TrimSpace(input) == "" {
			return nil, false, nil
		}
		var rows []map[string]any
		if err := json.Unmarshal([]byte(input), &rows); err != nil {
			r.info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.ErrorPrefix, label, err))
			continue
		}
		return rows, false, nil
	}
}

func (r *Renderer) info(ctx context.Context, msg string) {
	if err := r.driver.Info(ctx, msg); err != nil {
		r.logger.Debug("info message dropped", "error", err)
	}
}

func validateNumber(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}

func displayLabel(field model.Field) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if field.Required {
		label += " *"
	}
	return label
}

func displayHelp(field model.Field) string {
	help := field.Description
	if field.Placeholder != "" {
		if help != "" {
			help += " "
		}
		help += "(" + field.Placeholder + ")"
	}
	return help
}

func messageText(field model.Field) string {
	if field.Description != "" && field.Description != field.Label {
		return field.Label + "\n" + field.Description
	}
	return field.Label
}

func optionLabels(options []model.Option) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		out = append(out, label)
	}
	return out
}

func defaultText(value any) string {
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
		return strings.Join(parts, ", ")
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			return text
		}
		if file, ok := v["file"].(string); ok {
			return file
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}
