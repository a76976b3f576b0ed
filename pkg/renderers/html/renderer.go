// Package html renders a form view as a server-side HTML fragment using
// pongo2 templates. Field changes are expected to be posted back to the JSON
// API; the markup only carries names, values and validation messages.
package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-jobform/pkg/render"
)

// ErrNoTemplates reports a renderer configured without a template bundle.
var ErrNoTemplates = errors.New("html: template bundle is required")

const formTemplate = "form.tpl"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	action     string
	policy     *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// form.tpl at its root.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithAction sets the form action attribute.
func WithAction(action string) Option {
	return func(cfg *config) {
		cfg.action = action
	}
}

// WithPolicy replaces the policy applied to message markup.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Renderer turns views into HTML.
type Renderer struct {
	form   *pongo2.Template
	action string
	policy *bluemonday.Policy
}

// New parses the template bundle.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		action:     "/form/submit",
		policy:     bluemonday.UGCPolicy(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		return nil, ErrNoTemplates
	}

	set := pongo2.NewSet("jobform", pongo2.NewFSLoader(cfg.templateFS))
	form, err := set.FromFile(formTemplate)
	if err != nil {
		return nil, fmt.Errorf("html: parse %s: %w", formTemplate, err)
	}
	return &Renderer{form: form, action: cfg.action, policy: cfg.policy}, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "html"
}

// ContentType reports the media type of the rendered output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render executes the form template for view.
func (r *Renderer) Render(ctx context.Context, view render.View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := make([]fieldData, 0, len(view.Fields))
	for _, fv := range view.Fields {
		fields = append(fields, r.fieldData(fv))
	}

	var buf bytes.Buffer
	err := r.form.ExecuteWriter(pongo2.Context{
		"workspace": view.Workspace,
		"action":    r.action,
		"valid":     view.Valid,
		"invalid":   len(view.Errors),
		"geometry":  view.Geometry,
		"fields":    fields,
	}, &buf)
	if err != nil {
		return nil, fmt.Errorf("html: render form: %w", err)
	}
	return buf.Bytes(), nil
}

// Document adapts the renderer to render.Renderer. Render writes the markup
// of the view to w and never calls onChange.
func (r *Renderer) Document(w io.Writer) render.Renderer {
	return documentRenderer{html: r, w: w}
}

type documentRenderer struct {
	html *Renderer
	w    io.Writer
}

func (d documentRenderer) Name() string {
	return d.html.Name()
}

func (d documentRenderer) Render(ctx context.Context, view render.View, _ render.ChangeFunc) error {
	page, err := d.html.Render(ctx, view)
	if err != nil {
		return err
	}
	_, err = d.w.Write(page)
	return err
}
