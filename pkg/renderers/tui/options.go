package tui

import (
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/goliatone/go-jobform/pkg/model"
)

// Theme captures optional prefixes the renderer applies when printing
// messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// FileReader loads a local file chosen for a file field.
type FileReader func(path string) (model.File, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithFileReader overrides how file paths entered by the user are loaded.
func WithFileReader(reader FileReader) Option {
	return func(r *Renderer) {
		if reader != nil {
			r.readFile = reader
		}
	}
}

// WithCorrectionPasses bounds how many times invalid fields are asked again
// before Render gives up.
func WithCorrectionPasses(passes int) Option {
	return func(r *Renderer) {
		if passes >= 0 {
			r.passes = passes
		}
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func readLocalFile(path string) (model.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.File{}, err
	}
	return model.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}
