package model

import (
	"fmt"

	"github.com/goliatone/go-jobform/internal/model"
	"github.com/goliatone/go-jobform/pkg/params"
)

// Builder converts parameter descriptors into field configurations.
type Builder interface {
	Build(descriptors []params.Descriptor) ([]Field, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler            func(string) string
	sanitizer          func(string) string
	allowUpload        bool
	allowRemoteDataset bool
	allowSchedule      bool
	uploadAccept       []string
	decorators         []Decorator
}

// WithLabeler overrides the label fallback used when a descriptor has no
// description.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithSanitizer overrides the markup stripping applied to remote labels.
func WithSanitizer(sanitizer func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.sanitizer = sanitizer
	}
}

// WithUpload appends the synthetic upload-file field. accept lists the
// allowed file extensions or MIME types.
func WithUpload(enabled bool, accept ...string) BuilderOption {
	return func(opts *builderOptions) {
		opts.allowUpload = enabled
		opts.uploadAccept = append([]string(nil), accept...)
	}
}

// WithRemoteDataset appends the synthetic remote-dataset URL field.
func WithRemoteDataset(enabled bool) BuilderOption {
	return func(opts *builderOptions) {
		opts.allowRemoteDataset = enabled
	}
}

// WithSchedule appends the synthetic schedule fields.
func WithSchedule(enabled bool) BuilderOption {
	return func(opts *builderOptions) {
		opts.allowSchedule = enabled
	}
}

// WithDecorators runs decorators, in order, over every built field list.
func WithDecorators(decorators ...Decorator) BuilderOption {
	return func(opts *builderOptions) {
		for _, d := range decorators {
			if d != nil {
				opts.decorators = append(opts.decorators, d)
			}
		}
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	inner := model.New(model.Options{
		Labeler:            cfg.labeler,
		Sanitizer:          cfg.sanitizer,
		AllowUpload:        cfg.allowUpload,
		AllowRemoteDataset: cfg.allowRemoteDataset,
		AllowSchedule:      cfg.allowSchedule,
		UploadAccept:       cfg.uploadAccept,
	})
	if len(cfg.decorators) == 0 {
		return inner
	}
	return &decoratingBuilder{inner: inner, decorators: cfg.decorators}
}

type decoratingBuilder struct {
	inner      Builder
	decorators []Decorator
}

func (b *decoratingBuilder) Build(descriptors []params.Descriptor) ([]Field, error) {
	fields, err := b.inner.Build(descriptors)
	if err != nil {
		return nil, err
	}
	for _, d := range b.decorators {
		if err := d.Decorate(fields); err != nil {
			return nil, fmt.Errorf("model: decorate fields: %w", err)
		}
	}
	return fields, nil
}
