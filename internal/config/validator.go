package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks cfg and returns ValidationErrors when anything is wrong.
// A workspace source is required: either a server URL with a token or a
// fixtures directory.
func Validate(cfg *Config) error {
	var errs ValidationErrors
	add := func(field string, value interface{}, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if cfg.Repository == "" {
		add("repository", cfg.Repository, "is required")
	}

	switch {
	case cfg.Server.URL == "" && cfg.Fixtures.Dir == "":
		add("server.url", cfg.Server.URL, "is required unless fixtures.dir is set")
	case cfg.Server.URL != "":
		u, err := url.Parse(cfg.Server.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("server.url", cfg.Server.URL, "must be an absolute http(s) URL")
		}
		if cfg.Server.Token == "" {
			add("server.token", "", "is required with server.url")
		}
	}
	if cfg.Server.Timeout < 0 {
		add("server.timeout", cfg.Server.Timeout, "must not be negative")
	}

	switch cfg.Service {
	case "submit", "transact":
	default:
		add("service", cfg.Service, "must be submit or transact")
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log.level", cfg.Log.Level, "must be debug, info, warn or error")
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "auto", "text", "json":
	default:
		add("log.format", cfg.Log.Format, "must be auto, text or json")
	}

	if cfg.Loading.MinVisible < 0 {
		add("loading.min_visible", cfg.Loading.MinVisible, "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
