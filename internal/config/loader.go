package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. JOBFORM_SERVER_URL.
const EnvPrefix = "JOBFORM"

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// NewLoaderWithViper creates a loader using an existing viper instance so
// CLI flags bound to it take precedence.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads configuration. Precedence, highest first: bound flags,
// JOBFORM_* environment variables, the config file, defaults. The result
// is not validated; call Validate before use.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(".jobform")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "jobform"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Server.URL = strings.TrimSpace(cfg.Server.URL)
	cfg.Repository = strings.TrimSpace(cfg.Repository)
	return &cfg, nil
}

// ConfigFileUsed reports the file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// setDefaults registers every key so environment overrides are seen by
// Unmarshal.
func (l *Loader) setDefaults() {
	l.v.SetDefault("server.url", "")
	l.v.SetDefault("server.token", "")
	l.v.SetDefault("server.timeout", "30s")
	l.v.SetDefault("repository", "")
	l.v.SetDefault("service", "submit")
	l.v.SetDefault("locale", "")

	l.v.SetDefault("form.allow_upload", false)
	l.v.SetDefault("form.allow_remote_dataset", false)
	l.v.SetDefault("form.allow_schedule", false)
	l.v.SetDefault("form.upload_accept", []string{})
	l.v.SetDefault("form.dataset_parameter", "SourceDataset")

	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	l.v.SetDefault("fixtures.dir", "")
	l.v.SetDefault("loading.min_visible", "250ms")
}
