// Package config loads jobform settings from flags, JOBFORM_* environment
// variables and .jobform.yaml.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig   `mapstructure:"server"`
	Repository string         `mapstructure:"repository"`
	Service    string         `mapstructure:"service"`
	Form       FormConfig     `mapstructure:"form"`
	Log        LogConfig      `mapstructure:"log"`
	Fixtures   FixturesConfig `mapstructure:"fixtures"`
	Loading    LoadingConfig  `mapstructure:"loading"`
	Locale     string         `mapstructure:"locale"`
}

// ServerConfig points at the remote processing service.
type ServerConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FormConfig toggles the synthetic fields appended to every form.
type FormConfig struct {
	AllowUpload        bool     `mapstructure:"allow_upload"`
	AllowRemoteDataset bool     `mapstructure:"allow_remote_dataset"`
	AllowSchedule      bool     `mapstructure:"allow_schedule"`
	UploadAccept       []string `mapstructure:"upload_accept"`
	DatasetParameter   string   `mapstructure:"dataset_parameter"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FixturesConfig serves workspaces from local files instead of the server.
type FixturesConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoadingConfig tunes the loading indicator.
type LoadingConfig struct {
	MinVisible time.Duration `mapstructure:"min_visible"`
}

// Offline reports whether workspaces come from fixture files.
func (c *Config) Offline() bool {
	return c.Fixtures.Dir != "" && c.Server.URL == ""
}
