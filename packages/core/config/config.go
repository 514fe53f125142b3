package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigName is the base name of the config file, without extension.
	ConfigName = ".reqfile"
	// EnvPrefix prefixes environment variable overrides, e.g. REQFILE_TIMEOUT.
	EnvPrefix = "REQFILE"
)

// Config represents the reqfile configuration
type Config struct {
	DefaultEnvironment string            `mapstructure:"defaultEnvironment" yaml:"defaultEnvironment,omitempty"`
	Timeout            int               `mapstructure:"timeout" yaml:"timeout,omitempty"`             // milliseconds
	ScriptTimeout      int               `mapstructure:"scriptTimeout" yaml:"scriptTimeout,omitempty"` // milliseconds
	FollowRedirects    *bool             `mapstructure:"followRedirects" yaml:"followRedirects,omitempty"`
	MaxRedirects       int               `mapstructure:"maxRedirects" yaml:"maxRedirects,omitempty"`
	ValidateSSL        *bool             `mapstructure:"validateSSL" yaml:"validateSSL,omitempty"`
	Proxy              string            `mapstructure:"proxy" yaml:"proxy,omitempty"`
	Headers            map[string]string `mapstructure:"headers" yaml:"headers,omitempty"` // Default headers for all requests
	PublicEnvFile      string            `mapstructure:"publicEnvFile" yaml:"publicEnvFile,omitempty"`
	PrivateEnvFile     string            `mapstructure:"privateEnvFile" yaml:"privateEnvFile,omitempty"`
	SectionMarker      string            `mapstructure:"sectionMarker" yaml:"sectionMarker,omitempty"`
	HistoryFile        string            `mapstructure:"historyFile" yaml:"historyFile,omitempty"`
	LogLevel           string            `mapstructure:"logLevel" yaml:"logLevel,omitempty"`
	LogFormat          string            `mapstructure:"logFormat" yaml:"logFormat,omitempty"`
	NoColor            *bool             `mapstructure:"noColor" yaml:"noColor,omitempty"`
}

var keys = []string{
	"defaultEnvironment", "timeout", "scriptTimeout", "followRedirects", "maxRedirects",
	"validateSSL", "proxy", "publicEnvFile", "privateEnvFile", "sectionMarker",
	"historyFile", "logLevel", "logFormat", "noColor",
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30000,
		ScriptTimeout:   5000,
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		LogLevel:        "warn",
		LogFormat:       "text",
		NoColor:         BoolPtr(false),
	}
}

// SearchPaths returns the directories searched for a config file, in order.
func SearchPaths() []string {
	paths := []string{"."}
	if home, err := homedir.Dir(); err == nil {
		paths = append(paths, home, filepath.Join(home, ".config", "reqfile"))
	}
	return paths
}

// Load reads configuration from path, or searches SearchPaths for a
// .reqfile.{yaml,json} file when path is empty. A missing file during the
// search is not an error. REQFILE_* environment variables override file values.
func Load(fs afero.Fs, path string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.DefaultEnvironment != "" {
		result.DefaultEnvironment = other.DefaultEnvironment
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.ScriptTimeout > 0 {
		result.ScriptTimeout = other.ScriptTimeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.PublicEnvFile != "" {
		result.PublicEnvFile = other.PublicEnvFile
	}
	if other.PrivateEnvFile != "" {
		result.PrivateEnvFile = other.PrivateEnvFile
	}
	if other.SectionMarker != "" {
		result.SectionMarker = other.SectionMarker
	}
	if other.HistoryFile != "" {
		result.HistoryFile = other.HistoryFile
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		result.LogFormat = other.LogFormat
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// Save writes the configuration as YAML.
func (c *Config) Save(fs afero.Fs, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0o644)
}
