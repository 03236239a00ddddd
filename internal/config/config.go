// Package config handles the configuration directory, settings and file paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// SessionFile is the stored credential pair filename.
	SessionFile = "session.json"

	// SettingsFile is the optional settings file name (without extension).
	SettingsFile = "config"

	// EnvPrefix prefixes environment overrides (TODO_API_BASE, TODO_TIMEOUT).
	EnvPrefix = "TODO"

	// DefaultAPIBase is the backend base URL used when nothing else is configured.
	DefaultAPIBase = "http://127.0.0.1:8000/api"

	// DefaultTimeout bounds every backend call.
	DefaultTimeout = 10 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIBase is the backend base URL, without trailing slash.
	APIBase string

	// Timeout is the per-call backend timeout.
	Timeout time.Duration

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
// Settings are read from config.yaml in that directory (if present) and from
// TODO_* environment variables, in increasing order of precedence.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName(SettingsFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("api_base", DefaultAPIBase)
	v.SetDefault("timeout", DefaultTimeout)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("invalid %s.yaml: %w", SettingsFile, err)
		}
	}

	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout: %s", v.GetString("timeout"))
	}

	cfg := &Config{
		Dir:     dir,
		Timeout: timeout,
	}
	cfg.SetAPIBase(v.GetString("api_base"))
	return cfg, nil
}

// SetAPIBase sets the backend base URL, dropping any trailing slash.
func (c *Config) SetAPIBase(base string) {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	c.APIBase = base
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}
