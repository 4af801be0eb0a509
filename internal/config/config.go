// Package config loads graphlog settings. A global file under the user's
// config directory is merged with an optional per-project file, project
// values winning. Malformed or missing inputs degrade to defaults; nothing
// here is fatal to recording.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds all configurable graphlog settings.
type Config struct {
	LogRoot       string `json:"log_root"`        // session folders live under <LogRoot>/<user>/
	ServerURL     string `json:"server_url"`      // collection server, empty disables forwarding
	DelayWindowMS int    `json:"delay_window_ms"` // change-coalescing window
	WriterParkMS  int    `json:"writer_park_ms"`  // log writer idle park
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		DelayWindowMS: 100,
		WriterParkMS:  100,
	}
}

// ConfigDir returns the graphlog config directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "graphlog"), nil
}

// LoadGlobal reads ~/.config/graphlog/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return loadFile(filepath.Join(dir, "config.json"), true)
}

// LoadProject reads .graphlogconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".graphlogconfig", false)
}

func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()

	apply := func(c *Config) {
		if c == nil {
			return
		}
		if c.LogRoot != "" {
			result.LogRoot = c.LogRoot
		}
		if c.ServerURL != "" {
			result.ServerURL = c.ServerURL
		}
		if c.DelayWindowMS > 0 {
			result.DelayWindowMS = c.DelayWindowMS
		}
		if c.WriterParkMS > 0 {
			result.WriterParkMS = c.WriterParkMS
		}
	}
	apply(global)
	apply(project)

	return result
}

// ResolveLogRoot expands the configured log root, defaulting to ~/GEL/GH
// when unset.
func (c Config) ResolveLogRoot() (string, error) {
	if c.LogRoot != "" {
		return c.LogRoot, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "GEL", "GH"), nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
