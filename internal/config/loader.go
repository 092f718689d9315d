package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPaths are tried in order when no config file is given.
var DefaultPaths = []string{
	"aguacate.yaml",
	"/etc/aguacate/config.yaml",
}

// Load reads a config file over the defaults, expands ${VAR} references,
// applies AGUACATE_* overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	data = substituteEnvVars(data)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Resolve loads the given file, or the first of DefaultPaths that exists,
// or the defaults. It returns the path actually read, empty for defaults.
func Resolve(path string) (*Config, string, error) {
	if path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}

	for _, candidate := range DefaultPaths {
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := Load(candidate)
			return cfg, candidate, err
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, candidate, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Default()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, "", fmt.Errorf("invalid environment override: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, "", nil
}

// LoadOrDefault is Resolve that falls back to the defaults on any error.
func LoadOrDefault(path string) *Config {
	cfg, _, err := Resolve(path)
	if err != nil {
		return Default()
	}
	return cfg
}
