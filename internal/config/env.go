package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// envVarRegex matches ${VAR} and ${VAR:-fallback}.
var envVarRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// substituteEnvVars expands environment references in the raw config file.
// Unset variables without a fallback are left untouched.
func substituteEnvVars(content []byte) []byte {
	return envVarRegex.ReplaceAllFunc(content, func(match []byte) []byte {
		groups := envVarRegex.FindSubmatch(match)
		if value, exists := os.LookupEnv(string(groups[1])); exists {
			return []byte(value)
		}
		// A nil group means no fallback was given.
		if groups[2] != nil {
			return groups[2]
		}
		return match
	})
}

// Environment variables that override single keys after the file is read.
const (
	EnvHost     = "AGUACATE_HOST"
	EnvPort     = "AGUACATE_PORT"
	EnvLogLevel = "AGUACATE_LOG_LEVEL"
	EnvDataDir  = "AGUACATE_DATA_DIR"
	EnvSeed     = "AGUACATE_SEED"
	EnvTraining = "AGUACATE_TRAINING"
)

func applyEnvOverrides(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvHost); ok {
		cfg.Server.Host = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = p
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvDataDir); ok {
		cfg.History.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Training.Seed = seed
	}
	if v, ok := os.LookupEnv(EnvTraining); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTraining, err)
		}
		cfg.Training.Enabled = enabled
	}
	return nil
}
