package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSubstituteEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "test_value")
	defer os.Unsetenv("TEST_VAR")

	input := []byte("value: ${TEST_VAR}")
	expected := []byte("value: test_value")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestSubstituteEnvVarsMultiple(t *testing.T) {
	os.Setenv("VAR1", "value1")
	os.Setenv("VAR2", "value2")
	defer os.Unsetenv("VAR1")
	defer os.Unsetenv("VAR2")

	input := []byte("first: ${VAR1}\nsecond: ${VAR2}")
	expected := []byte("first: value1\nsecond: value2")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestSubstituteEnvVarsNotSet(t *testing.T) {
	os.Unsetenv("NONEXISTENT_VAR")

	input := []byte("value: ${NONEXISTENT_VAR}")
	expected := []byte("value: ${NONEXISTENT_VAR}") // unchanged

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestSubstituteEnvVarsNoVars(t *testing.T) {
	input := []byte("value: plain_text")
	expected := []byte("value: plain_text")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	os.Setenv("AGUACATE_DATA_DIR", "/srv/aguacate")
	os.Setenv("AGUACATE_PASSWORD", "s3cret")
	defer os.Unsetenv("AGUACATE_DATA_DIR")
	defer os.Unsetenv("AGUACATE_PASSWORD")

	content := `
auth:
  enabled: true
  user: "field"
  password: "${AGUACATE_PASSWORD}"

history:
  data_dir: "${AGUACATE_DATA_DIR}"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.History.DataDir != "/srv/aguacate" {
		t.Errorf("expected data dir /srv/aguacate, got %s", cfg.History.DataDir)
	}

	if cfg.Auth.Password != "s3cret" {
		t.Errorf("expected substituted password, got %s", cfg.Auth.Password)
	}
}

func TestSubstituteEnvVarsFallback(t *testing.T) {
	os.Unsetenv("AGUACATE_UNSET")
	os.Setenv("AGUACATE_SET", "from_env")
	defer os.Unsetenv("AGUACATE_SET")

	tests := []struct {
		input    string
		expected string
	}{
		{"value: ${AGUACATE_UNSET:-fallback}", "value: fallback"},
		{"value: ${AGUACATE_UNSET:-}", "value: "},
		{"value: ${AGUACATE_SET:-fallback}", "value: from_env"},
	}

	for _, tt := range tests {
		result := substituteEnvVars([]byte(tt.input))
		if string(result) != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, result)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvHost, "127.0.0.1")
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDataDir, "/var/lib/aguacate")
	t.Setenv(EnvSeed, "42")
	t.Setenv(EnvTraining, "false")

	cfg := Default()
	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("unexpected server: %+v", cfg.Server)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
	if cfg.History.DataDir != "/var/lib/aguacate" {
		t.Errorf("unexpected data dir %s", cfg.History.DataDir)
	}
	if cfg.Training.Seed != 42 || cfg.Training.Enabled {
		t.Errorf("unexpected training: %+v", cfg.Training)
	}
}

func TestApplyEnvOverridesInvalid(t *testing.T) {
	for _, key := range []string{EnvPort, EnvSeed, EnvTraining} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "not-a-value")

			if err := applyEnvOverrides(Default()); err == nil {
				t.Errorf("expected error for %s", key)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, source, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if source != "" {
		t.Errorf("expected defaults, got source %s", source)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}

	content := "server:\n  port: 7070\n"
	if err := os.WriteFile(filepath.Join(dir, "aguacate.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, source, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if source != "aguacate.yaml" {
		t.Errorf("expected aguacate.yaml, got %q", source)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected port 7070, got %d", cfg.Server.Port)
	}
}

func TestResolveInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 70000\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, _, err := Resolve(path); err == nil {
		t.Error("expected validation error")
	}

	if cfg := LoadOrDefault(path); cfg.Server.Port != 8080 {
		t.Errorf("expected fallback to defaults, got port %d", cfg.Server.Port)
	}
}
