package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newTestLoader returns a loader that searches no default paths and
// reads the environment from env
func newTestLoader(env map[string]string, paths ...string) *Loader {
	return &Loader{
		configPaths: paths,
		getenv:      func(key string) string { return env[key] },
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := newTestLoader(nil).LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.Server.BaseURL != DefaultConfig().Server.BaseURL {
		t.Errorf("Expected default base URL, got %s", cfg.Server.BaseURL)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "test-config.yaml", `version: "1.0"
server:
  base_url: "http://recs.example.com:8000"
  timeout: 2s
  breaker:
    failure_threshold: 3
ui:
  default_algorithm: "KNN Basic"
  theme: minimal
output:
  default_format: "json"
`)

	cfg, err := newTestLoader(nil).LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.Server.BaseURL != "http://recs.example.com:8000" {
		t.Errorf("Expected base URL from file, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 2*time.Second {
		t.Errorf("Expected timeout 2s, got %v", cfg.Server.Timeout)
	}
	if cfg.Server.Breaker.FailureThreshold != 3 {
		t.Errorf("Expected failure threshold 3, got %d", cfg.Server.Breaker.FailureThreshold)
	}
	if cfg.UI.Theme != "minimal" {
		t.Errorf("Expected theme minimal, got %s", cfg.UI.Theme)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected output format json, got %s", cfg.Output.DefaultFormat)
	}

	// Keys the file leaves out keep their defaults
	defaults := DefaultConfig()
	if cfg.Server.RateLimit != defaults.Server.RateLimit {
		t.Errorf("Expected default rate limit, got %v", cfg.Server.RateLimit)
	}
	if cfg.Server.Breaker.Timeout != defaults.Server.Breaker.Timeout {
		t.Errorf("Expected default breaker timeout, got %v", cfg.Server.Breaker.Timeout)
	}
	if cfg.Output.ColorMode != "auto" {
		t.Errorf("Expected default color mode, got %s", cfg.Output.ColorMode)
	}
}

func TestLoadConfigPriority(t *testing.T) {
	dir := t.TempDir()
	project := writeConfig(t, dir, "project.yaml", "ui:\n  theme: minimal\n")
	system := writeConfig(t, dir, "system.yaml", "ui:\n  theme: high-contrast\noutput:\n  default_format: csv\n")

	cfg, err := newTestLoader(nil, project, system).LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.UI.Theme != "minimal" {
		t.Errorf("Expected higher priority file to win, got theme %s", cfg.UI.Theme)
	}
	if cfg.Output.DefaultFormat != "csv" {
		t.Errorf("Expected lower priority value to survive, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "invalid-config.yaml", `version: "1.0"
server:
  base_url: "http://localhost:5000
  timeout: 2s
`)

	if _, err := newTestLoader(nil).LoadConfig(configPath); err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "bad.yaml", "ui:\n  default_algorithm: ALS\n")

	_, err := newTestLoader(nil).LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected validation error, got none")
	}
	if !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	loader := newTestLoader(map[string]string{
		"MOVIEREC_SERVER_BASE_URL":       "https://recs.example.com",
		"MOVIEREC_SERVER_TIMEOUT":        "750ms",
		"MOVIEREC_SERVER_RATE_LIMIT":     "2.5",
		"MOVIEREC_SERVER_BURST":          "4",
		"MOVIEREC_UI_DEFAULT_ALGORITHM":  "CoClustering",
		"MOVIEREC_UI_NO_EMOJI":           "true",
		"MOVIEREC_OUTPUT_DEFAULT_FORMAT": "markdown",
		"MOVIEREC_LOG_VERBOSE":           "1",
	})
	cfg := DefaultConfig()

	if err := loader.applyEnvOverrides(cfg); err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	if cfg.Server.BaseURL != "https://recs.example.com" {
		t.Errorf("Expected base URL override, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 750*time.Millisecond {
		t.Errorf("Expected timeout 750ms, got %v", cfg.Server.Timeout)
	}
	if cfg.Server.RateLimit != 2.5 {
		t.Errorf("Expected rate limit 2.5, got %v", cfg.Server.RateLimit)
	}
	if cfg.Server.Burst != 4 {
		t.Errorf("Expected burst 4, got %d", cfg.Server.Burst)
	}
	if cfg.UI.DefaultAlgorithm != "CoClustering" {
		t.Errorf("Expected CoClustering, got %s", cfg.UI.DefaultAlgorithm)
	}
	if !cfg.UI.NoEmoji {
		t.Error("Expected no_emoji to be true")
	}
	if cfg.Output.DefaultFormat != "markdown" {
		t.Errorf("Expected markdown, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Log.Verbose {
		t.Error("Expected verbose to be true")
	}
}

func TestEnvOverridesBeatFiles(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "cfg.yaml", "output:\n  default_format: csv\n")
	loader := newTestLoader(map[string]string{"MOVIEREC_OUTPUT_DEFAULT_FORMAT": "json"})

	cfg, err := loader.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected env override to win, got %s", cfg.Output.DefaultFormat)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid int", "MOVIEREC_SERVER_BURST", "not-a-number"},
		{"invalid float", "MOVIEREC_SERVER_RATE_LIMIT", "fast"},
		{"invalid bool", "MOVIEREC_LOG_VERBOSE", "not-a-bool"},
		{"invalid duration", "MOVIEREC_SERVER_TIMEOUT", "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newTestLoader(map[string]string{tt.envVar: tt.value})

			err := loader.applyEnvOverrides(DefaultConfig())
			if err == nil {
				t.Fatal("Expected error for invalid env var value, but got none")
			}
			if !strings.Contains(err.Error(), tt.envVar) {
				t.Errorf("Expected error to name %s, got %v", tt.envVar, err)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.yaml")
	present := writeConfig(t, dir, "present.yaml", "version: \"1.0\"\n")

	loader := newTestLoader(nil, missing, present)
	if got := loader.ResolvePath(""); got != present {
		t.Errorf("Expected %s, got %s", present, got)
	}
	if got := loader.ResolvePath("custom.yaml"); got != "custom.yaml" {
		t.Errorf("Expected custom path, got %s", got)
	}
	if got := newTestLoader(nil, missing).ResolvePath(""); got != "" {
		t.Errorf("Expected no path, got %s", got)
	}
}

func TestParseDuration(t *testing.T) {
	var duration time.Duration

	if err := parseDuration("30s", &duration); err != nil {
		t.Errorf("Failed to parse duration: %v", err)
	}
	if duration != 30*time.Second {
		t.Errorf("Expected 30s, got %v", duration)
	}

	if err := parseDuration("invalid", &duration); err == nil {
		t.Error("Expected error for invalid duration, but got none")
	}
}

func TestParseBool(t *testing.T) {
	var value bool

	if err := parseBool("true", &value); err != nil || !value {
		t.Errorf("Expected true, got %v (err %v)", value, err)
	}
	if err := parseBool("false", &value); err != nil || value {
		t.Errorf("Expected false, got %v (err %v)", value, err)
	}
	if err := parseBool("not-a-bool", &value); err == nil {
		t.Error("Expected error for invalid bool, but got none")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/.config/movierec/config.yaml"); got != filepath.Join(home, ".config/movierec/config.yaml") {
		t.Errorf("Unexpected expansion: %s", got)
	}
	if got := ExpandPath("/etc/movierec/config.yaml"); got != "/etc/movierec/config.yaml" {
		t.Errorf("Absolute path changed: %s", got)
	}
}

func TestFileExists(t *testing.T) {
	if fileExists("/path/that/does/not/exist") {
		t.Error("Expected file to not exist, but fileExists returned true")
	}

	tempFile := writeConfig(t, t.TempDir(), "test-file", "test")
	if !fileExists(tempFile) {
		t.Error("Expected file to exist, but fileExists returned false")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid yaml file",
			path: "config.yaml",
		},
		{
			name: "valid yml file",
			path: "config.yml",
		},
		{
			name:    "path traversal attempt",
			path:    "../../../etc/passwd",
			wantErr: true,
			errMsg:  "path traversal not allowed",
		},
		{
			name:    "non-yaml file",
			path:    "config.txt",
			wantErr: true,
			errMsg:  "config file must have .yaml or .yml extension",
		},
		{
			name:    "proc filesystem access",
			path:    "/proc/version.yaml",
			wantErr: true,
			errMsg:  "access to system files not allowed",
		},
		{
			name: "relative path with valid extension",
			path: "./configs/app.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error message to contain '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
