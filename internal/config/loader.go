package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.movierec.yaml",               // Project-specific config (highest priority)
	"~/.config/movierec/config.yaml", // User config
	"/etc/movierec/config.yaml",      // System config (lowest priority)
}

// EnvPrefix prefixes every environment override
const EnvPrefix = "MOVIEREC_"

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	getenv      func(string) string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		getenv:      os.Getenv,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.movierec.yaml
// 4. ~/.config/movierec/config.yaml
// 5. /etc/movierec/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := ExpandPath(l.configPaths[i])
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ResolvePath returns the file LoadConfig(customPath) reads with the
// highest priority, or "" when only defaults apply
func (l *Loader) ResolvePath(customPath string) string {
	if customPath != "" {
		return customPath
	}
	for _, path := range l.configPaths {
		expandedPath := ExpandPath(path)
		if fileExists(expandedPath) {
			return expandedPath
		}
	}
	return ""
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Keys absent from the file keep their current values
	fileConfig := *config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	*config = fileConfig
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Server Config
		"SERVER_BASE_URL":   func(v string) error { config.Server.BaseURL = v; return nil },
		"SERVER_TIMEOUT":    func(v string) error { return parseDuration(v, &config.Server.Timeout) },
		"SERVER_RATE_LIMIT": func(v string) error { return parseFloat(v, &config.Server.RateLimit) },
		"SERVER_BURST":      func(v string) error { return parseInt(v, &config.Server.Burst) },

		// UI Config
		"UI_THEME":             func(v string) error { config.UI.Theme = v; return nil },
		"UI_DEFAULT_ALGORITHM": func(v string) error { config.UI.DefaultAlgorithm = v; return nil },
		"UI_NO_EMOJI":          func(v string) error { return parseBool(v, &config.UI.NoEmoji) },
		"UI_WATCH_CONFIG":      func(v string) error { return parseBool(v, &config.UI.WatchConfig) },

		// Output Config
		"OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },

		// Log Config
		"LOG_FILE":    func(v string) error { config.Log.File = v; return nil },
		"LOG_VERBOSE": func(v string) error { return parseBool(v, &config.Log.Verbose) },
	}

	for suffix, setter := range envMappings {
		envVar := EnvPrefix + suffix
		if value := l.getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, ExpandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	path := NewLoader().ResolvePath("")
	return path, path != ""
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseFloat(s string, dst *float64) error {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
