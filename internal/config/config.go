package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yildizm/movierec/internal/recommend"
)

// Config holds the complete application configuration
type Config struct {
	Version string       `yaml:"version" json:"version"`
	Server  ServerConfig `yaml:"server" json:"server"`
	UI      UIConfig     `yaml:"ui" json:"ui"`
	Output  OutputConfig `yaml:"output" json:"output"`
	Log     LogConfig    `yaml:"log" json:"log"`
}

// ServerConfig configures the recommendation backend
type ServerConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url" validate:"required,url"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`       // per request, 0 disables
	RateLimit float64       `yaml:"rate_limit" json:"rate_limit" validate:"gte=0"` // requests per second, 0 disables
	Burst     int           `yaml:"burst" json:"burst" validate:"gte=0"`
	Breaker   BreakerConfig `yaml:"breaker" json:"breaker"`
}

// BreakerConfig configures the circuit breaker
type BreakerConfig struct {
	MaxRequests      uint32        `yaml:"max_requests" json:"max_requests"`
	Interval         time.Duration `yaml:"interval" json:"interval" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
	FailureThreshold uint32        `yaml:"failure_threshold" json:"failure_threshold"` // 0 disables the breaker
}

// UIConfig configures the interactive form
type UIConfig struct {
	Theme            string `yaml:"theme" json:"theme" validate:"omitempty,oneof=default high-contrast minimal"`
	DefaultAlgorithm string `yaml:"default_algorithm" json:"default_algorithm"`
	NoEmoji          bool   `yaml:"no_emoji" json:"no_emoji"`
	WatchConfig      bool   `yaml:"watch_config" json:"watch_config"` // reload on config file change
}

// OutputConfig configures non-interactive output
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format" validate:"omitempty,oneof=text json markdown csv"`
	ColorMode     string `yaml:"color_mode" json:"color_mode" validate:"omitempty,oneof=auto always never"`
}

// LogConfig configures the diagnostic log
type LogConfig struct {
	File    string `yaml:"file" json:"file"`
	Verbose bool   `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	client := recommend.DefaultConfig()

	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			BaseURL:   client.BaseURL,
			Timeout:   client.Timeout,
			RateLimit: client.RateLimit,
			Burst:     client.Burst,
			Breaker: BreakerConfig{
				MaxRequests:      client.Breaker.MaxRequests,
				Interval:         client.Breaker.Interval,
				Timeout:          client.Breaker.Timeout,
				FailureThreshold: client.Breaker.FailureThreshold,
			},
		},
		UI: UIConfig{
			Theme:            "default",
			DefaultAlgorithm: string(recommend.DefaultAlgorithm),
			NoEmoji:          false,
			WatchConfig:      false,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
		},
		Log: LogConfig{
			File:    "~/.cache/movierec/movierec.log",
			Verbose: false,
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describeValidationError(err)
	}
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if err := c.validateUIConfig(); err != nil {
		return err
	}
	return nil
}

// validateServerConfig checks what struct tags cannot express
func (c *Config) validateServerConfig() error {
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be at least 1 when server.rate_limit is set")
	}
	if err := c.ClientConfig().Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (c *Config) validateUIConfig() error {
	if c.UI.DefaultAlgorithm == "" {
		return nil
	}
	if _, err := recommend.ParseAlgorithm(c.UI.DefaultAlgorithm); err != nil {
		return fmt.Errorf("invalid ui.default_algorithm: %w", err)
	}
	return nil
}

// Algorithm returns the configured default algorithm
func (c *Config) Algorithm() recommend.Algorithm {
	algo, err := recommend.ParseAlgorithm(c.UI.DefaultAlgorithm)
	if err != nil {
		return recommend.DefaultAlgorithm
	}
	return algo
}

// ClientConfig converts the server section into client settings
func (c *Config) ClientConfig() *recommend.Config {
	return &recommend.Config{
		BaseURL:   c.Server.BaseURL,
		Timeout:   c.Server.Timeout,
		RateLimit: c.Server.RateLimit,
		Burst:     c.Server.Burst,
		Breaker: recommend.BreakerConfig{
			MaxRequests:      c.Server.Breaker.MaxRequests,
			Interval:         c.Server.Breaker.Interval,
			Timeout:          c.Server.Breaker.Timeout,
			FailureThreshold: c.Server.Breaker.FailureThreshold,
		},
	}
}

// describeValidationError turns validator output into one readable error
func describeValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("invalid %s: %v (must be one of: %s)",
				field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be non-negative", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q validation", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
