// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Host           string
	Port           string
	LogLevel       slog.Level
	AllowedOrigins []string
	Nova           NovaConfig
	Prompt         PromptConfig
}

// NovaConfig controls the Nova Act runtime binding.
// The API key is deliberately absent: it is read per request.
type NovaConfig struct {
	Endpoint   string
	Headless   bool
	ActTimeout time.Duration
	Workers    int
}

// PromptConfig controls prompt rendering and starting pages.
type PromptConfig struct {
	BreathingURL   string
	BreakStartPage string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	workers := getEnvInt("NOVA_ACT_WORKERS", 4)
	if workers <= 0 {
		workers = 4
	}

	cfg := &Config{
		Host:           getEnv("HOST", "127.0.0.1"),
		Port:           getEnv("PORT", "5057"),
		LogLevel:       getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"chrome-extension://*", "moz-extension://*"}),
		Nova: NovaConfig{
			Endpoint:   getEnv("NOVA_ACT_ENDPOINT", ""),
			Headless:   getEnvBool("NOVA_ACT_HEADLESS", false),
			ActTimeout: getEnvDuration("NOVA_ACT_TIMEOUT", 0),
			Workers:    workers,
		},
		Prompt: PromptConfig{
			BreathingURL:   getEnv("NOVA_BREATHING_URL", "https://www.calm.com/breathe"),
			BreakStartPage: getEnv("NOVA_BREAK_START_PAGE", "https://www.google.com"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Nova.Workers <= 0 {
		return fmt.Errorf("NOVA_ACT_WORKERS must be > 0")
	}
	if c.Nova.ActTimeout < 0 {
		return fmt.Errorf("NOVA_ACT_TIMEOUT cannot be negative")
	}
	if c.Nova.Endpoint != "" {
		if err := validateHTTPURL(c.Nova.Endpoint); err != nil {
			return fmt.Errorf("NOVA_ACT_ENDPOINT: %w", err)
		}
	}
	if err := validateHTTPURL(c.Prompt.BreathingURL); err != nil {
		return fmt.Errorf("NOVA_BREATHING_URL: %w", err)
	}
	if err := validateHTTPURL(c.Prompt.BreakStartPage); err != nil {
		return fmt.Errorf("NOVA_BREAK_START_PAGE: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
