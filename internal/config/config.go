// Package config loads the editor configuration from an optional YAML file
// and environment variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address   string `yaml:"address"`
		Port      string `yaml:"port"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"http"`

	// Storage settings
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`

	// Programme guide settings
	Guide struct {
		URL              string        `yaml:"url"`
		TTL              time.Duration `yaml:"ttl"`
		Timeout          time.Duration `yaml:"timeout"`
		RedisURL         string        `yaml:"redis_url"`
		RefreshOnStart   bool          `yaml:"refresh_on_start"`
		FailureThreshold int           `yaml:"cb_failure_threshold"`
		BreakerTimeout   time.Duration `yaml:"cb_timeout"`
	} `yaml:"guide"`

	// Logging settings
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

var logLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// Validate performs validation on the configuration and reports every
// problem at once.
func (c *Config) Validate() error {
	var errors []string

	if c.HTTP.Port == "" {
		errors = append(errors, "HTTP port is required")
	}
	if c.Storage.DBPath == "" {
		errors = append(errors, "Database path is required")
	}
	if c.Guide.URL == "" {
		errors = append(errors, "Guide URL is required")
	}
	if c.Guide.TTL <= 0 {
		errors = append(errors, "Guide TTL must be positive")
	}
	if c.Guide.Timeout <= 0 {
		errors = append(errors, "Guide timeout must be positive")
	}
	if c.Guide.FailureThreshold <= 0 {
		errors = append(errors, "Guide circuit breaker failure threshold must be positive")
	}
	if c.Guide.BreakerTimeout <= 0 {
		errors = append(errors, "Guide circuit breaker timeout must be positive")
	}
	if !logLevels[strings.ToUpper(c.Log.Level)] {
		errors = append(errors, fmt.Sprintf("Log level %q must be one of DEBUG, INFO, WARN, ERROR", c.Log.Level))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	// HTTP defaults
	cfg.HTTP.Address = "127.0.0.1"
	cfg.HTTP.Port = "8080"

	// Storage defaults
	cfg.Storage.DBPath = "m3u8-editor.db"

	// Guide defaults
	cfg.Guide.URL = "http://ru.epg.one/epg.xml.gz"
	cfg.Guide.TTL = 24 * time.Hour
	cfg.Guide.Timeout = 60 * time.Second
	cfg.Guide.RefreshOnStart = true
	cfg.Guide.FailureThreshold = 3
	cfg.Guide.BreakerTimeout = 5 * time.Minute

	// Logging defaults
	cfg.Log.Level = "INFO"

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a file (if present) and applies environment variable overrides
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		// File doesn't exist, use defaults
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envParser is a helper for parsing environment variables with validation
type envParser struct {
	errors []string
}

func (p *envParser) parseString(envName string, target *string) {
	if val := os.Getenv(envName); val != "" {
		*target = val
	}
}

// parseDuration parses a duration environment variable, ensuring it's positive
func (p *envParser) parseDuration(envName string, target *time.Duration) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid duration format (use '30s', '1m', etc.)", envName))
		return
	}

	if duration <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = duration
}

// parseInt parses an integer environment variable, ensuring it's positive
func (p *envParser) parseInt(envName string, target *int) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: must be a valid integer", envName))
		return
	}

	if intVal <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = intVal
}

func (p *envParser) parseBool(envName string, target *bool) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: must be true or false", envName))
		return
	}

	*target = b
}

// parseEnum parses an enum environment variable from a set of valid values
func (p *envParser) parseEnum(envName string, target *string, validValues map[string]bool) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	normalized := strings.ToUpper(val)
	if !validValues[normalized] {
		p.errors = append(p.errors, fmt.Sprintf("%s must be one of: DEBUG, INFO, WARN, ERROR", envName))
		return
	}

	*target = normalized
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	parser := &envParser{}

	parser.parseString("HTTP_ADDRESS", &cfg.HTTP.Address)
	parser.parseString("HTTP_PORT", &cfg.HTTP.Port)
	parser.parseString("STATIC_DIR", &cfg.HTTP.StaticDir)
	parser.parseString("DB_PATH", &cfg.Storage.DBPath)
	parser.parseString("GUIDE_URL", &cfg.Guide.URL)
	parser.parseDuration("GUIDE_TTL", &cfg.Guide.TTL)
	parser.parseDuration("GUIDE_TIMEOUT", &cfg.Guide.Timeout)
	parser.parseString("REDIS_URL", &cfg.Guide.RedisURL)
	parser.parseBool("GUIDE_REFRESH_ON_START", &cfg.Guide.RefreshOnStart)
	parser.parseInt("GUIDE_CB_FAILURE_THRESHOLD", &cfg.Guide.FailureThreshold)
	parser.parseDuration("GUIDE_CB_TIMEOUT", &cfg.Guide.BreakerTimeout)
	parser.parseEnum("LOG_LEVEL", &cfg.Log.Level, logLevels)

	if len(parser.errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(parser.errors, "\n  - "))
	}

	return nil
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.HTTP.Address, c.HTTP.Port)
}

// SlogLevel maps the configured log level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
