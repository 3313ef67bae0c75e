// Package config provides configuration loading for the engine: code
// defaults, an optional YAML file, then environment variable overrides, with
// struct-level validation at the end.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	Environment string `yaml:"environment" validate:"required,oneof=development staging production"`
	LogLevel    string `yaml:"log_level" validate:"required,oneof=debug info warn error"`

	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Engine  EngineConfig  `yaml:"engine"`
	Cache   CacheConfig   `yaml:"cache"`
	Events  EventsConfig  `yaml:"events"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig holds the bearer-token settings for the API tier.
type AuthConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// EngineConfig holds the routing and learning policy.
type EngineConfig struct {
	StrengthenDelta float64       `yaml:"strengthen_delta" validate:"gt=0,lte=1"`
	DecayRate       float64       `yaml:"decay_rate" validate:"gt=0,lt=1"`
	StalenessWindow time.Duration `yaml:"staleness_window" validate:"gt=0"`
	DecayInterval   time.Duration `yaml:"decay_interval" validate:"gt=0"`
	MaxConnections  int           `yaml:"max_connections" validate:"gt=0"`
	AutoHeal        bool          `yaml:"auto_heal"`

	DefaultStart  string            `yaml:"default_start" validate:"required"`
	DefaultTarget string            `yaml:"default_target" validate:"required"`
	OriginRoutes  map[string]string `yaml:"origin_routes"`
}

// CacheConfig bounds the lookup cache.
type CacheConfig struct {
	Capacity int `yaml:"capacity" validate:"gt=0"`
}

// EventsConfig bounds the event channel.
type EventsConfig struct {
	BufferSize int `yaml:"buffer_size" validate:"gt=0"`
}

// TracingConfig enables OTLP trace export.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Enabled:  false,
			TokenTTL: 24 * time.Hour,
		},
		Engine: EngineConfig{
			StrengthenDelta: 0.1,
			DecayRate:       0.01,
			StalenessWindow: time.Hour,
			DecayInterval:   time.Minute,
			MaxConnections:  10000,
			AutoHeal:        true,
			DefaultStart:    "gateway",
			DefaultTarget:   "memory",
			OriginRoutes: map[string]string{
				"user":   "gateway",
				"memory": "memory",
				"query":  "thinking",
				"agent":  "agent",
				"tool":   "mcp",
				"shadow": "shadow",
			},
		},
		Cache:  CacheConfig{Capacity: 1000},
		Events: EventsConfig{BufferSize: 1000},
		Tracing: TracingConfig{
			ServiceName: "pathway-engine",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file at
// path, and environment variable overrides, then validates the result. An
// empty path skips the file layer; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults plus env only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("invalid configuration: auth enabled without a secret")
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("invalid configuration: tracing enabled without an endpoint")
	}
	return nil
}

// applyEnvironment overlays environment variables (highest priority).
func (c *Config) applyEnvironment() {
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	c.Auth.Secret = getEnv("AUTH_SECRET", c.Auth.Secret)
	c.Auth.Enabled = getEnvBool("AUTH_ENABLED", c.Auth.Enabled)
	c.Engine.MaxConnections = getEnvInt("ENGINE_MAX_CONNECTIONS", c.Engine.MaxConnections)
	c.Engine.AutoHeal = getEnvBool("ENGINE_AUTO_HEAL", c.Engine.AutoHeal)
	c.Cache.Capacity = getEnvInt("CACHE_CAPACITY", c.Cache.Capacity)
	c.Events.BufferSize = getEnvInt("EVENTS_BUFFER_SIZE", c.Events.BufferSize)
	c.Tracing.Enabled = getEnvBool("TRACING_ENABLED", c.Tracing.Enabled)
	c.Tracing.Endpoint = getEnv("TRACING_ENDPOINT", c.Tracing.Endpoint)
}

// getEnv gets an environment variable with a fallback default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
