// Package config provides unified configuration loading for the assist
// engine. Supports YAML files, environment variables, and programmatic
// overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the assist engine.
type Config struct {
	Server          ServerConfig          `yaml:"server"`
	Cache           CacheConfig           `yaml:"cache"`
	Delegation      DelegationConfig      `yaml:"delegation"`
	Policy          PolicyConfig          `yaml:"policy"`
	Embedding       EmbeddingConfig       `yaml:"embedding"`
	Personalization PersonalizationConfig `yaml:"personalization"`
	Observability   ObservabilityConfig   `yaml:"observability"`
	Auth            AuthConfig            `yaml:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Driver     string      `yaml:"driver"` // memory or redis
	MaxEntries int         `yaml:"max_entries"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Prefix   string `yaml:"prefix"`
}

// DelegationConfig holds remote delegation settings. An empty endpoint
// disables delegation and the resolver goes straight to local stages.
type DelegationConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// PolicyConfig holds shop policy fetching and caching settings.
type PolicyConfig struct {
	EndpointTemplate string        `yaml:"endpoint_template"`
	TTL              time.Duration `yaml:"ttl"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	PreviewLength    int           `yaml:"preview_length"`
}

// EmbeddingConfig holds the semantic search collaborator settings. An empty
// API key disables the semantic stage.
type EmbeddingConfig struct {
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	Dimension int           `yaml:"dimension"`
	Timeout   time.Duration `yaml:"timeout"`
}

// PersonalizationConfig holds session personalization settings.
type PersonalizationConfig struct {
	Enabled    bool          `yaml:"enabled"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

// Load reads configuration from a YAML file and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for
// development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
				Prefix:   "assist:",
			},
		},
		Delegation: DelegationConfig{
			Timeout: 30 * time.Second,
		},
		Policy: PolicyConfig{
			EndpointTemplate: "https://%s/policies.json",
			TTL:              time.Hour,
			FetchTimeout:     10 * time.Second,
			PreviewLength:    300,
		},
		Embedding: EmbeddingConfig{
			Model:     "google/gemini-embedding-001",
			BaseURL:   "https://openrouter.ai/api/v1",
			Dimension: 768,
			Timeout:   30 * time.Second,
		},
		Personalization: PersonalizationConfig{
			Enabled:    true,
			SessionTTL: 24 * time.Hour,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "json",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Policy.TTL <= 0 {
		return fmt.Errorf("policy ttl must be positive")
	}

	if c.Policy.FetchTimeout <= 0 {
		return fmt.Errorf("policy fetch_timeout must be positive")
	}

	if c.Policy.PreviewLength < 50 {
		return fmt.Errorf("policy preview_length must be at least 50")
	}

	if !strings.Contains(c.Policy.EndpointTemplate, "%s") {
		return fmt.Errorf("policy endpoint_template must contain a %%s shop placeholder")
	}

	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth enabled but no api_key set")
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return !c.Auth.Enabled
}

// DelegationEnabled reports whether a remote delegation endpoint is set.
func (c *Config) DelegationEnabled() bool {
	return c.Delegation.Endpoint != ""
}

// SemanticEnabled reports whether the embedding collaborator is configured.
func (c *Config) SemanticEnabled() bool {
	return c.Embedding.APIKey != ""
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("DELEGATION_ENDPOINT"); v != "" {
		cfg.Delegation.Endpoint = v
	}

	if v := os.Getenv("DELEGATION_API_KEY"); v != "" {
		cfg.Delegation.APIKey = v
	}

	if v := os.Getenv("POLICY_ENDPOINT_TEMPLATE"); v != "" {
		cfg.Policy.EndpointTemplate = v
	}

	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}

	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	if v := os.Getenv("AUTH_ENABLED"); v == "true" {
		cfg.Auth.Enabled = true
	}

	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}
