// Package config loads service settings from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the planner service
type Config struct {
	Port        string `yaml:"port"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	Environment string `yaml:"environment"`

	CatalogPath string `yaml:"catalog_path"`
	CatalogURL  string `yaml:"catalog_url"`

	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	MaxPopulation    int           `yaml:"max_population"`
	MaxGenerations   int           `yaml:"max_generations"`
	BatchConcurrency int           `yaml:"batch_concurrency"`
	RunTimeout       time.Duration `yaml:"run_timeout"`

	JaegerEndpoint string   `yaml:"jaeger_endpoint"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Port:             "5000",
		LogLevel:         "info",
		LogFormat:        "json",
		Environment:      "development",
		CatalogPath:      "catalog.yaml",
		CacheSize:        256,
		CacheTTL:         10 * time.Minute,
		RateLimitRPS:     5,
		RateLimitBurst:   10,
		MaxPopulation:    1000,
		MaxGenerations:   1000,
		BatchConcurrency: 4,
		RunTimeout:       30 * time.Second,
		AllowedOrigins:   []string{"*"},
	}
}

// Load builds the configuration: defaults, then the YAML file named by $CONFIG if any,
// then environment variables
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("CONFIG"); path != "" {
		if err := config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFile overlays the settings present in a YAML file
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PLANNER_PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.CatalogPath = getEnv("CATALOG_PATH", c.CatalogPath)
	c.CatalogURL = getEnv("CATALOG_URL", c.CatalogURL)
	c.CacheSize = getEnvInt("CACHE_SIZE", c.CacheSize)
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", c.RateLimitBurst)
	c.MaxPopulation = getEnvInt("MAX_POPULATION", c.MaxPopulation)
	c.MaxGenerations = getEnvInt("MAX_GENERATIONS", c.MaxGenerations)
	c.BatchConcurrency = getEnvInt("BATCH_CONCURRENCY", c.BatchConcurrency)
	c.RunTimeout = getEnvDuration("RUN_TIMEOUT", c.RunTimeout)
	c.JaegerEndpoint = getEnv("JAEGER_ENDPOINT", c.JaegerEndpoint)
	if origins := parseCommaSeparated(os.Getenv("ALLOWED_ORIGINS")); len(origins) > 0 {
		c.AllowedOrigins = origins
	}
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must be set")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	if c.MaxPopulation < 0 || c.MaxGenerations < 0 {
		return fmt.Errorf("run limits must not be negative")
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be at least 1")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return ":" + c.Port
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseCommaSeparated parses a comma-separated string into a slice
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
