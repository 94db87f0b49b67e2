// Package config handles vectorops configuration.
//
// Configuration can be loaded from:
//   - Environment variables (recommended for Docker/K8s)
//   - YAML configuration file overlaid on the environment
//   - Programmatic defaults
//
// Environment Variables:
//
//	VECTOROPS_EMBEDDING_PROVIDER    - "openai" or "ollama" (default: openai)
//	VECTOROPS_EMBEDDING_MODEL       - Model name (default: provider default)
//	VECTOROPS_EMBEDDING_API_URL     - Provider endpoint override
//	VECTOROPS_EMBEDDING_API_KEY     - API key (falls back to OPENAI_API_KEY)
//	VECTOROPS_EMBEDDING_DIMENSIONS  - Expected vector dimensions
//	VECTOROPS_EMBEDDING_TIMEOUT     - Per-request timeout (default: 30s)
//	VECTOROPS_HTTP_ADDRESS          - Bind address (default: 0.0.0.0)
//	VECTOROPS_HTTP_PORT             - HTTP port (default: 8787)
//	VECTOROPS_HTTP_MAX_REQUEST_SIZE - Max body size, e.g. "10MB"
//	VECTOROPS_CORS_ENABLED          - Enable CORS (default: true)
//	VECTOROPS_CORS_ORIGINS          - Comma-separated allowed origins
//	VECTOROPS_KMEANS_MAX_ITERATIONS - Clustering iteration cap (default: 100)
//	VECTOROPS_LOG_LEVEL             - DEBUG, INFO, WARN, ERROR (default: INFO)
//	VECTOROPS_LOG_FORMAT            - json or text (default: text)
//
// Example:
//
//	cfg := config.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("invalid config: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all vectorops configuration.
type Config struct {
	Embedding EmbeddingConfig
	Server    ServerConfig
	Cluster   ClusterConfig
	Logging   LoggingConfig
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the backend: "openai" or "ollama"
	Provider string
	// Model name; empty picks the provider default
	Model string
	// APIURL overrides the provider endpoint
	APIURL string
	// APIKey for the provider (OpenAI requires one)
	APIKey string
	// Dimensions expected from the model
	Dimensions int
	// Timeout per upstream request
	Timeout time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Address to bind to
	Address string
	// Port to listen on (default 8787)
	Port int
	// MaxRequestSize in bytes
	MaxRequestSize int64
	// CORSEnabled for cross-origin requests
	CORSEnabled bool
	// CORSOrigins allowed
	CORSOrigins []string
}

// ClusterConfig holds k-means settings.
type ClusterConfig struct {
	// MaxIterations caps a single clustering run
	MaxIterations int
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level (DEBUG, INFO, WARN, ERROR)
	Level string
	// Format (json, text)
	Format string
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Timeout:    30 * time.Second,
			Dimensions: 1536,
		},
		Server: ServerConfig{
			Address:        "0.0.0.0",
			Port:           8787,
			MaxRequestSize: 10 * 1024 * 1024,
			CORSEnabled:    true,
			CORSOrigins:    []string{"*"},
		},
		Cluster: ClusterConfig{
			MaxIterations: 100,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// LoadFromEnv loads configuration from environment variables with defaults
// applied where variables are not set.
func LoadFromEnv() *Config {
	cfg := Default()

	cfg.Embedding.Provider = getEnv("VECTOROPS_EMBEDDING_PROVIDER", cfg.Embedding.Provider)
	cfg.Embedding.Model = getEnv("VECTOROPS_EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.APIURL = getEnv("VECTOROPS_EMBEDDING_API_URL", cfg.Embedding.APIURL)
	cfg.Embedding.APIKey = getEnv("VECTOROPS_EMBEDDING_API_KEY", os.Getenv("OPENAI_API_KEY"))
	cfg.Embedding.Dimensions = getEnvInt("VECTOROPS_EMBEDDING_DIMENSIONS", cfg.Embedding.Dimensions)
	cfg.Embedding.Timeout = getEnvDuration("VECTOROPS_EMBEDDING_TIMEOUT", cfg.Embedding.Timeout)

	cfg.Server.Address = getEnv("VECTOROPS_HTTP_ADDRESS", cfg.Server.Address)
	cfg.Server.Port = getEnvInt("VECTOROPS_HTTP_PORT", cfg.Server.Port)
	cfg.Server.MaxRequestSize = parseByteSize(getEnv("VECTOROPS_HTTP_MAX_REQUEST_SIZE", ""), cfg.Server.MaxRequestSize)
	cfg.Server.CORSEnabled = getEnvBool("VECTOROPS_CORS_ENABLED", cfg.Server.CORSEnabled)
	cfg.Server.CORSOrigins = getEnvStringSlice("VECTOROPS_CORS_ORIGINS", cfg.Server.CORSOrigins)

	cfg.Cluster.MaxIterations = getEnvInt("VECTOROPS_KMEANS_MAX_ITERATIONS", cfg.Cluster.MaxIterations)

	cfg.Logging.Level = getEnv("VECTOROPS_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("VECTOROPS_LOG_FORMAT", cfg.Logging.Format)

	return cfg
}

// fileConfig is the YAML shape of a config file. Pointer fields distinguish
// "absent" from zero values so the file only overrides what it names.
type fileConfig struct {
	Embedding struct {
		Provider   *string `yaml:"provider"`
		Model      *string `yaml:"model"`
		APIURL     *string `yaml:"api_url"`
		APIKey     *string `yaml:"api_key"`
		Dimensions *int    `yaml:"dimensions"`
		Timeout    *string `yaml:"timeout"`
	} `yaml:"embedding"`
	Server struct {
		Address        *string  `yaml:"address"`
		Port           *int     `yaml:"port"`
		MaxRequestSize *string  `yaml:"max_request_size"`
		CORSEnabled    *bool    `yaml:"cors_enabled"`
		CORSOrigins    []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Cluster struct {
		MaxIterations *int `yaml:"max_iterations"`
	} `yaml:"cluster"`
	Logging struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"logging"`
}

// ApplyFile overlays a YAML config file onto the receiver. Fields the file
// does not mention keep their current values.
//
// Example file:
//
//	embedding:
//	  provider: ollama
//	  model: mxbai-embed-large
//	  api_url: http://localhost:11434
//	server:
//	  port: 9000
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Embedding.Provider, file.Embedding.Provider)
	setString(&c.Embedding.Model, file.Embedding.Model)
	setString(&c.Embedding.APIURL, file.Embedding.APIURL)
	setString(&c.Embedding.APIKey, file.Embedding.APIKey)
	setInt(&c.Embedding.Dimensions, file.Embedding.Dimensions)
	if file.Embedding.Timeout != nil {
		d, err := time.ParseDuration(*file.Embedding.Timeout)
		if err != nil {
			return fmt.Errorf("parse embedding timeout %q: %w", *file.Embedding.Timeout, err)
		}
		c.Embedding.Timeout = d
	}

	setString(&c.Server.Address, file.Server.Address)
	setInt(&c.Server.Port, file.Server.Port)
	if file.Server.MaxRequestSize != nil {
		c.Server.MaxRequestSize = parseByteSize(*file.Server.MaxRequestSize, c.Server.MaxRequestSize)
	}
	if file.Server.CORSEnabled != nil {
		c.Server.CORSEnabled = *file.Server.CORSEnabled
	}
	if len(file.Server.CORSOrigins) > 0 {
		c.Server.CORSOrigins = file.Server.CORSOrigins
	}

	setInt(&c.Cluster.MaxIterations, file.Cluster.MaxIterations)

	setString(&c.Logging.Level, file.Logging.Level)
	setString(&c.Logging.Format, file.Logging.Format)

	return nil
}

// Validate checks the configuration for logical errors and invalid values.
// Call after LoadFromEnv/ApplyFile and before use.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unknown embedding provider: %q", c.Embedding.Provider)
	}

	if c.Embedding.Provider == "openai" && c.Embedding.APIKey == "" {
		return fmt.Errorf("openai provider requires an API key (VECTOROPS_EMBEDDING_API_KEY)")
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("invalid embedding dimensions: %d", c.Embedding.Dimensions)
	}

	if c.Embedding.Timeout <= 0 {
		return fmt.Errorf("invalid embedding timeout: %v", c.Embedding.Timeout)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.Port)
	}

	if c.Server.MaxRequestSize <= 0 {
		return fmt.Errorf("invalid max request size: %d", c.Server.MaxRequestSize)
	}

	if c.Cluster.MaxIterations <= 0 {
		return fmt.Errorf("invalid clustering iteration cap: %d", c.Cluster.MaxIterations)
	}

	return nil
}

// String returns a safe representation of the Config. The API key is
// redacted, so the output can go straight into logs.
func (c *Config) String() string {
	key := "unset"
	if c.Embedding.APIKey != "" {
		key = "redacted"
	}
	return fmt.Sprintf(
		"Config{Provider: %s, Model: %s, APIKey: %s, HTTP: %s:%d, MaxIterations: %d}",
		c.Embedding.Provider, c.Embedding.Model, key,
		c.Server.Address, c.Server.Port,
		c.Cluster.MaxIterations,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		// Try parsing as seconds
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultVal
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// parseByteSize parses a human-readable byte size string.
// Supports: "1024", "1KB", "10MB", "1GB"
func parseByteSize(s string, defaultVal int64) int64 {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return defaultVal
	}

	s = strings.TrimSuffix(s, "B")

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "G")
	}

	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return defaultVal
	}
	return val * multiplier
}
