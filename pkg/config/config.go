package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the hybrid store.
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`

	// CircuitBreaker configuration for the embedding gateway
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker" yaml:"circuit_breaker"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DatabaseConfig holds the embedded database configuration
type DatabaseConfig struct {
	// Path to the database file. Empty means in-memory.
	Path string `mapstructure:"path" yaml:"path"`
}

// EmbeddingConfig holds embedding gateway configuration
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider" yaml:"provider"` // openai, local
	Model      string `mapstructure:"model" yaml:"model"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Dimensions int    `mapstructure:"dimensions" yaml:"dimensions,omitempty"`
	BatchSize  int    `mapstructure:"batch_size" yaml:"batch_size,omitempty"`
}

// CircuitBreakerConfig holds configuration for circuit breaking around the
// embedding gateway
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled" yaml:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests" yaml:"max_requests"`
	Interval         int     `mapstructure:"interval" yaml:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout" yaml:"timeout"`   // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio" yaml:"ready_to_trip_ratio"`
}

// TelemetryConfig holds error telemetry configuration
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	ParquetPath string `mapstructure:"parquet_path" yaml:"parquet_path"`
}

// Load loads configuration from viper's configured sources and environment
// variables.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// Default returns the configuration used when no file or environment is
// present: in-memory database, local embeddings, telemetry off.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Embedding: EmbeddingConfig{
			Provider:  "local",
			Model:     "all-MiniLM-L6-v2",
			BatchSize: 64,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         60,
			Timeout:          30,
			ReadyToTripRatio: 0.6,
		},
	}
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("database.path", "")

	viper.SetDefault("embedding.provider", "local")
	viper.SetDefault("embedding.model", "all-MiniLM-L6-v2")
	viper.SetDefault("embedding.batch_size", 64)

	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	viper.SetDefault("telemetry.enabled", false)
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", filepath.Join(home, ".hybridstore", "telemetry"))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if path := os.Getenv("HYBRIDSTORE_DB_PATH"); path != "" {
		config.Database.Path = path
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
		// An API key with no explicit provider means OpenAI embeddings.
		if config.Embedding.Provider == "" || config.Embedding.Provider == "local" {
			if os.Getenv("HYBRIDSTORE_EMBEDDING_PROVIDER") == "" {
				config.Embedding.Provider = "openai"
			}
		}
	}
	if provider := os.Getenv("HYBRIDSTORE_EMBEDDING_PROVIDER"); provider != "" {
		config.Embedding.Provider = provider
	}
	if model := os.Getenv("HYBRIDSTORE_EMBEDDING_MODEL"); model != "" {
		config.Embedding.Model = model
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.Embedding.BaseURL = baseURL
	}
	if dims := os.Getenv("HYBRIDSTORE_EMBEDDING_DIMENSIONS"); dims != "" {
		if n, err := strconv.Atoi(dims); err == nil {
			config.Embedding.Dimensions = n
		}
	}

	if level := os.Getenv("HYBRIDSTORE_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}

	if path := os.Getenv("HYBRIDSTORE_TELEMETRY_PATH"); path != "" {
		config.Telemetry.Enabled = true
		config.Telemetry.ParquetPath = path
	}
}

// WriteDefault writes a commented-out starter configuration file. It refuses
// to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to render default config: %w", err)
	}

	header := []byte("# hybridstore configuration\n# Values can be overridden with HYBRIDSTORE_* environment variables.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
