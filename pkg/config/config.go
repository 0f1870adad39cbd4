// Package config loads application configuration from file and
// environment via viper.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Vector store configuration
	Vector VectorConfig `mapstructure:"vector"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Search configuration
	Search SearchConfig `mapstructure:"search"`

	// Decay configuration
	Decay DecayConfig `mapstructure:"decay"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Metrics configuration
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// StorageConfig holds graph storage configuration
type StorageConfig struct {
	Driver   string `mapstructure:"driver"` // neo4j, memory
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// VectorConfig holds vector store configuration
type VectorConfig struct {
	// Path to the Badger directory; empty disables persistence and
	// keeps vectors in memory.
	Path string `mapstructure:"path"`
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"` // openai, none
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
}

// SearchConfig holds search service configuration
type SearchConfig struct {
	DefaultStrategy string  `mapstructure:"default_strategy"`
	GraphWeight     float64 `mapstructure:"graph_weight"`
	VectorWeight    float64 `mapstructure:"vector_weight"`
}

// DecayConfig holds confidence decay configuration
type DecayConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	HalfLifeDays float64 `mapstructure:"half_life_days"`
	MinValue     float64 `mapstructure:"min_value"`
}

// TelemetryConfig holds query telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	// Storage defaults
	viper.SetDefault("storage.driver", "memory")
	viper.SetDefault("storage.uri", "bolt://localhost:7687")
	viper.SetDefault("storage.username", "neo4j")
	viper.SetDefault("storage.password", "")
	viper.SetDefault("storage.database", "neo4j")

	// Embedding defaults
	viper.SetDefault("embedding.provider", "none")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dimensions", 1536)

	// Search defaults
	viper.SetDefault("search.default_strategy", "graph")
	viper.SetDefault("search.graph_weight", 0.4)
	viper.SetDefault("search.vector_weight", 0.6)

	// Decay defaults
	viper.SetDefault("decay.enabled", true)
	viper.SetDefault("decay.half_life_days", 30.0)
	viper.SetDefault("decay.min_value", 0.1)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.memento/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
		if config.Embedding.Provider == "" || config.Embedding.Provider == "none" {
			config.Embedding.Provider = "openai"
		}
	}

	// Graph database credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Storage.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Storage.Password = pass
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		config.Storage.Driver = driver
	}

	// Vector store path
	if path := os.Getenv("VECTOR_PATH"); path != "" {
		config.Vector.Path = path
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			config.Server.Port = n
		}
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
