package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gomarkov/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Ops      OpsConfig
	Engine   EngineConfig
	Database DatabaseConfig
	Upload   UploadConfig
	LogLevel string
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port         string
	GinMode      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// OpsConfig holds the operations listener (health, metrics, pprof)
type OpsConfig struct {
	Port      string
	Enabled   bool
	Profiling bool
}

// EngineConfig holds numerical defaults used when a request omits them
type EngineConfig struct {
	Tolerance           float64
	MaxIterations       int
	DelinquentFactor    float64
	UncollectibleFactor float64
	// MaxStates caps the distinct states of an analysed chain; the cofactor
	// determinant is factorial in the state count.
	MaxStates int
}

// DatabaseConfig holds the optional observation source. An empty URL
// disables the postgres adapter.
type DatabaseConfig struct {
	URL   string
	Table string
}

// Enabled reports whether a database URL was configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// UploadConfig bounds multipart uploads
type UploadConfig struct {
	MaxBytes int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Ops:      *loadOpsConfig(),
		Engine:   *loadEngineConfig(),
		Database: *loadDatabaseConfig(),
		Upload: UploadConfig{
			MaxBytes: int64(getEnvIntOrDefault("UPLOAD_MAX_BYTES", 10<<20)),
		},
		LogLevel: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         getEnvOrDefault("PORT", "8080"),
		GinMode:      getEnvOrDefault("GIN_MODE", "release"),
		ReadTimeout:  getEnvDurationOrDefault("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvDurationOrDefault("WRITE_TIMEOUT", 60*time.Second),
	}
}

func loadOpsConfig() *OpsConfig {
	return &OpsConfig{
		Port:      getEnvOrDefault("OPS_PORT", "6060"),
		Enabled:   getEnvBoolOrDefault("OPS_ENABLED", true),
		Profiling: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func loadEngineConfig() *EngineConfig {
	return &EngineConfig{
		Tolerance:           getEnvFloatOrDefault("STATIONARY_TOLERANCE", 1e-10),
		MaxIterations:       getEnvIntOrDefault("STATIONARY_MAX_ITER", 1000),
		DelinquentFactor:    getEnvFloatOrDefault("STRESS_DELINQUENT_FACTOR", 1.2),
		UncollectibleFactor: getEnvFloatOrDefault("STRESS_UNCOLLECTIBLE_FACTOR", 1.3),
		MaxStates:           getEnvIntOrDefault("MAX_STATES", 10),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:   os.Getenv("DATABASE_URL"),
		Table: getEnvOrDefault("MIGRATIONS_TABLE", "credit_migrations"),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown GIN_MODE %q", config.Server.GinMode))
	}
	if config.Ops.Enabled && config.Ops.Port == config.Server.Port {
		return errors.ConfigInvalid(fmt.Sprintf("OPS_PORT must differ from PORT (%s)", config.Server.Port))
	}
	if config.Engine.Tolerance <= 0 {
		return errors.ConfigInvalid("STATIONARY_TOLERANCE must be positive")
	}
	if config.Engine.MaxIterations <= 0 {
		return errors.ConfigInvalid("STATIONARY_MAX_ITER must be positive")
	}
	if config.Engine.DelinquentFactor <= 0 || config.Engine.UncollectibleFactor <= 0 {
		return errors.ConfigInvalid("stress factors must be positive")
	}
	if config.Engine.MaxStates <= 0 {
		return errors.ConfigInvalid("MAX_STATES must be positive")
	}
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("UPLOAD_MAX_BYTES must be positive")
	}
	switch config.LogLevel {
	case "ERROR", "WARN", "INFO", "DEBUG", "TRACE":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown LOG_LEVEL %q", config.LogLevel))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
