package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gobenford/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig
	Analysis AnalysisConfig
	Report   ReportConfig
	Database DatabaseConfig
	Server   ServerConfig
	Batch    BatchConfig
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `validate:"omitempty,oneof=ERROR WARN INFO DEBUG TRACE"`
}

// AnalysisConfig holds the defaults applied to every analysis run
type AnalysisConfig struct {
	Position     string  `validate:"required,oneof=first second both"`
	ZeroPolicy   string  `validate:"omitempty,oneof=include exclude"`
	Significance float64 `validate:"gt=0,lt=1"`
	Normalize    bool
}

// ReportConfig holds report rendering settings
type ReportConfig struct {
	Format string `validate:"required,oneof=text json markdown html"`
}

// DatabaseConfig holds run store connection settings. An empty URL disables the store.
type DatabaseConfig struct {
	Driver string `validate:"required,oneof=sqlite postgres"`
	URL    string
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"required,oneof=debug release test"`
}

// BatchConfig holds settings for multi-file CLI runs
type BatchConfig struct {
	Concurrency int `validate:"min=1,max=64"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Log: LogConfig{
			Level: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
		},
		Analysis: AnalysisConfig{
			Position:     strings.ToLower(getEnvOrDefault("BENFORD_POSITION", "first")),
			ZeroPolicy:   strings.ToLower(getEnvOrDefault("BENFORD_ZERO_POLICY", "")),
			Significance: getEnvFloatOrDefault("BENFORD_SIGNIFICANCE", 0.05),
			Normalize:    getEnvBoolOrDefault("BENFORD_NORMALIZE", false),
		},
		Report: ReportConfig{
			Format: strings.ToLower(getEnvOrDefault("REPORT_FORMAT", "text")),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite")),
			URL:    getEnvOrDefault("DATABASE_URL", "file:gobenford.db"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Batch: BatchConfig{
			Concurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 4),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks every field against its validation tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.ConfigInvalid(strings.Join(msgs, "; "))
		}
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// StoreEnabled reports whether a run store is configured
func (c *Config) StoreEnabled() bool {
	return strings.TrimSpace(c.Database.URL) != ""
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
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
