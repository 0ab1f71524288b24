// Package config loads configuration for the rosette command-line tool
// from a config file and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the rosette CLI.
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// API configuration
	API APIConfig `mapstructure:"api"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig holds the client construction settings.
type APIConfig struct {
	// Key is the authentication key sent as X-RosetteAPI-Key.
	// Excluded from serialization to prevent accidental exposure.
	Key string `mapstructure:"key" json:"-"`

	// ServiceURL is the base URL of the Rosette service.
	ServiceURL string `mapstructure:"service_url"`

	// Retries is the number of retries after the first attempt of a
	// rate-limited request; a request is tried retries+1 times in total.
	Retries int `mapstructure:"retries"`

	// RefreshDuration is the delay between rate-limited attempts.
	RefreshDuration time.Duration `mapstructure:"refresh_duration"`

	// ReuseConnection keeps one connection alive across requests.
	ReuseConnection bool `mapstructure:"reuse_connection"`

	// Debug toggles the X-RosetteAPI-Devel header.
	Debug bool `mapstructure:"debug"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	// Floors match the client's construction rules.
	if config.API.Retries < 1 {
		config.API.Retries = 1
	}
	if config.API.RefreshDuration < 0 {
		config.API.RefreshDuration = 0
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// API defaults
	viper.SetDefault("api.service_url", "https://api.rosette.com/rest/v1/")
	viper.SetDefault("api.retries", 5)
	viper.SetDefault("api.refresh_duration", 500*time.Millisecond)
	viper.SetDefault("api.reuse_connection", true)
	viper.SetDefault("api.debug", false)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.rosette/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if key := os.Getenv("ROSETTE_API_KEY"); key != "" {
		config.API.Key = key
	}
	if url := os.Getenv("ROSETTE_SERVICE_URL"); url != "" {
		config.API.ServiceURL = url
	}
}
