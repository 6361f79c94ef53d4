// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for listen addresses and query limits.
const (
	DefaultAddr        = ":8000"
	DefaultMCPAddr     = ":8010"
	DefaultMetricsAddr = ""
	DefaultQueryLimit  = 100
	DefaultConcurrency = 4
)

// Config holds everything the server binary needs: warehouse credentials,
// the AI assistant key and the listen addresses.
type Config struct {
	// Snowflake connection parameters.
	Account   string
	User      string
	Password  string
	Warehouse string
	Database  string
	Schema    string
	Role      string

	// AI assistant.
	AnthropicAPIKey string
	Model           string

	// Servers.
	Addr        string
	MCPAddr     string
	MetricsAddr string

	// APIKey guards the REST and MCP surfaces. Empty means open access,
	// intended for local development only.
	APIKey string

	// MaxConcurrency bounds the worker pool for blocking driver calls.
	MaxConcurrency int

	LogLevel string
}

// FromEnv reads the configuration from environment variables.
func FromEnv() Config {
	return Config{
		Account:   os.Getenv("SNOWFLAKE_ACCOUNT"),
		User:      os.Getenv("SNOWFLAKE_USER"),
		Password:  os.Getenv("SNOWFLAKE_PASSWORD"),
		Warehouse: os.Getenv("SNOWFLAKE_WAREHOUSE"),
		Database:  os.Getenv("SNOWFLAKE_DATABASE"),
		Schema:    os.Getenv("SNOWFLAKE_SCHEMA"),
		Role:      os.Getenv("SNOWFLAKE_ROLE"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Model:           os.Getenv("ANTHROPIC_MODEL"),

		Addr:        envOr("ADDR", DefaultAddr),
		MCPAddr:     envOr("MCP_ADDR", DefaultMCPAddr),
		MetricsAddr: envOr("METRICS_ADDR", DefaultMetricsAddr),
		APIKey:      os.Getenv("API_KEY"),

		MaxConcurrency: envInt("MAX_CONCURRENCY", DefaultConcurrency),
		LogLevel:       envOr("LOG_LEVEL", "info"),
	}
}

// Validate checks the required settings and fills defaults.
func (c *Config) Validate() error {
	if c.Account == "" {
		return fmt.Errorf("SNOWFLAKE_ACCOUNT is required")
	}
	if c.User == "" {
		return fmt.Errorf("SNOWFLAKE_USER is required")
	}
	if c.Password == "" {
		return fmt.Errorf("SNOWFLAKE_PASSWORD is required")
	}
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MCPAddr == "" {
		c.MCPAddr = DefaultMCPAddr
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultConcurrency
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
