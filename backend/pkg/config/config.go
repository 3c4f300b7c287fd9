package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	apperrors "socialgraph/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Store
	SeedFile        string // Optional YAML fixture loaded on top of the member type seed
	CascadeAllPosts bool   // Delete every post of a removed user instead of only the first
	MaxBodyBytes    int64

	// Neo4j mirror export, disabled when NEO4J_URI is empty
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	env := getEnv("ENV", "development")
	defaultLevel := "debug"
	if env == "production" {
		defaultLevel = "info"
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		LogLevel:        getEnv("LOG_LEVEL", defaultLevel),
		SeedFile:        getEnv("SEED_FILE", ""),
		CascadeAllPosts: getEnvBool("CASCADE_ALL_POSTS", false),
		MaxBodyBytes:    int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		Neo4jURI:        getEnv("NEO4J_URI", ""),
		Neo4jUser:       getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:   getEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase:   getEnv("NEO4J_DATABASE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Port == "" {
		return apperrors.NewConfigMissingRequired("PORT")
	}
	if c.MaxBodyBytes <= 0 {
		return apperrors.NewConfigValidationFailed("MAX_BODY_BYTES", "must be positive")
	}
	// Neo4j is optional; once a URI is given the credentials must follow
	if c.Neo4jURI != "" {
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
		if c.Neo4jPassword == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
		}
	}
	return nil
}

// ExportEnabled reports whether a Neo4j mirror is configured
func (c *Config) ExportEnabled() bool {
	return c.Neo4jURI != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseBool(value); err == nil {
			return result
		}
	}
	return defaultValue
}
