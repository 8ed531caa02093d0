package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Port            string
	MongoDBURI      string
	MongoDBPassword string
	JWTSecret       string
	AuthJWKSURL     string
	ClientURL       string
	Environment     string
	LogLevel        string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AuthJWKSURL:     os.Getenv("AUTH_JWKS_URL"),
		ClientURL:       getEnvWithDefault("CLIENT_URL", "http://localhost:3000"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.JWTSecret == "" && cfg.AuthJWKSURL == "" {
		return nil, fmt.Errorf("JWT_SECRET or AUTH_JWKS_URL is required")
	}

	return cfg, nil
}

// AllowedOrigins splits the comma-separated CLIENT_URL list for CORS.
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.ClientURL, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
