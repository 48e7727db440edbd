package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Registry modes select where completed registrations are sent.
const (
	RegistryModeRemote   = "remote"
	RegistryModePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	CORS         CORSConfig
	Upstream     UpstreamConfig
	Registration RegistrationConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
// Only used when the registry runs in postgres mode.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// UpstreamConfig holds the base URLs and credentials of external services.
type UpstreamConfig struct {
	FarmerAPIURL  string
	MLAPIURL      string
	WeatherAPIURL string
	WeatherAPIKey string
	Timeout       time.Duration
}

// RegistrationConfig holds registration workflow settings.
type RegistrationConfig struct {
	RegistryMode  string
	SessionTTL    time.Duration
	RedirectPath  string
	RedirectDelay time.Duration
}

// Load reads configuration from an optional .env file and environment variables.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "agrireg")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("REGISTRY_MODE", RegistryModeRemote)
	v.SetDefault("FARMER_API_URL", "http://localhost:5000")
	v.SetDefault("ML_API_URL", "http://localhost:8000")
	v.SetDefault("WEATHER_API_URL", "https://api.weatherapi.com")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("SUBMIT_REDIRECT_PATH", "/dashboard")
	v.SetDefault("SUBMIT_REDIRECT_DELAY", "2s")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Upstream: UpstreamConfig{
			FarmerAPIURL:  strings.TrimRight(v.GetString("FARMER_API_URL"), "/"),
			MLAPIURL:      strings.TrimRight(v.GetString("ML_API_URL"), "/"),
			WeatherAPIURL: strings.TrimRight(v.GetString("WEATHER_API_URL"), "/"),
			WeatherAPIKey: v.GetString("WEATHER_API_KEY"),
			Timeout:       v.GetDuration("UPSTREAM_TIMEOUT"),
		},
		Registration: RegistrationConfig{
			RegistryMode:  strings.ToLower(strings.TrimSpace(v.GetString("REGISTRY_MODE"))),
			SessionTTL:    v.GetDuration("SESSION_TTL"),
			RedirectPath:  v.GetString("SUBMIT_REDIRECT_PATH"),
			RedirectDelay: v.GetDuration("SUBMIT_REDIRECT_DELAY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
// Database settings are only checked when the registry runs in postgres mode.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Registration.RegistryMode {
	case RegistryModeRemote:
		if c.Upstream.FarmerAPIURL == "" {
			return fmt.Errorf("FARMER_API_URL is required in %s registry mode", RegistryModeRemote)
		}
	case RegistryModePostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("REGISTRY_MODE must be one of: %s, %s", RegistryModeRemote, RegistryModePostgres)
	}

	if c.Upstream.MLAPIURL == "" {
		return fmt.Errorf("ML_API_URL is required")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.Registration.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Registration.RedirectDelay < 0 {
		return fmt.Errorf("SUBMIT_REDIRECT_DELAY must be non-negative")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// Validate checks the PostgreSQL connection settings.
func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// UsesPostgres reports whether completed registrations are stored locally.
func (c *Config) UsesPostgres() bool {
	return c.Registration.RegistryMode == RegistryModePostgres
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
