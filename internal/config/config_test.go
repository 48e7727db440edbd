package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnvVars()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, RegistryModeRemote, cfg.Registration.RegistryMode)
	assert.Equal(t, "http://localhost:5000", cfg.Upstream.FarmerAPIURL)
	assert.Equal(t, "http://localhost:8000", cfg.Upstream.MLAPIURL)
	assert.Equal(t, "https://api.weatherapi.com", cfg.Upstream.WeatherAPIURL)
	assert.Empty(t, cfg.Upstream.WeatherAPIKey)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Registration.SessionTTL)
	assert.Equal(t, "/dashboard", cfg.Registration.RedirectPath)
	assert.Equal(t, 2*time.Second, cfg.Registration.RedirectDelay)
	assert.Len(t, cfg.CORS.Origins, 2)
	assert.False(t, cfg.UsesPostgres())
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnvVars()
	os.Setenv("PORT", "9090")
	os.Setenv("ENV", "production")
	os.Setenv("REGISTRY_MODE", "Postgres")
	os.Setenv("DB_HOST", "db")
	os.Setenv("DB_PASSWORD", "secret")
	os.Setenv("DB_POOL_MIN", "1")
	os.Setenv("DB_POOL_MAX", "4")
	os.Setenv("ML_API_URL", "http://ml:8000/")
	os.Setenv("WEATHER_API_KEY", "abc123")
	os.Setenv("UPSTREAM_TIMEOUT", "3s")
	os.Setenv("SESSION_TTL", "1h")
	os.Setenv("CORS_ORIGINS", "https://farm.example.com")
	defer clearConfigEnvVars()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.True(t, cfg.UsesPostgres())
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 1, cfg.Database.PoolMin)
	assert.Equal(t, 4, cfg.Database.PoolMax)
	assert.Equal(t, "http://ml:8000", cfg.Upstream.MLAPIURL, "trailing slash should be trimmed")
	assert.Equal(t, "abc123", cfg.Upstream.WeatherAPIKey)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, time.Hour, cfg.Registration.SessionTTL)
	assert.Equal(t, []string{"https://farm.example.com"}, cfg.CORS.Origins)
}

func TestLoad_PostgresModeMissingPassword(t *testing.T) {
	clearConfigEnvVars()
	os.Setenv("REGISTRY_MODE", RegistryModePostgres)
	defer clearConfigEnvVars()

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoad_UnknownRegistryMode(t *testing.T) {
	clearConfigEnvVars()
	os.Setenv("REGISTRY_MODE", "firestore")
	defer clearConfigEnvVars()

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGISTRY_MODE")
}

func TestValidate_InvalidPoolSizes(t *testing.T) {
	tests := []struct {
		name    string
		poolMin int
		poolMax int
		wantErr bool
	}{
		{name: "negative pool min", poolMin: -1, poolMax: 10, wantErr: true},
		{name: "zero pool max", poolMin: 0, poolMax: 0, wantErr: true},
		{name: "pool min greater than max", poolMin: 15, poolMax: 10, wantErr: true},
		{name: "valid pool sizes", poolMin: 2, poolMax: 10, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Registration.RegistryMode = RegistryModePostgres
			cfg.Database.PoolMin = tt.poolMin
			cfg.Database.PoolMax = tt.poolMax

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }},
		{name: "missing farmer api in remote mode", mutate: func(c *Config) { c.Upstream.FarmerAPIURL = "" }},
		{name: "missing ml api", mutate: func(c *Config) { c.Upstream.MLAPIURL = "" }},
		{name: "zero upstream timeout", mutate: func(c *Config) { c.Upstream.Timeout = 0 }},
		{name: "zero session ttl", mutate: func(c *Config) { c.Registration.SessionTTL = 0 }},
		{name: "negative redirect delay", mutate: func(c *Config) { c.Registration.RedirectDelay = -time.Second }},
		{name: "missing CORS origins", mutate: func(c *Config) { c.CORS.Origins = []string{} }},
		{
			name: "missing db host in postgres mode",
			mutate: func(c *Config) {
				c.Registration.RegistryMode = RegistryModePostgres
				c.Database.Host = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_RemoteModeIgnoresDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Database = DatabaseConfig{}
	assert.NoError(t, cfg.Validate())
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{name: "single origin", input: "http://localhost:3000", expect: []string{"http://localhost:3000"}},
		{name: "multiple origins", input: "http://localhost:3000,http://localhost:3001", expect: []string{"http://localhost:3000", "http://localhost:3001"}},
		{name: "origins with spaces", input: " http://localhost:3000 , http://localhost:3001 ", expect: []string{"http://localhost:3000", "http://localhost:3001"}},
		{name: "empty string", input: "", expect: []string{}},
		{name: "only commas", input: ",,,", expect: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, parseOrigins(tt.input))
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development"},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "agrireg",
			User: "postgres", Password: "postgres", PoolMin: 2, PoolMax: 10,
		},
		CORS: CORSConfig{Origins: []string{"http://localhost:3000"}},
		Upstream: UpstreamConfig{
			FarmerAPIURL: "http://localhost:5000",
			MLAPIURL:     "http://localhost:8000",
			Timeout:      10 * time.Second,
		},
		Registration: RegistrationConfig{
			RegistryMode:  RegistryModeRemote,
			SessionTTL:    30 * time.Minute,
			RedirectPath:  "/dashboard",
			RedirectDelay: 2 * time.Second,
		},
	}
}

// Helper function to clear all config-related environment variables
func clearConfigEnvVars() {
	for _, key := range []string{
		"PORT", "ENV", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_POOL_MIN", "DB_POOL_MAX", "CORS_ORIGINS", "REGISTRY_MODE",
		"FARMER_API_URL", "ML_API_URL", "WEATHER_API_URL", "WEATHER_API_KEY",
		"UPSTREAM_TIMEOUT", "SESSION_TTL", "SUBMIT_REDIRECT_PATH", "SUBMIT_REDIRECT_DELAY",
	} {
		os.Unsetenv(key)
	}
}
