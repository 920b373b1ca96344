package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address)
	assert.Equal(t, DriverSQLite, cfg.Transactional.Driver)
	assert.Equal(t, DriverDuckDB, cfg.Analytical.Driver)
	assert.Equal(t, AuthNone, cfg.Auth.Type)
	assert.True(t, cfg.Cache.Enabled)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		return cfg
	}

	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		errContains string
	}{
		{
			name:   "default config is valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:        "missing address",
			mutate:      func(cfg *Config) { cfg.Server.Address = "" },
			errContains: "address is required",
		},
		{
			name:        "unknown transactional driver",
			mutate:      func(cfg *Config) { cfg.Transactional.Driver = "mysql" },
			errContains: "unsupported transactional driver",
		},
		{
			name:   "postgres transactional driver",
			mutate: func(cfg *Config) { cfg.Transactional.Driver = DriverPostgres; cfg.Transactional.DSN = "postgres://localhost/app" },
		},
		{
			name:        "postgres without DSN",
			mutate:      func(cfg *Config) { cfg.Transactional.Driver = DriverPostgres; cfg.Transactional.DSN = "" },
			errContains: "requires a DSN",
		},
		{
			name:        "analytical driver must be duckdb",
			mutate:      func(cfg *Config) { cfg.Analytical.Driver = "clickhouse" },
			errContains: "unsupported analytical driver",
		},
		{
			name:        "basic auth without users",
			mutate:      func(cfg *Config) { cfg.Auth.Type = AuthBasic },
			errContains: "at least one user",
		},
		{
			name:   "basic auth with users",
			mutate: func(cfg *Config) { cfg.Auth.Type = AuthBasic; cfg.Auth.BasicUsers = map[string]string{"admin": "secret"} },
		},
		{
			name:        "bearer auth without token",
			mutate:      func(cfg *Config) { cfg.Auth.Type = AuthBearer },
			errContains: "requires a token",
		},
		{
			name:        "jwt auth without secret",
			mutate:      func(cfg *Config) { cfg.Auth.Type = AuthJWT },
			errContains: "requires secret",
		},
		{
			name:   "jwt auth with secret",
			mutate: func(cfg *Config) { cfg.Auth.Type = AuthJWT; cfg.Auth.JWT.Secret = "hmac-secret" },
		},
		{
			name:        "unknown auth type",
			mutate:      func(cfg *Config) { cfg.Auth.Type = "oauth2" },
			errContains: "unsupported auth type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_ValidateDefaults(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Address: ":8080"},
	}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DriverSQLite, cfg.Transactional.Driver)
	assert.Equal(t, DriverDuckDB, cfg.Analytical.Driver)
	assert.Equal(t, AuthNone, cfg.Auth.Type)
	assert.Equal(t, 100_000, cfg.Query.MaxLength)
	assert.Equal(t, 5*time.Minute, cfg.Query.Timeout)
}

func TestEngineConfig_EngineSettings(t *testing.T) {
	ec := EngineConfig{
		Driver:             DriverPostgres,
		DSN:                "postgres://localhost/app",
		MaxOpenConnections: 10,
		MaxIdleConnections: 2,
		ConnMaxLifetime:    time.Hour,
		ConnMaxIdleTime:    10 * time.Minute,
		ConnectTimeout:     5 * time.Second,
	}

	settings := ec.EngineSettings()
	assert.Equal(t, "postgres://localhost/app", settings.DSN)
	assert.Equal(t, 10, settings.MaxOpenConnections)
	assert.Equal(t, 2, settings.MaxIdleConnections)
	assert.Equal(t, time.Hour, settings.ConnMaxLifetime)
	assert.Equal(t, 10*time.Minute, settings.ConnMaxIdleTime)
	assert.Equal(t, 5*time.Second, settings.ConnectTimeout)
}
