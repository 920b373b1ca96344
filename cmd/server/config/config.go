// Package config provides configuration structures for the query router server.
package config

import (
	"fmt"
	"time"

	"github.com/TFMV/janus/pkg/engines"
)

// Driver names accepted for the engine backends.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDuckDB   = "duckdb"
)

// Auth types accepted by the serving layer.
const (
	AuthNone   = "none"
	AuthBasic  = "basic"
	AuthBearer = "bearer"
	AuthJWT    = "jwt"
)

// Config represents the server configuration.
type Config struct {
	// Server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Logging
	Log LogConfig `yaml:"log" json:"log"`

	// Engine backends
	Transactional EngineConfig `yaml:"transactional" json:"transactional"`
	Analytical    EngineConfig `yaml:"analytical" json:"analytical"`

	// Authentication configuration
	Auth AuthConfig `yaml:"auth" json:"auth"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Explanation cache configuration
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Query limits
	Query QueryConfig `yaml:"query" json:"query"`
}

// ServerConfig represents the HTTP listener configuration.
type ServerConfig struct {
	Address         string        `yaml:"address" json:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

// EngineConfig represents one engine backend.
type EngineConfig struct {
	Driver             string        `yaml:"driver" json:"driver"`
	DSN                string        `yaml:"dsn" json:"dsn"`
	MaxOpenConnections int           `yaml:"max_open_connections" json:"max_open_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections" json:"max_idle_connections"`
	ConnMaxLifetime    time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime    time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
}

// EngineSettings converts the engine section into the engines package config.
func (e EngineConfig) EngineSettings() engines.Config {
	return engines.Config{
		DSN:                e.DSN,
		MaxOpenConnections: e.MaxOpenConnections,
		MaxIdleConnections: e.MaxIdleConnections,
		ConnMaxLifetime:    e.ConnMaxLifetime,
		ConnMaxIdleTime:    e.ConnMaxIdleTime,
		ConnectTimeout:     e.ConnectTimeout,
	}
}

// AuthConfig represents authentication configuration.
type AuthConfig struct {
	Type string `yaml:"type" json:"type"` // none, basic, bearer, jwt

	// Basic auth: username -> password
	BasicUsers map[string]string `yaml:"basic_users" json:"basic_users"`

	// Bearer auth: single static token
	BearerToken string `yaml:"bearer_token" json:"bearer_token"`

	// JWT auth
	JWT JWTConfig `yaml:"jwt" json:"jwt"`
}

// JWTConfig represents JWT authentication configuration.
type JWTConfig struct {
	Secret   string `yaml:"secret" json:"secret"`
	Issuer   string `yaml:"issuer" json:"issuer"`
	Audience string `yaml:"audience" json:"audience"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
}

// CacheConfig represents the explanation cache configuration.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" json:"enabled"`
	MaxEntries int           `yaml:"max_entries" json:"max_entries"`
	TTL        time.Duration `yaml:"ttl" json:"ttl"`
}

// QueryConfig represents query limits.
type QueryConfig struct {
	MaxLength int           `yaml:"max_length" json:"max_length"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// Validate validates the configuration and fills in defaults.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	switch c.Transactional.Driver {
	case DriverSQLite, DriverPostgres:
	case "":
		c.Transactional.Driver = DriverSQLite
	default:
		return fmt.Errorf("unsupported transactional driver: %s", c.Transactional.Driver)
	}
	if c.Transactional.Driver == DriverPostgres && c.Transactional.DSN == "" {
		return fmt.Errorf("transactional postgres driver requires a DSN")
	}

	switch c.Analytical.Driver {
	case DriverDuckDB:
	case "":
		c.Analytical.Driver = DriverDuckDB
	default:
		return fmt.Errorf("unsupported analytical driver: %s", c.Analytical.Driver)
	}

	switch c.Auth.Type {
	case "":
		c.Auth.Type = AuthNone
	case AuthNone:
	case AuthBasic:
		if len(c.Auth.BasicUsers) == 0 {
			return fmt.Errorf("basic auth requires at least one user")
		}
	case AuthBearer:
		if c.Auth.BearerToken == "" {
			return fmt.Errorf("bearer auth requires a token")
		}
	case AuthJWT:
		if c.Auth.JWT.Secret == "" {
			return fmt.Errorf("JWT auth requires secret")
		}
	default:
		return fmt.Errorf("unsupported auth type: %s", c.Auth.Type)
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}

	if c.Cache.Enabled {
		if c.Cache.MaxEntries <= 0 {
			c.Cache.MaxEntries = 1000
		}
		if c.Cache.TTL <= 0 {
			c.Cache.TTL = 5 * time.Minute
		}
	}

	if c.Query.MaxLength <= 0 {
		c.Query.MaxLength = 100_000
	}
	if c.Query.Timeout <= 0 {
		c.Query.Timeout = 5 * time.Minute
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         "0.0.0.0:8080",
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
		Transactional: EngineConfig{
			Driver: DriverSQLite,
			DSN:    ":memory:",
		},
		Analytical: EngineConfig{
			Driver: DriverDuckDB,
			DSN:    ":memory:",
		},
		Auth: AuthConfig{
			Type: AuthNone,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9090",
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 1000,
			TTL:        5 * time.Minute,
		},
		Query: QueryConfig{
			MaxLength: 100_000,
			Timeout:   5 * time.Minute,
		},
	}
}
