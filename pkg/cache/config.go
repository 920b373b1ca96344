package cache

import "time"

// Config holds the configuration for the explanation cache
type Config struct {
	// MaxEntries is the maximum number of cached explanations
	MaxEntries int
	// TTL is the time-to-live for cache entries; zero disables expiry
	TTL time.Duration
	// EnableStats enables cache statistics collection
	EnableStats bool
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() *Config {
	return &Config{
		MaxEntries:  1000,
		TTL:         5 * time.Minute,
		EnableStats: true,
	}
}

// WithMaxEntries sets the maximum number of cached explanations
func (c *Config) WithMaxEntries(n int) *Config {
	c.MaxEntries = n
	return c
}

// WithTTL sets the time-to-live for cache entries
func (c *Config) WithTTL(ttl time.Duration) *Config {
	c.TTL = ttl
	return c
}

// WithStats enables or disables cache statistics
func (c *Config) WithStats(enable bool) *Config {
	c.EnableStats = enable
	return c
}
