package engines

import (
	"net/url"
	"strings"
	"time"
)

// Config represents engine database configuration.
type Config struct {
	DSN                string        `json:"dsn"`
	MaxOpenConnections int           `json:"max_open_connections"`
	MaxIdleConnections int           `json:"max_idle_connections"`
	ConnMaxLifetime    time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime    time.Duration `json:"conn_max_idle_time"`
	ConnectTimeout     time.Duration `json:"connect_timeout"`
}

func (c Config) withDefaults() Config {
	if c.MaxOpenConnections <= 0 {
		c.MaxOpenConnections = 25
	}
	if c.MaxIdleConnections <= 0 {
		c.MaxIdleConnections = 5
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = 10 * time.Minute
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 30 * time.Second
	}
	return c
}

// MaskDSN hides sensitive information (passwords, tokens, secrets) but keeps
// enough of the string to be recognisable in logs.
//
// Behaviour:
//
//   - ":memory:" or empty  → returned verbatim (in-memory databases)
//   - URL-like DSNs        → redact user-password and sensitive query params
//   - Plain paths/files    → keep first/last 3 runes, mask the middle
func MaskDSN(dsn string) string {
	if dsn == "" || dsn == ":memory:" {
		return dsn
	}

	u, err := url.Parse(dsn)
	if err == nil && looksLikeURL(u) {
		if ui := u.User; ui != nil {
			user := ui.Username()
			if _, hasPass := ui.Password(); hasPass {
				u.User = url.UserPassword(user, "*****")
			} else {
				u.User = url.User(user)
			}
		}

		q := u.Query()
		for k := range q {
			if isSensitiveKey(k) {
				q.Set(k, "*****")
			}
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	runes := []rune(dsn)
	if len(runes) <= 10 {
		return "***"
	}
	return string(runes[:3]) + "***" + string(runes[len(runes)-3:])
}

// looksLikeURL returns true when the parsed value has enough URL structure to
// treat it as a DSN we can meaningfully redact.
func looksLikeURL(u *url.URL) bool {
	return u.Scheme != "" || u.Host != "" || u.User != nil || u.RawQuery != ""
}

// isSensitiveKey reports whether a query key should have its value masked.
func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	switch {
	case strings.Contains(key, "pass"),
		strings.Contains(key, "token"),
		strings.Contains(key, "secret"),
		strings.HasSuffix(key, "key"):
		return true
	default:
		return false
	}
}
