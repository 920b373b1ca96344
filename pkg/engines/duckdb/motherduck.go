package duckdb

import (
	"net/url"
	"strings"
)

// isMotherDuckDSN reports whether the DSN targets MotherDuck rather than a
// local database file.
func isMotherDuckDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "md:") || strings.HasPrefix(dsn, "motherduck:")
}

// normalizeMotherDuckDSN converts motherduck: DSNs to the md: form the
// driver understands.
func normalizeMotherDuckDSN(dsn string) string {
	if !strings.HasPrefix(dsn, "motherduck:") {
		return dsn
	}
	rest := strings.TrimPrefix(dsn, "motherduck:")
	rest = strings.TrimPrefix(rest, "//")
	return "md:" + rest
}

// injectMotherDuckToken sets the motherduck_token query parameter on a
// MotherDuck DSN. If the DSN already carries the parameter or the token is
// empty, the DSN is returned unchanged.
func injectMotherDuckToken(dsn, token string) string {
	if token == "" || !isMotherDuckDSN(dsn) {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	if q.Get("motherduck_token") == "" {
		q.Set("motherduck_token", token)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
