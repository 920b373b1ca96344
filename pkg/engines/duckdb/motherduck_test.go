package duckdb

import "testing"

func TestMotherDuckDSNHelpers(t *testing.T) {
	cases := []struct {
		dsn   string
		token string
		want  string
	}{
		{"motherduck://analytics", "tok", "md:analytics?motherduck_token=tok"},
		{"md:analytics", "tok", "md:analytics?motherduck_token=tok"},
		{"md:", "tok", "md:?motherduck_token=tok"},
		{"md:analytics?motherduck_token=existing", "tok", "md:analytics?motherduck_token=existing"},
		{"md:analytics", "s3cr3t+/=", "md:analytics?motherduck_token=s3cr3t%2B%2F%3D"},
		{"md:analytics", "", "md:analytics"}, // empty token
		{"janus.duckdb", "tok", "janus.duckdb"},
		{":memory:", "tok", ":memory:"},
	}
	for _, c := range cases {
		norm := normalizeMotherDuckDSN(c.dsn)
		got := injectMotherDuckToken(norm, c.token)
		if got != c.want {
			t.Errorf("injectMotherDuckToken(%q, %q) = %q, want %q", c.dsn, c.token, got, c.want)
		}
	}
}

func TestNormalizeMotherDuckDSN(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"motherduck://analytics", "md:analytics"},
		{"motherduck:analytics", "md:analytics"},
		{"md:analytics", "md:analytics"}, // already normalized
		{"janus.duckdb", "janus.duckdb"}, // local file
		{":memory:", ":memory:"},
	}
	for _, c := range cases {
		got := normalizeMotherDuckDSN(c.input)
		if got != c.want {
			t.Errorf("normalizeMotherDuckDSN(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}
