// Package middleware provides HTTP middleware for the query router server.
package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/TFMV/janus/cmd/server/config"
	routerErrors "github.com/TFMV/janus/pkg/errors"
)

// AuthMiddleware provides authentication middleware.
type AuthMiddleware struct {
	config config.AuthConfig
	logger zerolog.Logger
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(cfg config.AuthConfig, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		config: cfg,
		logger: logger,
	}
}

// Handler returns the authentication handler. Health endpoints stay open
// so probes keep working when credentials rotate.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" {
			next.ServeHTTP(w, r)
			return
		}

		authCtx, err := m.authenticate(r)
		if err != nil {
			m.logger.Warn().Err(err).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Msg("Authentication failed")
			m.unauthorized(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(authCtx))
	})
}

// authenticate performs authentication based on configured type.
func (m *AuthMiddleware) authenticate(r *http.Request) (context.Context, error) {
	switch m.config.Type {
	case "", config.AuthNone:
		return r.Context(), nil
	case config.AuthBasic:
		return m.authenticateBasic(r)
	case config.AuthBearer:
		return m.authenticateBearer(r)
	case config.AuthJWT:
		return m.authenticateJWT(r)
	default:
		return nil, fmt.Errorf("unsupported auth type: %s", m.config.Type)
	}
}

// authenticateBasic performs basic authentication.
func (m *AuthMiddleware) authenticateBasic(r *http.Request) (context.Context, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Basic ") {
		return nil, fmt.Errorf("invalid authorization header")
	}

	// Decode credentials
	encoded := strings.TrimPrefix(authHeader, "Basic ")
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials encoding")
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid credentials format")
	}

	username := parts[0]
	password := parts[1]

	expected, ok := m.config.BasicUsers[username]
	if !ok {
		return nil, fmt.Errorf("invalid credentials")
	}

	// Constant time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(password), []byte(expected)) != 1 {
		return nil, fmt.Errorf("invalid credentials")
	}

	return context.WithValue(r.Context(), contextKeyUser, username), nil
}

// authenticateBearer performs static bearer token authentication.
func (m *AuthMiddleware) authenticateBearer(r *http.Request) (context.Context, error) {
	token, err := bearerToken(r)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(m.config.BearerToken)) != 1 {
		return nil, fmt.Errorf("invalid token")
	}

	return r.Context(), nil
}

// authenticateJWT performs HS256 JWT authentication, enforcing issuer and
// audience when configured.
func (m *AuthMiddleware) authenticateJWT(r *http.Request) (context.Context, error) {
	token, err := bearerToken(r)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if m.config.JWT.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.JWT.Issuer))
	}
	if m.config.JWT.Audience != "" {
		opts = append(opts, jwt.WithAudience(m.config.JWT.Audience))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.config.JWT.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	ctx := r.Context()
	if claims.Subject != "" {
		ctx = context.WithValue(ctx, contextKeyUser, claims.Subject)
	}
	return ctx, nil
}

// bearerToken extracts the token from a Bearer authorization header.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("invalid authorization header")
	}
	return strings.TrimPrefix(authHeader, "Bearer "), nil
}

// unauthorized writes the 401 error envelope.
func (m *AuthMiddleware) unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", m.challenge())
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": routerErrors.New(routerErrors.CodeUnauthorized, err.Error()),
	})
}

// challenge reports the authentication scheme for the WWW-Authenticate header.
func (m *AuthMiddleware) challenge() string {
	if m.config.Type == config.AuthBasic {
		return `Basic realm="janus"`
	}
	return "Bearer"
}

// Context keys for authentication
type contextKey string

const (
	contextKeyUser      contextKey = "user"
	contextKeyRequestID contextKey = "request_id"
)

// GetUser extracts the authenticated user from context.
func GetUser(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(contextKeyUser).(string)
	return user, ok
}

// GetRequestID extracts the request ID from context.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKeyRequestID).(string)
	return id, ok
}
