package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"

	routerErrors "github.com/TFMV/janus/pkg/errors"
)

// RecoveryMiddleware provides panic recovery middleware.
type RecoveryMiddleware struct {
	logger zerolog.Logger
}

// NewRecoveryMiddleware creates a new recovery middleware.
func NewRecoveryMiddleware(logger zerolog.Logger) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger: logger,
	}
}

// Handler returns the panic recovery handler. A recovered panic becomes a
// 500 with a generic body; the stack goes to the log, never the client.
func (m *RecoveryMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				m.handlePanic(rec, r)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error": routerErrors.New(routerErrors.CodeInternal, "internal server error"),
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// handlePanic logs panic information.
func (m *RecoveryMiddleware) handlePanic(rec interface{}, r *http.Request) {
	stack := debug.Stack()

	m.logger.Error().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Interface("panic", rec).
		Str("stack", string(stack)).
		Msg("Panic recovered")

	// Also print to stderr for debugging
	fmt.Fprintf(stderr, "PANIC in %s %s: %v\n%s\n", r.Method, r.URL.Path, rec, stack)
}

// stderr is used for panic output
var stderr = os.Stderr
