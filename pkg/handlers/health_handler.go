package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"
)

// pingTimeout bounds each engine health probe.
const pingTimeout = 2 * time.Second

// healthStatus is the response body for GET /healthz.
type healthStatus struct {
	Status  string            `json:"status"`
	Engines map[string]string `json:"engines,omitempty"`
}

// HealthHandler reports liveness and readiness for the API and its engines.
type HealthHandler struct {
	checks []engineCheck
	ready  atomic.Bool
	logger Logger
}

type engineCheck struct {
	name   string
	pinger Pinger
}

// NewHealthHandler creates a health handler with no registered engines.
func NewHealthHandler(logger Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// AddEngine registers an engine connection to probe on /healthz. Not safe
// for concurrent use; register engines before serving.
func (h *HealthHandler) AddEngine(name string, pinger Pinger) {
	h.checks = append(h.checks, engineCheck{name: name, pinger: pinger})
}

// SetReady flips readiness. The server marks itself ready once its
// listeners are up and not-ready again when shutdown begins.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HandleHealth probes every registered engine and reports per-engine
// status. Any failing probe degrades the overall status to 503.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{Status: "ok", Engines: make(map[string]string, len(h.checks))}
	code := http.StatusOK

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		err := check.pinger.Ping(ctx)
		cancel()

		if err != nil {
			h.logger.Warn("Engine health probe failed", "engine", check.name, "error", err)
			status.Engines[check.name] = err.Error()
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status.Engines[check.name] = "ok"
	}

	writeJSON(w, code, status)
}

// HandleReady reports whether the server is accepting traffic.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
