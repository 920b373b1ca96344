package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPinger implements Pinger
type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	t.Run("all engines healthy", func(t *testing.T) {
		handler := NewHealthHandler(&mockLogger{})
		handler.AddEngine("transactional", &mockPinger{})
		handler.AddEngine("analytical", &mockPinger{})

		rec := httptest.NewRecorder()
		handler.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var status healthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, "ok", status.Engines["transactional"])
		assert.Equal(t, "ok", status.Engines["analytical"])
	})

	t.Run("failing engine degrades status", func(t *testing.T) {
		handler := NewHealthHandler(&mockLogger{})
		handler.AddEngine("transactional", &mockPinger{})
		handler.AddEngine("analytical", &mockPinger{err: assert.AnError})

		rec := httptest.NewRecorder()
		handler.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var status healthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "degraded", status.Status)
		assert.Equal(t, "ok", status.Engines["transactional"])
		assert.Contains(t, status.Engines["analytical"], assert.AnError.Error())
	})

	t.Run("no engines registered", func(t *testing.T) {
		handler := NewHealthHandler(&mockLogger{})

		rec := httptest.NewRecorder()
		handler.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHealthHandler_HandleReady(t *testing.T) {
	handler := NewHealthHandler(&mockLogger{})

	rec := httptest.NewRecorder()
	handler.HandleReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	handler.SetReady(true)
	rec = httptest.NewRecorder()
	handler.HandleReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	handler.SetReady(false)
	rec = httptest.NewRecorder()
	handler.HandleReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
