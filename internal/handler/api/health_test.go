package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe bool

func (p probe) IsConnected() bool { return bool(p) }

func serve(t *testing.T, h *HealthHandler) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body HealthResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthOK(t *testing.T) {
	h := NewHealthHandler(map[string]ConnectionProbe{"kraken": probe(true), "alpaca": probe(true)}, nil)
	rec, body := serve(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
	assert.True(t, body.Components["kraken"])
	assert.Empty(t, body.Degraded)
}

func TestHealthDegraded(t *testing.T) {
	h := NewHealthHandler(map[string]ConnectionProbe{"kraken": probe(false), "alpaca": probe(true)}, nil)
	rec, body := serve(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, []string{"kraken"}, body.Degraded)
}

func TestHealthRateLimited(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	var last int
	for i := 0; i < 25; i++ {
		rec, _ := serve(t, h)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
