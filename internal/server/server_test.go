package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel-quant/internal/httputil"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteData(w, r, "pong", zerolog.Nop())
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

func newTestServer() *Server {
	return New(Config{
		Log:     zerolog.New(nil).Level(zerolog.Disabled),
		Port:    0,
		DevMode: true,
		Routes:  []RouteRegistrar{pingRoutes{}},
	})
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestServer().Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, Version, response.Version)
	assert.GreaterOrEqual(t, response.MemoryPercent, 0.0)
}

func TestRoutesMountedUnderAPI(t *testing.T) {
	router := newTestServer().Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var envelope httputil.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "pong", envelope.Data)
	assert.NotEmpty(t, envelope.Metadata.RequestID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecoverer(t *testing.T) {
	w := httptest.NewRecorder()
	newTestServer().Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	w := httptest.NewRecorder()
	newTestServer().Router().ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
