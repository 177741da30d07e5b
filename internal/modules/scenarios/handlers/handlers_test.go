package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel-quant/internal/modules/scenarios"
)

func newRouter() chi.Router {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewHandler(scenarios.NewEngine(scenarios.Options{}, logger), logger)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func do(t *testing.T, router chi.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w, response
}

func TestHandleList(t *testing.T) {
	w, response := do(t, newRouter(), "GET", "/scenarios", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(8), data["count"])
	first := data["scenarios"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "geopolitical_crisis", first["key"])
}

func TestHandleGet(t *testing.T) {
	router := newRouter()

	w, response := do(t, router, "GET", "/scenarios/market_crash", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Market Crash", response["data"].(map[string]interface{})["name"])

	w, _ = do(t, router, "GET", "/scenarios/alien_invasion", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleAdd(t *testing.T) {
	router := newRouter()
	body := `{"key": "always", "name": "Always", "impacts": {"equity": -0.1}, "probability": 1}`

	w, response := do(t, router, "POST", "/scenarios", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "always", response["data"].(map[string]interface{})["key"])

	w, response = do(t, router, "POST", "/scenarios", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, response["error"], "always")

	w, _ = do(t, router, "POST", "/scenarios", `{"key": "bad", "impacts": {"equity": -1.5}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleImpact(t *testing.T) {
	router := newRouter()

	w, response := do(t, router, "POST", "/scenarios/impact",
		`{"weights": {"SPY": 0.6, "TLT": 0.4}, "scenario": "market_crash", "portfolio_value": 100000}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.InDelta(t, -0.19, data["impact"].(float64), 1e-9)
	assert.InDelta(t, 81000, data["stressed_value"].(float64), 1e-6)
	assert.Equal(t, "moderate", data["severity"])
	assert.Len(t, data["breakdown"], 2)

	w, _ = do(t, router, "POST", "/scenarios/impact", `{"weights": {"SPY": 1}, "scenario": "nope", "portfolio_value": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChain(t *testing.T) {
	router := newRouter()
	w, _ := do(t, router, "POST", "/scenarios", `{"key": "always", "name": "Always", "impacts": {"equity": -0.1}, "probability": 1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, response := do(t, router, "POST", "/scenarios/chain",
		`{"scenarios": ["market_crash", "always"], "weights": {"SPY": 1}, "portfolio_value": 100}`)
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	chain := data["chain"].(map[string]interface{})
	result := data["result"].(map[string]interface{})
	assert.NotEmpty(t, chain["id"])
	assert.Equal(t, chain["id"], result["chain_id"])
	assert.InDelta(t, 58.5, result["final_value"].(float64), 1e-9)
	assert.Equal(t, float64(2), result["occurred_steps"])

	w, _ = do(t, router, "POST", "/scenarios/chain", `{"scenarios": [], "weights": {"SPY": 1}, "portfolio_value": 100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, router, "POST", "/scenarios/chain", `{"scenarios": ["nope"], "weights": {"SPY": 1}, "portfolio_value": 100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
