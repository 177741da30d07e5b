package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/optimization"
)

func newRouter() chi.Router {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewHandler(optimization.NewOptimizer(optimization.Options{RiskFreeRate: 0.02}, logger), logger)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func antiCorrelated(t *testing.T) string {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := make([]float64, 40)
	b := make([]float64, 40)
	for i := range a {
		a[i] = 0.01
		if i%2 == 1 {
			a[i] = -0.01
		}
		b[i] = -a[i]
	}
	raw, err := json.Marshal(domain.ReturnMatrix{
		"A": domain.DailySeries(start, a),
		"B": domain.DailySeries(start, b),
	})
	require.NoError(t, err)
	return string(raw)
}

func do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHandleOptimize_MinVariance(t *testing.T) {
	status, response := do(t, "POST", "/optimization/min_variance", `{"returns": `+antiCorrelated(t)+`}`)
	require.Equal(t, http.StatusOK, status)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "min_variance", data["method"])
	weights := data["optimal_weights"].(map[string]interface{})
	assert.InDelta(t, 0.5, weights["A"].(float64), 1e-3)
	assert.InDelta(t, 0.5, weights["B"].(float64), 1e-3)
	assert.InDelta(t, 0.0, data["expected_risk"].(float64), 1e-3)
	assert.NotEmpty(t, response["metadata"].(map[string]interface{})["request_id"])
}

func TestHandleOptimize_Errors(t *testing.T) {
	returns := antiCorrelated(t)
	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown method", "/optimization/astrology", `{"returns": ` + returns + `}`, http.StatusBadRequest},
		{"infeasible bounds", "/optimization/max_sharpe", `{"returns": ` + returns + `, "max_weight": 0.2}`, http.StatusUnprocessableEntity},
		{"too little data", "/optimization/min_variance", `{"returns": {}}`, http.StatusUnprocessableEntity},
		{"malformed body", "/optimization/markowitz", `{"returns": [}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, response := do(t, "POST", tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, response["error"])
		})
	}
}

func TestHandleMethods(t *testing.T) {
	status, response := do(t, "GET", "/optimization/methods", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, response["data"].(map[string]interface{})["methods"], len(optimization.Methods()))
}

func TestHandleStatistics(t *testing.T) {
	status, response := do(t, "POST", "/optimization/statistics",
		`{"returns": `+antiCorrelated(t)+`, "weights": {"A": 1, "B": 1}}`)
	require.Equal(t, http.StatusOK, status)
	data := response["data"].(map[string]interface{})
	assert.InDelta(t, 0.0, data["expected_risk"].(float64), 1e-9)
}
