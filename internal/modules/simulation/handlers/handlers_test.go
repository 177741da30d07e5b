package handlers

import (
	"encoding/json"
	"fmt"
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
	"github.com/aristath/sentinel-quant/internal/modules/simulation"
)

func newRouter() chi.Router {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewHandler(simulation.NewEngine(simulation.Options{Workers: 2}, logger), 252, logger)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func post(router chi.Router, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func history(t *testing.T) string {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := make([]float64, 50)
	b := make([]float64, 50)
	for i := range a {
		a[i] = 0.001 + 0.01*float64(i%5-2)/2
		b[i] = 0.0005 + 0.004*float64((i*3)%7-3)/3
	}
	raw, err := json.Marshal(domain.ReturnMatrix{
		"A": domain.DailySeries(start, a),
		"B": domain.DailySeries(start, b),
	})
	require.NoError(t, err)
	return string(raw)
}

const projection = `{"expected_return": 0.07, "volatility": 0.15, "initial_value": 1000, "years": 1, "simulations": 50}`

func TestHandleMonteCarlo_Reproducible(t *testing.T) {
	router := newRouter()

	first := decode(t, post(router, "/simulation/monte-carlo", projection))
	second := decode(t, post(router, "/simulation/monte-carlo", projection))
	assert.Equal(t, first["data"], second["data"])

	data := first["data"].(map[string]interface{})
	assert.Equal(t, float64(50), data["simulations"])
	assert.Equal(t, float64(252), data["trading_days"])
}

func TestHandleMonteCarlo_FromHistory(t *testing.T) {
	body := `{"initial_value": 1000, "years": 1, "simulations": 20, "returns": ` + history(t) + `, "weights": {"A": 0.5, "B": 0.5}}`
	w := post(newRouter(), "/simulation/monte-carlo", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = post(newRouter(), "/simulation/monte-carlo", `{"initial_value": 1000, "years": 1, "returns": `+history(t)+`, "weights": {"Z": 1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMonteCarlo_Invalid(t *testing.T) {
	w := post(newRouter(), "/simulation/monte-carlo", `{"initial_value": 0, "years": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "initial value")
}

func TestHandleRegimeSwitching(t *testing.T) {
	w := post(newRouter(), "/simulation/regime-switching", projection)
	require.Equal(t, http.StatusOK, w.Code)
	shares := decode(t, w)["data"].(map[string]interface{})["regime_shares"].(map[string]interface{})
	assert.InDelta(t, 1.0, shares["normal"].(float64)+shares["stressed"].(float64), 1e-9)
}

func TestHandleCopula(t *testing.T) {
	router := newRouter()

	explicit := `{"assets": [{"ticker": "A", "expected_return": 0.06, "volatility": 0.2, "weight": 0.5},
		{"ticker": "B", "expected_return": 0.03, "volatility": 0.05, "weight": 0.5}],
		"correlation": [[1, 0.2], [0.2, 1]], "marginal": "student_t", "initial_value": 100, "years": 1, "simulations": 30}`
	w := post(router, "/simulation/copula", explicit)
	require.Equal(t, http.StatusOK, w.Code)

	estimated := `{"initial_value": 100, "years": 1, "simulations": 30, "returns": ` + history(t) + `, "weights": {"A": 1, "B": 1}}`
	w = post(router, "/simulation/copula", estimated)
	require.Equal(t, http.StatusOK, w.Code)

	w = post(router, "/simulation/copula", strings.Replace(explicit, `[[1, 0.2], [0.2, 1]]`, `[[1, 1.5], [1.5, 1]]`, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRecovery(t *testing.T) {
	router := newRouter()

	w := post(router, "/simulation/recovery", `{"expected_return": 0.252, "drawdown_depth": 0.1, "simulations": 5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["data"].(map[string]interface{})["recovery_probability"])

	w = post(router, "/simulation/recovery", `{"drawdown_depth": 1.2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSensitivity(t *testing.T) {
	router := newRouter()
	assets := `"assets": [{"ticker": "A", "expected_return": 0.06, "volatility": 0.2, "weight": 1}], "initial_value": 100, "years": 1, "simulations": 20`

	w := post(router, "/simulation/sensitivity", `{`+assets+`, "parameter": "volatility", "values": [0.5, 1, 2]}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Len(t, data["runs"], 3)
	assert.Equal(t, "volatility", data["parameter"])

	w = post(router, "/simulation/sensitivity", `{`+assets+`, "parameter": "skew", "values": [1]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePaths_Msgpack(t *testing.T) {
	w := post(newRouter(), "/simulation/paths", `{"expected_return": 0.05, "volatility": 0.1, "initial_value": 1, "years": 0.05, "simulations": 7}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgpackContentType, w.Header().Get("Content-Type"))

	frames, err := simulation.ReadPaths(w.Body)
	require.NoError(t, err)
	require.Len(t, frames, 7)
	for i, f := range frames {
		assert.Equal(t, i, f.Index, fmt.Sprintf("frame %d", i))
		assert.Len(t, f.Values, 14)
	}

	w = post(newRouter(), "/simulation/paths", `{"initial_value": 1, "years": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
