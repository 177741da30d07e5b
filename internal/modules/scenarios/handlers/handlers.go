// Package handlers provides HTTP handlers for scenario analysis.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/httputil"
	"github.com/aristath/sentinel-quant/internal/modules/scenarios"
)

// Handler handles scenario HTTP requests
type Handler struct {
	engine *scenarios.Engine
	log    zerolog.Logger
}

// NewHandler creates a new scenario handler
func NewHandler(engine *scenarios.Engine, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log.With().Str("handler", "scenarios").Logger(),
	}
}

// ImpactRequest is the body of POST /api/scenarios/impact
type ImpactRequest struct {
	Weights        domain.WeightMapping `json:"weights"`
	Scenario       string               `json:"scenario"`
	PortfolioValue float64              `json:"portfolio_value"`
}

// ChainRequest is the body of POST /api/scenarios/chain
type ChainRequest struct {
	Scenarios      []string             `json:"scenarios"`
	Weights        domain.WeightMapping `json:"weights"`
	PortfolioValue float64              `json:"portfolio_value"`
}

// ChainResponse pairs a created chain with its simulation.
type ChainResponse struct {
	Chain  *scenarios.Chain       `json:"chain"`
	Result *scenarios.ChainResult `json:"result"`
}

// HandleList handles GET /api/scenarios
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list := h.engine.ListScenarios()
	httputil.WriteData(w, r, map[string]interface{}{
		"scenarios": list,
		"count":     len(list),
	}, h.log)
}

// HandleGet handles GET /api/scenarios/{key}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.Scenario(chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, err.Error(), h.log)
		return
	}
	httputil.WriteData(w, r, s, h.log)
}

// HandleAdd handles POST /api/scenarios
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var s scenarios.Scenario
	if err := httputil.Decode(r, &s); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	if err := h.engine.AddScenario(s); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	h.log.Info().Str("scenario", s.Key).Msg("Custom scenario registered")

	added, _ := h.engine.Scenario(s.Key)
	httputil.WriteDataStatus(w, r, http.StatusCreated, added, h.log)
}

// HandleImpact handles POST /api/scenarios/impact
func (h *Handler) HandleImpact(w http.ResponseWriter, r *http.Request) {
	var req ImpactRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	result, err := h.engine.SimulateScenarioImpact(req.Weights, req.Scenario, req.PortfolioValue)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}

// HandleChain handles POST /api/scenarios/chain
// Creates a chain from the scenario keys and simulates it in one call.
func (h *Handler) HandleChain(w http.ResponseWriter, r *http.Request) {
	var req ChainRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	chain, err := h.engine.CreateScenarioChain(req.Scenarios)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	result, err := h.engine.SimulateScenarioChain(chain, req.Weights, req.PortfolioValue)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, ChainResponse{Chain: chain, Result: result}, h.log)
}
