// Package handlers provides HTTP handlers for simulations.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/httputil"
	"github.com/aristath/sentinel-quant/internal/modules/simulation"
)

// MsgpackContentType is the media type of the path stream.
const MsgpackContentType = "application/x-msgpack"

// Handler handles simulation HTTP requests
type Handler struct {
	engine         *simulation.Engine
	periodsPerYear float64
	log            zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(engine *simulation.Engine, periodsPerYear float64, log zerolog.Logger) *Handler {
	return &Handler{
		engine:         engine,
		periodsPerYear: periodsPerYear,
		log:            log.With().Str("handler", "simulation").Logger(),
	}
}

// History lets a request estimate simulation parameters from past returns
// instead of stating them.
type History struct {
	Returns domain.ReturnMatrix  `json:"returns,omitempty"`
	Weights domain.WeightMapping `json:"weights,omitempty"`
}

func (h History) present() bool {
	return len(h.Returns) > 0 && len(h.Weights) > 0
}

// ProjectionRequest is the body of the monte-carlo, regime-switching and paths endpoints.
// When returns and weights are given, expected_return and volatility are estimated from them.
type ProjectionRequest struct {
	simulation.Params
	History
	Regimes    []simulation.Regime `json:"regimes,omitempty"`
	Transition [][]float64         `json:"transition,omitempty"`
}

func (h *Handler) projection(r *http.Request) (ProjectionRequest, error) {
	var req ProjectionRequest
	if err := httputil.Decode(r, &req); err != nil {
		return req, err
	}
	if req.History.present() {
		estimated, err := simulation.ParamsFromReturns(req.Returns, req.Weights, h.periodsPerYear)
		if err != nil {
			return req, err
		}
		req.ExpectedReturn = estimated.ExpectedReturn
		req.Volatility = estimated.Volatility
	}
	return req, nil
}

// CopulaRequest is the body of POST /api/simulation/copula.
// When assets are omitted they are estimated, with their correlation, from returns and weights.
type CopulaRequest struct {
	simulation.CopulaParams
	History
}

func (h *Handler) resolveAssets(req *CopulaRequest) error {
	if len(req.Assets) == 0 && req.History.present() {
		assets, corr, err := simulation.AssetsFromReturns(req.Returns, req.Weights, h.periodsPerYear)
		if err != nil {
			return err
		}
		req.Assets = assets
		if req.Correlation == nil {
			req.Correlation = corr
		}
	}
	return nil
}

// SensitivityRequest is the body of POST /api/simulation/sensitivity
type SensitivityRequest struct {
	CopulaRequest
	Parameter string    `json:"parameter"`
	Values    []float64 `json:"values"`
}

// HandleMonteCarlo handles POST /api/simulation/monte-carlo
func (h *Handler) HandleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	req, err := h.projection(r)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	result, err := h.engine.MonteCarlo(req.Params)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}

// HandleRegimeSwitching handles POST /api/simulation/regime-switching
func (h *Handler) HandleRegimeSwitching(w http.ResponseWriter, r *http.Request) {
	req, err := h.projection(r)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	result, err := h.engine.RegimeSwitching(req.Params, req.Regimes, req.Transition)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}

// HandleCopula handles POST /api/simulation/copula
func (h *Handler) HandleCopula(w http.ResponseWriter, r *http.Request) {
	var req CopulaRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	if err := h.resolveAssets(&req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	result, err := h.engine.Copula(req.CopulaParams)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}

// HandleRecovery handles POST /api/simulation/recovery
func (h *Handler) HandleRecovery(w http.ResponseWriter, r *http.Request) {
	var req simulation.RecoveryParams
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	result, err := h.engine.RecoveryTime(req)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}

// HandleSensitivity handles POST /api/simulation/sensitivity
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req SensitivityRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	if err := h.resolveAssets(&req.CopulaRequest); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	parameter, err := simulation.ParseSensitivityParameter(req.Parameter)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	result, err := h.engine.Sensitivity(req.CopulaParams, parameter, req.Values)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}

// HandlePaths handles POST /api/simulation/paths
// Streams every Monte Carlo path as a msgpack frame {index, values}
func (h *Handler) HandlePaths(w http.ResponseWriter, r *http.Request) {
	req, err := h.projection(r)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	paths, err := h.engine.Paths(req.Params)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}

	w.Header().Set("Content-Type", MsgpackContentType)
	w.Header().Set("X-Request-Id", httputil.RequestID(r))
	w.WriteHeader(http.StatusOK)

	written, err := simulation.WritePaths(w, paths)
	if err != nil {
		h.log.Error().Err(err).Int("written", written).Msg("Path stream interrupted")
		return
	}
	h.log.Debug().Int("paths", written).Msg("Streamed simulation paths")
}
