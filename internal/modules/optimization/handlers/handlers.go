// Package handlers provides HTTP handlers for portfolio optimization.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/httputil"
	"github.com/aristath/sentinel-quant/internal/modules/optimization"
)

// Handler handles optimization HTTP requests
type Handler struct {
	optimizer *optimization.Optimizer
	log       zerolog.Logger
}

// NewHandler creates a new optimization handler
func NewHandler(optimizer *optimization.Optimizer, log zerolog.Logger) *Handler {
	return &Handler{
		optimizer: optimizer,
		log:       log.With().Str("handler", "optimization").Logger(),
	}
}

// OptimizeRequest is the body of POST /api/optimization/{method}.
// The method comes from the path; any method in the body is ignored.
type OptimizeRequest struct {
	Returns domain.ReturnMatrix `json:"returns"`
	optimization.Request
}

// StatisticsRequest is the body of POST /api/optimization/statistics
type StatisticsRequest struct {
	Returns domain.ReturnMatrix  `json:"returns"`
	Weights domain.WeightMapping `json:"weights"`
}

// HandleMethods handles GET /api/optimization/methods
func (h *Handler) HandleMethods(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, r, map[string]interface{}{
		"methods": optimization.Methods(),
	}, h.log)
}

// HandleOptimize handles POST /api/optimization/{method}
// Unknown methods are 400; solver and constraint failures are 422
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	method, err := optimization.ParseMethod(chi.URLParam(r, "method"))
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}

	var req OptimizeRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	req.Method = method

	result, err := h.optimizer.Optimize(req.Returns, req.Request)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}

// HandleStatistics handles POST /api/optimization/statistics
// Expected return, risk and Sharpe ratio of arbitrary weights
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	var req StatisticsRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, h.optimizer.Statistics(req.Returns, req.Weights), h.log)
}
