// Package handlers provides HTTP handlers for performance reporting.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/httputil"
	"github.com/aristath/sentinel-quant/internal/modules/performance"
)

// Handler handles performance HTTP requests
type Handler struct {
	calc *performance.Calculator
	log  zerolog.Logger
}

// NewHandler creates a new performance handler
func NewHandler(calc *performance.Calculator, log zerolog.Logger) *Handler {
	return &Handler{
		calc: calc,
		log:  log.With().Str("handler", "performance").Logger(),
	}
}

// SummaryRequest is the body of POST /api/performance/summary.
// RiskFreeRate and PeriodsPerYear override the server defaults when set.
type SummaryRequest struct {
	Returns        domain.ReturnSeries  `json:"returns"`
	Benchmark      *domain.ReturnSeries `json:"benchmark,omitempty"`
	RiskFreeRate   *float64             `json:"risk_free_rate,omitempty"`
	PeriodsPerYear float64              `json:"periods_per_year,omitempty"`
}

// HandleSummary handles POST /api/performance/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}

	calc := h.calc
	if req.RiskFreeRate != nil || req.PeriodsPerYear > 0 {
		opts := calc.Options()
		if req.RiskFreeRate != nil {
			opts.RiskFreeRate = *req.RiskFreeRate
		}
		if req.PeriodsPerYear > 0 {
			opts.PeriodsPerYear = req.PeriodsPerYear
		}
		calc = performance.NewCalculator(opts, h.log)
	}

	httputil.WriteData(w, r, calc.Summary(req.Returns, req.Benchmark), h.log)
}
