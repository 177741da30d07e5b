// Package handlers provides HTTP handlers for time series operations.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/httputil"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
)

// Handler handles time series HTTP requests
type Handler struct {
	calc *timeseries.Calculator
	log  zerolog.Logger
}

// NewHandler creates a new time series handler
func NewHandler(calc *timeseries.Calculator, log zerolog.Logger) *Handler {
	return &Handler{
		calc: calc,
		log:  log.With().Str("handler", "timeseries").Logger(),
	}
}

// ReturnsRequest is the body of POST /api/timeseries/returns
type ReturnsRequest struct {
	Prices domain.PriceSeries `json:"prices"`
	Period string             `json:"period"`
	Method string             `json:"method"`
}

// CumulativeRequest is the body of POST /api/timeseries/cumulative
type CumulativeRequest struct {
	Returns domain.ReturnSeries `json:"returns"`
	Log     bool                `json:"log"`
}

// PortfolioReturnRequest is the body of POST /api/timeseries/portfolio-return
type PortfolioReturnRequest struct {
	Returns domain.ReturnMatrix  `json:"returns"`
	Weights domain.WeightMapping `json:"weights"`
	Policy  string               `json:"missing_data_policy"`
}

// HandleReturns handles POST /api/timeseries/returns
// Converts a price series to period returns
func (h *Handler) HandleReturns(w http.ResponseWriter, r *http.Request) {
	var req ReturnsRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, map[string]interface{}{
		"returns": h.calc.ReturnsFromString(req.Prices, req.Period, req.Method),
	}, h.log)
}

// HandleCumulative handles POST /api/timeseries/cumulative
func (h *Handler) HandleCumulative(w http.ResponseWriter, r *http.Request) {
	var req CumulativeRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	cumulative := timeseries.Cumulative(req.Returns, req.Log)
	total := 0.0
	if cumulative.Len() > 0 {
		total = cumulative.Values[cumulative.Len()-1]
	}
	httputil.WriteData(w, r, map[string]interface{}{
		"cumulative":   cumulative,
		"total_return": total,
	}, h.log)
}

// HandlePortfolioReturn handles POST /api/timeseries/portfolio-return
// Weighted sum of asset returns; the missing data policy defaults to zero_fill
func (h *Handler) HandlePortfolioReturn(w http.ResponseWriter, r *http.Request) {
	var req PortfolioReturnRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	policy, ok := domain.ParseMissingDataPolicy(req.Policy, domain.ZeroFill)
	if !ok {
		h.log.Warn().Str("policy", req.Policy).Msg("Unsupported missing data policy, falling back to zero_fill")
	}
	httputil.WriteData(w, r, map[string]interface{}{
		"portfolio_return": h.calc.PortfolioReturn(req.Returns, req.Weights, policy),
		"policy":           policy,
	}, h.log)
}
