// Package handlers provides HTTP handlers for risk operations.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/httputil"
	"github.com/aristath/sentinel-quant/internal/modules/risk"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
)

// DefaultConfidence is used when a VaR or CVaR request omits the confidence level.
const DefaultConfidence = 0.95

// Handler handles risk HTTP requests
type Handler struct {
	calc           *risk.Calculator
	periodsPerYear float64
	log            zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(calc *risk.Calculator, periodsPerYear float64, log zerolog.Logger) *Handler {
	if periodsPerYear <= 0 {
		periodsPerYear = risk.DefaultPeriodsPerYear
	}
	return &Handler{
		calc:           calc,
		periodsPerYear: periodsPerYear,
		log:            log.With().Str("handler", "risk").Logger(),
	}
}

// TailRequest is the body of the VaR and CVaR endpoints
type TailRequest struct {
	Returns    []float64 `json:"returns"`
	Confidence float64   `json:"confidence"`
	Horizon    float64   `json:"horizon"`
	Method     string    `json:"method"`
}

func (h *Handler) tailRequest(r *http.Request) (TailRequest, risk.VaRMethod, error) {
	var req TailRequest
	if err := httputil.Decode(r, &req); err != nil {
		return req, "", err
	}
	if req.Confidence == 0 {
		req.Confidence = DefaultConfidence
	}
	if req.Confidence <= 0 || req.Confidence >= 1 {
		return req, "", fmt.Errorf("confidence must be in (0, 1), got %v", req.Confidence)
	}
	if req.Horizon <= 0 {
		req.Horizon = 1
	}
	method, ok := risk.ParseVaRMethod(req.Method)
	if !ok {
		h.log.Warn().Str("method", req.Method).Msg("Unsupported VaR method, falling back to historical")
	}
	return req, method, nil
}

// HandleVaR handles POST /api/risk/var
func (h *Handler) HandleVaR(w http.ResponseWriter, r *http.Request) {
	req, method, err := h.tailRequest(r)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, map[string]interface{}{
		"var":        h.calc.VaR(req.Returns, req.Confidence, req.Horizon, method),
		"confidence": req.Confidence,
		"horizon":    req.Horizon,
		"method":     method,
	}, h.log)
}

// HandleCVaR handles POST /api/risk/cvar
func (h *Handler) HandleCVaR(w http.ResponseWriter, r *http.Request) {
	req, method, err := h.tailRequest(r)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, map[string]interface{}{
		"cvar":       h.calc.CVaR(req.Returns, req.Confidence, method),
		"var":        h.calc.VaR(req.Returns, req.Confidence, 1, method),
		"confidence": req.Confidence,
		"method":     method,
	}, h.log)
}

// DrawdownRequest is the body of POST /api/risk/drawdowns
type DrawdownRequest struct {
	Returns domain.ReturnSeries `json:"returns"`
}

// HandleDrawdowns handles POST /api/risk/drawdowns
// Returns the drawdown series, every drawdown episode (worst first) and the maximum
func (h *Handler) HandleDrawdowns(w http.ResponseWriter, r *http.Request) {
	var req DrawdownRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, map[string]interface{}{
		"max_drawdown": risk.MaxDrawdown(req.Returns.Values),
		"drawdowns":    risk.AnalyzeDrawdowns(req.Returns),
		"series":       risk.DrawdownSeries(req.Returns),
	}, h.log)
}

// StressTestRequest is the body of POST /api/risk/stress-test
type StressTestRequest struct {
	Returns        []float64 `json:"returns"`
	PortfolioValue float64   `json:"portfolio_value"`
	Scenario       string    `json:"scenario"`
}

// HandleStressTest handles POST /api/risk/stress-test
func (h *Handler) HandleStressTest(w http.ResponseWriter, r *http.Request) {
	var req StressTestRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	result, err := h.calc.PerformStressTest(req.Returns, req.PortfolioValue, req.Scenario)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}

// HandleListStressScenarios handles GET /api/risk/stress-test/scenarios
func (h *Handler) HandleListStressScenarios(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, r, map[string]interface{}{
		"scenarios": risk.HistoricalScenarios(),
	}, h.log)
}

// HandleCustomStressTest handles POST /api/risk/custom-stress-test
func (h *Handler) HandleCustomStressTest(w http.ResponseWriter, r *http.Request) {
	var req risk.CustomStressInput
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	result, err := h.calc.PerformAdvancedCustomStressTest(req)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}

// ContributionRequest is the body of POST /api/risk/risk-contribution.
// Covariance (ordered like Tickers) takes precedence over Returns.
type ContributionRequest struct {
	Weights    domain.WeightMapping `json:"weights"`
	Tickers    []string             `json:"tickers"`
	Covariance [][]float64          `json:"covariance"`
	Returns    domain.ReturnMatrix  `json:"returns"`
	Shrinkage  bool                 `json:"shrinkage"`
}

// HandleRiskContribution handles POST /api/risk/risk-contribution
func (h *Handler) HandleRiskContribution(w http.ResponseWriter, r *http.Request) {
	var req ContributionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}

	tickers, cov := req.Tickers, req.Covariance
	if cov == nil {
		if len(tickers) == 0 {
			tickers = req.Weights.Tickers()
		}
		estimated, err := timeseries.Covariance(req.Returns, tickers, timeseries.CovarianceOptions{
			PeriodsPerYear: h.periodsPerYear,
			Shrinkage:      req.Shrinkage,
		})
		if err != nil {
			httputil.HandleError(w, err, h.log)
			return
		}
		cov = estimated
	}

	report, err := h.calc.RiskContribution(req.Weights, tickers, cov)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, report, h.log)
}

// RollingRequest is the body of POST /api/risk/rolling
type RollingRequest struct {
	Returns        domain.ReturnSeries `json:"returns"`
	Window         int                 `json:"window"`
	PeriodsPerYear float64             `json:"periods_per_year"`
}

// HandleRolling handles POST /api/risk/rolling
func (h *Handler) HandleRolling(w http.ResponseWriter, r *http.Request) {
	var req RollingRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	if req.PeriodsPerYear <= 0 {
		req.PeriodsPerYear = h.periodsPerYear
	}
	result, err := h.calc.Rolling(req.Returns, req.Window, req.PeriodsPerYear)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}

// SummaryRequest is the body of POST /api/risk/summary
type SummaryRequest struct {
	Returns        []float64 `json:"returns"`
	PeriodsPerYear float64   `json:"periods_per_year"`
	Method         string    `json:"method"`
}

// HandleSummary handles POST /api/risk/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	method, ok := risk.ParseVaRMethod(req.Method)
	if !ok {
		h.log.Warn().Str("method", req.Method).Msg("Unsupported VaR method, falling back to historical")
	}
	if req.PeriodsPerYear <= 0 {
		req.PeriodsPerYear = h.periodsPerYear
	}
	httputil.WriteData(w, r, h.calc.Summary(req.Returns, risk.SummaryOptions{
		PeriodsPerYear: req.PeriodsPerYear,
		Method:         method,
	}), h.log)
}
