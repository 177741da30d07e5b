// Package handlers provides HTTP handlers for diversification analytics.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/httputil"
	"github.com/aristath/sentinel-quant/internal/modules/diversification"
)

// Handler handles diversification HTTP requests
type Handler struct {
	analyzer *diversification.Analyzer
	defaults diversification.Options
	log      zerolog.Logger
}

// NewHandler creates a new diversification handler. defaults fills option fields
// a request leaves unset.
func NewHandler(analyzer *diversification.Analyzer, defaults diversification.Options, log zerolog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		defaults: defaults,
		log:      log.With().Str("handler", "diversification").Logger(),
	}
}

// Request is the body of both diversification endpoints
type Request struct {
	Returns domain.ReturnMatrix      `json:"returns"`
	Weights domain.WeightMapping     `json:"weights"`
	Options *diversification.Options `json:"options,omitempty"`
}

func (h *Handler) decode(r *http.Request) (Request, diversification.Options, error) {
	var req Request
	if err := httputil.Decode(r, &req); err != nil {
		return req, diversification.Options{}, err
	}
	if req.Options == nil {
		return req, h.defaults, nil
	}
	opts := *req.Options
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = h.defaults.PeriodsPerYear
	}
	if opts.RiskFreeRate == 0 {
		opts.RiskFreeRate = h.defaults.RiskFreeRate
	}
	return req, opts, nil
}

// HandleAnalyze handles POST /api/diversification/analyze
// Concentration, diversification ratio, correlation summary and hierarchical risk contribution
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, opts, err := h.decode(r)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	report, err := h.analyzer.Analyze(req.Returns, req.Weights, opts)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, report, h.log)
}

// HandleMaxDiversification handles POST /api/diversification/max-diversification
func (h *Handler) HandleMaxDiversification(w http.ResponseWriter, r *http.Request) {
	req, opts, err := h.decode(r)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	result, err := h.analyzer.MaximumDiversification(req.Returns, opts)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, result, h.log)
}
