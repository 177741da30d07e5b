// Package handlers provides HTTP handlers for portfolio comparison.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/httputil"
	"github.com/aristath/sentinel-quant/internal/modules/comparison"
)

// Handler handles comparison HTTP requests
type Handler struct {
	comparer *comparison.Comparer
	defaults comparison.Options
	log      zerolog.Logger
}

// NewHandler creates a new comparison handler. defaults fill options a request leaves unset.
func NewHandler(comparer *comparison.Comparer, defaults comparison.Options, log zerolog.Logger) *Handler {
	return &Handler{
		comparer: comparer,
		defaults: defaults,
		log:      log.With().Str("handler", "comparison").Logger(),
	}
}

// CompareRequest is the body of POST /api/comparison
type CompareRequest struct {
	Returns    domain.ReturnMatrix             `json:"returns"`
	Portfolios map[string]domain.WeightMapping `json:"portfolios"`
	Options    comparison.Options              `json:"options"`
}

// HandleCompare handles POST /api/comparison
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}

	opts := req.Options
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = h.defaults.PeriodsPerYear
	}
	if opts.RiskFreeRate == 0 {
		opts.RiskFreeRate = h.defaults.RiskFreeRate
	}
	if opts.Policy == "" {
		opts.Policy = h.defaults.Policy
	}

	report, err := h.comparer.Compare(req.Returns, req.Portfolios, opts)
	if err != nil {
		httputil.HandleError(w, err, h.log)
		return
	}
	httputil.WriteData(w, r, report, h.log)
}
