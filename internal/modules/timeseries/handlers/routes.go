package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all time series routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timeseries", func(r chi.Router) {
		r.Post("/returns", h.HandleReturns)
		r.Post("/cumulative", h.HandleCumulative)
		r.Post("/portfolio-return", h.HandlePortfolioReturn)
	})
}
