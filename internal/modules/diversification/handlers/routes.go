package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all diversification routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/diversification", func(r chi.Router) {
		r.Post("/analyze", h.HandleAnalyze)
		r.Post("/max-diversification", h.HandleMaxDiversification)
	})
}
