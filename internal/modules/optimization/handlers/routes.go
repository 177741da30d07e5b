package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all optimization routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/optimization", func(r chi.Router) {
		r.Get("/methods", h.HandleMethods)
		r.Post("/statistics", h.HandleStatistics)
		r.Post("/{method}", h.HandleOptimize)
	})
}
