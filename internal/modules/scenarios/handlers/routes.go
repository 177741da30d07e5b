package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all scenario routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/scenarios", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleAdd)
		r.Post("/impact", h.HandleImpact)
		r.Post("/chain", h.HandleChain)
		r.Get("/{key}", h.HandleGet)
	})
}
