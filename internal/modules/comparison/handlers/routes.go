package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the comparison route
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/comparison", h.HandleCompare)
}
