package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all simulation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/simulation", func(r chi.Router) {
		r.Post("/monte-carlo", h.HandleMonteCarlo)
		r.Post("/regime-switching", h.HandleRegimeSwitching)
		r.Post("/copula", h.HandleCopula)
		r.Post("/recovery", h.HandleRecovery)
		r.Post("/sensitivity", h.HandleSensitivity)
		r.Post("/paths", h.HandlePaths)
	})
}
