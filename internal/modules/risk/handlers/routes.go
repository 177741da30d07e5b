package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Post("/var", h.HandleVaR)
		r.Post("/cvar", h.HandleCVaR)
		r.Post("/drawdowns", h.HandleDrawdowns)
		r.Post("/stress-test", h.HandleStressTest)
		r.Get("/stress-test/scenarios", h.HandleListStressScenarios)
		r.Post("/custom-stress-test", h.HandleCustomStressTest)
		r.Post("/risk-contribution", h.HandleRiskContribution)
		r.Post("/rolling", h.HandleRolling)
		r.Post("/summary", h.HandleSummary)
	})
}
