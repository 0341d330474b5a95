package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all pricing routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pricing", func(r chi.Router) {
		r.Get("/suggest", h.HandleSuggest)
		r.Post("/cache/clear", h.HandleClearCache)
	})
}
