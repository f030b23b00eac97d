package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all selection routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/selections", func(r chi.Router) {
		r.Post("/", h.HandleSelect)
		r.Get("/recent", h.HandleRecentSelections)
		r.Get("/{id}", h.HandleGetSelection)
	})
}
