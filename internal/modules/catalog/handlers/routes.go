package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all catalog routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pumps", func(r chi.Router) {
		r.Get("/", h.HandleListPumps)
		r.Post("/", h.HandleSavePump)
		r.Get("/{id}", h.HandleGetPump)
		r.Delete("/{id}", h.HandleDeletePump)
	})
}
