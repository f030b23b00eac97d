// Package handlers exposes the pump catalog over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
)

// Handler provides HTTP handlers for catalog endpoints
type Handler struct {
	service *catalog.Service
	log     zerolog.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(service *catalog.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "catalog").Logger(),
	}
}

// HandleListPumps handles GET /api/pumps
func (h *Handler) HandleListPumps(w http.ResponseWriter, r *http.Request) {
	models, _, err := h.service.Snapshot()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load catalog")
		http.Error(w, "Failed to load catalog", http.StatusInternalServerError)
		return
	}
	if models == nil {
		models = []catalog.PumpModel{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(models); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode pump list")
	}
}

// HandleGetPump handles GET /api/pumps/{id}
func (h *Handler) HandleGetPump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	model, err := h.service.GetModel(id)
	if err != nil {
		h.log.Error().Err(err).Str("pump", id).Msg("Failed to load pump model")
		http.Error(w, "Failed to load pump model", http.StatusInternalServerError)
		return
	}
	if model == nil {
		http.Error(w, "Pump not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(model); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode pump model")
	}
}

// HandleSavePump handles POST /api/pumps
func (h *Handler) HandleSavePump(w http.ResponseWriter, r *http.Request) {
	var model catalog.PumpModel
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := model.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SaveModel(&model); err != nil {
		h.log.Error().Err(err).Str("pump", model.ID).Msg("Failed to save pump model")
		http.Error(w, "Failed to save pump model", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("pump", model.ID).Int("curves", len(model.Curves)).Msg("Pump model saved")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": model.ID})
}

// HandleDeletePump handles DELETE /api/pumps/{id}
func (h *Handler) HandleDeletePump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.service.DeleteModel(id)
	if err != nil {
		h.log.Error().Err(err).Str("pump", id).Msg("Failed to delete pump model")
		http.Error(w, "Failed to delete pump model", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Pump not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
