// Package handlers exposes the selection engine over HTTP.
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pumplab/pumpselect/internal/modules/selection"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// Handler provides HTTP handlers for selection endpoints
type Handler struct {
	service *selection.Service
	history *selection.HistoryRepository
	log     zerolog.Logger
}

// NewHandler creates a new selection handler
func NewHandler(service *selection.Service, history *selection.HistoryRepository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		history: history,
		log:     log.With().Str("handler", "selection").Logger(),
	}
}

// selectRequest is the POST /api/selections body. Config is kept raw so a
// partial override can be layered over the defaults field by field; fields
// the client omits keep their default values.
type selectRequest struct {
	Duty   domain.DutyRequirement `json:"duty"`
	Config json.RawMessage        `json:"config,omitempty"`
}

type selectResponse struct {
	ID     string                  `json:"id,omitempty"`
	Duty   domain.DutyRequirement  `json:"duty"`
	Result *domain.SelectionResult `json:"result"`
}

// HandleSelect handles POST /api/selections
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg := domain.DefaultConfig()
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			http.Error(w, "Invalid config", http.StatusBadRequest)
			return
		}
	}

	result, err := h.service.Select(r.Context(), req.Duty, cfg)
	if err != nil {
		switch {
		case errors.Is(err, selection.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, selection.ErrTimeout):
			h.log.Warn().Err(err).Float64("flow_m3h", req.Duty.FlowM3H).Msg("Selection timed out")
			http.Error(w, "Selection timed out", http.StatusGatewayTimeout)
		default:
			h.log.Error().Err(err).Msg("Selection failed")
			http.Error(w, "Selection failed", http.StatusInternalServerError)
		}
		return
	}

	resp := selectResponse{Duty: req.Duty, Result: result}
	if h.history != nil {
		id, err := h.history.Store(req.Duty, result)
		if err != nil {
			// History is a convenience record; the result still goes out
			h.log.Warn().Err(err).Msg("Failed to store selection history")
		} else {
			resp.ID = id
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode selection response")
	}
}

// HandleGetSelection handles GET /api/selections/{id}
func (h *Handler) HandleGetSelection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := h.history.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Selection not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("id", id).Msg("Failed to load selection")
		http.Error(w, "Failed to load selection", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode selection entry")
	}
}

// HandleRecentSelections handles GET /api/selections/recent
func (h *Handler) HandleRecentSelections(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := h.history.Recent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list selection history")
		http.Error(w, "Failed to list selections", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []selection.HistoryEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode selection history")
	}
}
