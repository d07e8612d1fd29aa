package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankrecon/internal/adapter/http/dto"
	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/usecase"
)

// MovementHandler handles movement query and annotation requests.
type MovementHandler struct {
	movements *usecase.MovementUseCase
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movements *usecase.MovementUseCase) *MovementHandler {
	return &MovementHandler{movements: movements}
}

// List handles GET /movements/{source}?start=...&end=...
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	source, err := domain.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown source", err.Error())
		return
	}

	movements, err := h.movements.QueryRange(r.Context(), source, r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, mapDomainError(err), "query failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementsFromDomain(movements))
}

// SetHandled handles PATCH /movements/{source}/handled.
func (h *MovementHandler) SetHandled(w http.ResponseWriter, r *http.Request) {
	source, err := domain.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown source", err.Error())
		return
	}

	var req dto.SetHandledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	updated, err := h.movements.SetHandled(r.Context(), source, req.IDs, req.Handled)
	if err != nil {
		writeError(w, mapDomainError(err), "update failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.UpdatedResponse{Updated: updated})
}

// SetNote handles PATCH /movements/{source}/{id}/note.
func (h *MovementHandler) SetNote(w http.ResponseWriter, r *http.Request) {
	source, err := domain.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown source", err.Error())
		return
	}

	var req dto.SetNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.movements.SetNote(r.Context(), source, chi.URLParam(r, "id"), req.Note); err != nil {
		writeError(w, mapDomainError(err), "update failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /movements/{source}/stats?year=...
func (h *MovementHandler) Stats(w http.ResponseWriter, r *http.Request) {
	source, err := domain.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown source", err.Error())
		return
	}

	stats, err := h.movements.Stats(r.Context(), source, parseIntQuery(r, "year", currentYear()))
	if err != nil {
		writeError(w, mapDomainError(err), "stats failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Status handles GET /movements/status?year=... and reports both
// ledgers side by side.
func (h *MovementHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.movements.Status(r.Context(), parseIntQuery(r, "year", currentYear()))
	if err != nil {
		writeError(w, mapDomainError(err), "status failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, status)
}
