package room

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"roomstatus/internal/api"
	"roomstatus/internal/history"
	"roomstatus/internal/tracking"
)

type TransitionRequest struct {
	StatusID  string `json:"statusId" validate:"required"`
	Notes     string `json:"notes" validate:"max=2000"`
	BookingID string `json:"bookingId" validate:"omitempty,uuid"`
}

type AssignDefaultResponse struct {
	Assigned bool            `json:"assigned"`
	Entry    *tracking.Entry `json:"entry"`
}

type Handlers struct {
	Tracking *tracking.Service
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Tracking.ListRooms(r.Context())
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Transition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req TransitionRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	e, err := h.Tracking.Transition(r.Context(), tracking.TransitionInput{
		RoomID:    id,
		StatusID:  req.StatusID,
		Notes:     req.Notes,
		ChangedBy: api.ActorFromContext(r.Context()),
		BookingID: req.BookingID,
	})
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, e)
}

func (h Handlers) AssignDefault(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	e, err := h.Tracking.AssignDefault(r.Context(), id, api.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, AssignDefaultResponse{Assigned: e != nil, Entry: e})
}

// History is the history listing pinned to one room.
func (h Handlers) History(w http.ResponseWriter, r *http.Request) {
	f, err := history.FilterFromQuery(r.URL.Query())
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		api.WriteServiceError(w, r, tracking.NotFoundError{Kind: "room", ID: id})
		return
	}
	f.RoomID = id
	history.WriteList(w, r, h.Tracking, f)
}
