package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"roomstatus/internal/api"
	"roomstatus/internal/tracking"
)

type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Description string `json:"description" validate:"max=500"`
	IsDefault   bool   `json:"isDefault"`
}

type PatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=64"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	IsDefault   *bool   `json:"isDefault"`
	IsActive    *bool   `json:"isActive"`
}

type Handlers struct {
	Tracking *tracking.Service
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []tracking.Status
		err   error
	)
	if r.URL.Query().Get("all") == "true" {
		items, err = h.Tracking.ListStatuses(r.Context())
	} else {
		items, err = h.Tracking.ListActiveStatuses(r.Context())
	}
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	st, err := h.Tracking.CreateStatus(r.Context(), tracking.StatusInput{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, st)
}

func (h Handlers) Patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req PatchRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteServiceError(w, r, err)
		return
	}

	st, err := h.Tracking.UpdateStatus(r.Context(), id, tracking.StatusPatch{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
		IsDefault:   req.IsDefault,
		IsActive:    req.IsActive,
	})
	if err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, st)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	if err := h.Tracking.DeleteStatus(r.Context(), id); err != nil {
		api.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
