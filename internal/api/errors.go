package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"roomstatus/internal/tracking"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteServiceError maps tracking errors onto the error envelope. Anything
// outside the domain taxonomy is logged and reported as INTERNAL.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve tracking.ValidationError
		ne tracking.NotFoundError
		ie tracking.InUseError
		te tracking.TransactionError
	)
	switch {
	case errors.As(err, &ve):
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", ve.Error())
	case errors.As(err, &ne):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", ne.Error())
	case errors.As(err, &ie):
		WriteError(w, http.StatusConflict, "STATUS_IN_USE", ie.Error())
	case errors.As(err, &te):
		Logger(r.Context()).Error("transaction failed", "op", te.Op, "err", te.Err)
		WriteError(w, http.StatusInternalServerError, "TRANSACTION_FAILED", "the change was not saved, please retry")
	default:
		Logger(r.Context()).Error("request failed", "err", err)
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
