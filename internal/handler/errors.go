package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
)

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the single-line {error: string} body used across the API.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps a service-layer error to a status code and writes it.
// notFoundMsg names the resource that was being looked up, because the
// handler is the layer that knows what that was.
//
// Anything that is not a recognised sentinel is a persistence failure: the
// transaction has already rolled back, so a plain 500 with a generic message
// is all the client gets.
func writeDomainError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, unwrapMessage(err))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "you do not have access to this trip")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "email already registered")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.TripService.Create: validation error: title is required"
// becomes "title is required". The marker is derived from the sentinel itself
// so a reworded domain.ErrValidation cannot drift out from under it.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	sentinel := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, sentinel); i >= 0 {
		return msg[i+len(sentinel):]
	}
	// Drop any "pkg.Type.Method: " prefixes so only the final clause remains.
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
