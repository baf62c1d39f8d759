package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleListPredefined handles GET /predefined-trips.
// The catalog is publicly readable; no token is required.
func (s *Server) handleListPredefined(w http.ResponseWriter, r *http.Request) {
	trips, err := s.catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, tripsToResponse(trips))
}

// handleCreatePredefined handles POST /predefined-trips (admin only; the
// role check happens in the middleware before this runs).
func (s *Server) handleCreatePredefined(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.catalog.Create(r.Context(), req.toDomain())
	if err != nil {
		writeDomainError(w, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// handleReplacePredefined handles PUT /predefined-trips/{id} (admin only).
func (s *Server) handleReplacePredefined(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := req.toDomain()
	draft.ID = id

	updated, err := s.catalog.Replace(r.Context(), draft)
	if err != nil {
		writeDomainError(w, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// handleDeletePredefined handles DELETE /predefined-trips/{id} (admin only).
func (s *Server) handleDeletePredefined(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	if err := s.catalog.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "trip deleted"})
}
