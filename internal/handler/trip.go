package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/okuznetsov/trip-planner/backend/internal/middleware"
)

// handleCreateTrip handles POST /trips.
// The whole draft — header plus destination list — is persisted in a single
// transaction; the response carries the aggregate with its assigned IDs.
func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := req.toDomain()
	draft.OwnerID = user.ID

	created, err := s.trips.Create(r.Context(), draft)
	if err != nil {
		writeDomainError(w, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// handleListTrips handles GET /trips: the caller's trips with destinations
// aggregated in. A trip with no destinations carries an empty array.
func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	trips, err := s.trips.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, tripsToResponse(trips))
}

// handleReplaceTrip handles PUT /trips/{id} with full-replace semantics:
// the stored destination list is dropped and reinserted from the request,
// so destination IDs change on every edit.
func (s *Server) handleReplaceTrip(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

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
	draft.OwnerID = user.ID

	updated, err := s.trips.Replace(r.Context(), draft)
	if err != nil {
		writeDomainError(w, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// handleDeleteTrip handles DELETE /trips/{id}. The trip and its destinations
// go together; deletion is physical and immediate.
func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	if err := s.trips.Delete(r.Context(), id, user.ID); err != nil {
		writeDomainError(w, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "trip deleted"})
}
