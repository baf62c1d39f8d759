package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okuznetsov/trip-planner/backend/internal/middleware"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// handleRegister handles POST /auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeDomainError(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "user registered"})
}

// handleLogin handles POST /auth/login. Bad credentials of any kind come
// back as a single indistinguishable 401.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleProfile handles GET /profile for the authenticated user.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	profile, err := s.auth.Profile(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID:        profile.ID,
		Username:  profile.Username,
		Email:     profile.Email,
		Role:      string(profile.Role),
		CreatedAt: profile.CreatedAt,
	})
}
