package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
	"github.com/okuznetsov/trip-planner/backend/internal/repo"
)

// TokenVerifier validates a bearer token and returns the user ID it carries.
// Satisfied by auth.TokenManager; defined here so tests can plug in a stub.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// ctxKey is unexported so no other package can forge the identity value.
type ctxKey struct{}

// UserFrom extracts the authenticated user placed in the context by
// Authenticator.RequireUser / RequireAdmin.
func UserFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(domain.User)
	return u, ok
}

// Authenticator guards routes behind bearer-token authentication.
// The token carries only the user ID; existence and role are checked against
// the users table on every request, so deleting a user or demoting an admin
// takes effect immediately even for tokens already in the wild.
type Authenticator struct {
	tokens TokenVerifier
	users  repo.UserRepo
}

// NewAuthenticator constructs an Authenticator from a verifier and user repo.
func NewAuthenticator(tokens TokenVerifier, users repo.UserRepo) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// RequireUser rejects requests without a valid bearer token (401) or whose
// token refers to a user that no longer exists (404). On success the user is
// stored in the request context for handlers to read via UserFrom.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

// RequireAdmin is RequireUser plus a role check: non-admin users get 403.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		if user.Role != domain.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

// authenticate performs the shared token and user checks. On failure it has
// already written the error response and returns ok=false.
func (a *Authenticator) authenticate(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return domain.User{}, false
	}

	userID, err := a.tokens.Verify(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing or invalid token")
		return domain.User{}, false
	}

	user, err := a.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
		} else {
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return domain.User{}, false
	}
	return user, true
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

// writeError writes the single-line {error} body used across the API.
// Duplicated from the handler package to avoid an import cycle.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
