// Package handler implements the HTTP layer for the trip planner API.
// Handlers decode JSON, call the service layer, and map domain errors to
// status codes. Methods are split into resource-specific files (auth.go,
// trip.go, predefined.go, ...) but all share the same Server struct.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
	"github.com/okuznetsov/trip-planner/backend/internal/middleware"
)

// TripServicer defines the business operations the personal-trip handlers
// depend on. Defining the interface here, in the consumer package, lets
// handler tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error)
	Replace(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// PredefinedServicer defines the business operations for the public catalog.
type PredefinedServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Replace(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthServicer defines registration, login, and profile lookup.
type AuthServicer interface {
	Register(ctx context.Context, username, email, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// Server holds the handler dependencies. Construct it with NewServer and
// mount Routes on the application router.
type Server struct {
	trips   TripServicer
	catalog PredefinedServicer
	auth    AuthServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, catalog PredefinedServicer, auth AuthServicer) *Server {
	return &Server{trips: trips, catalog: catalog, auth: auth}
}

// Routes builds the API router. authn guards the owner-scoped and admin
// routes; authLimit is applied to the credential endpoints only, so a
// password-guessing client is throttled without affecting normal traffic.
func (s *Server) Routes(authn *middleware.Authenticator, authLimit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.yaml", s.handleOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(authLimit)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(authn.RequireUser)
		r.Get("/profile", s.handleProfile)
		r.Get("/trips", s.handleListTrips)
		r.Post("/trips", s.handleCreateTrip)
		r.Put("/trips/{id}", s.handleReplaceTrip)
		r.Delete("/trips/{id}", s.handleDeleteTrip)
	})

	// Catalog reads are public; writes require the admin role.
	r.Get("/predefined-trips", s.handleListPredefined)
	r.Group(func(r chi.Router) {
		r.Use(authn.RequireAdmin)
		r.Post("/predefined-trips", s.handleCreatePredefined)
		r.Put("/predefined-trips/{id}", s.handleReplacePredefined)
		r.Delete("/predefined-trips/{id}", s.handleDeletePredefined)
	})

	return r
}
