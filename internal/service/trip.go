// Package service contains the business logic for the trip planner API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
	"github.com/okuznetsov/trip-planner/backend/internal/repo"
)

// TripService implements business logic for personal trip aggregates.
type TripService struct {
	repo repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo) *TripService {
	return &TripService{repo: r}
}

// Create validates a trip draft and persists it atomically.
// An over-budget draft is persisted anyway: budget warnings are advisory
// and never block a write.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateDraft(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// List returns all trips owned by ownerID, destinations attached.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	trips, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// Replace validates a draft and swaps the stored aggregate for it in one
// transaction. Ownership is enforced by the store; a violation surfaces as
// domain.ErrForbidden (or domain.ErrNotFound for an unknown trip) with no
// writes performed.
func (s *TripService) Replace(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateDraft(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.repo.Replace(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Replace: %w", err)
	}
	return result, nil
}

// Delete removes a trip and all its destinations.
func (s *TripService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// validateDraft enforces the business rules shared by Create and Replace for
// both personal and catalog trips:
//   - Title must be non-empty (whitespace-only titles are rejected).
//   - Both dates must be present.
//   - At least one destination, each with a name and a date.
//   - Costs must not be negative. Non-numeric costs never reach this point:
//     the JSON boundary coerces them to zero.
//   - A destination category, when present, must be one of the fixed set.
//
// Deliberately absent: no start/end ordering check. The system has never
// validated start_date < end_date and tightening it would reject inputs
// that currently succeed.
func validateDraft(trip domain.Trip) error {
	if strings.TrimSpace(trip.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if trip.StartDate.IsZero() || trip.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	if len(trip.Destinations) == 0 {
		return fmt.Errorf("%w: at least one destination is required", domain.ErrValidation)
	}
	for i, d := range trip.Destinations {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("%w: destination %d: name is required", domain.ErrValidation, i+1)
		}
		if d.Date.IsZero() {
			return fmt.Errorf("%w: destination %d: date is required", domain.ErrValidation, i+1)
		}
		if d.Cost < 0 {
			return fmt.Errorf("%w: destination %d: cost must not be negative", domain.ErrValidation, i+1)
		}
		if d.Category != "" && !d.Category.Valid() {
			return fmt.Errorf("%w: destination %d: unknown category %q", domain.ErrValidation, i+1, d.Category)
		}
	}
	return nil
}
