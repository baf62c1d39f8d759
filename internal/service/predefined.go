package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
	"github.com/okuznetsov/trip-planner/backend/internal/repo"
)

// PredefinedTripService implements business logic for the public catalog.
// Reads are open to everyone; the HTTP layer restricts writes to admins
// before they reach this service.
type PredefinedTripService struct {
	repo repo.PredefinedTripRepo
}

// NewPredefinedTripService constructs a PredefinedTripService backed by the
// provided repo.
func NewPredefinedTripService(r repo.PredefinedTripRepo) *PredefinedTripService {
	return &PredefinedTripService{repo: r}
}

// Create validates a catalog draft and persists it atomically.
func (s *PredefinedTripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateDraft(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.PredefinedTripService.Create: %w", err)
	}
	return result, nil
}

// List returns the whole catalog. Always returns a non-nil slice.
func (s *PredefinedTripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PredefinedTripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// Replace validates a draft and swaps the stored catalog aggregate for it.
func (s *PredefinedTripService) Replace(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateDraft(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.repo.Replace(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.PredefinedTripService.Replace: %w", err)
	}
	return result, nil
}

// Delete removes a catalog trip and its destinations.
func (s *PredefinedTripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PredefinedTripService.Delete: %w", err)
	}
	return nil
}
