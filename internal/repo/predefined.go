package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
)

// PredefinedTripRepo defines the persistence operations for the public
// predefined-trip catalog. Structurally identical to TripRepo minus
// ownership: catalog trips have no owner, and destination rows carry no
// category. Authorization (admin role) is enforced by the HTTP layer.
type PredefinedTripRepo interface {
	// Create inserts the trip header plus destinations in one transaction.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves one catalog trip with its destinations.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns the whole catalog, destinations attached.
	List(ctx context.Context) ([]domain.Trip, error)

	// Replace updates the header and reinserts the destination list fresh,
	// in one transaction. Returns domain.ErrNotFound for an unknown ID.
	Replace(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes the destinations then the header in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgPredefinedTripRepo is the Postgres implementation of PredefinedTripRepo.
type pgPredefinedTripRepo struct {
	db db
}

// NewPredefinedTripRepo constructs a PredefinedTripRepo backed by the
// provided db connection.
func NewPredefinedTripRepo(db db) PredefinedTripRepo {
	return &pgPredefinedTripRepo{db: db}
}

func (r *pgPredefinedTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO predefined_trips (title, start_date, end_date, budget)
		VALUES (@title, @start_date, @end_date, @budget)
		RETURNING id, title, start_date, end_date, budget, created_at, updated_at`

	args := pgx.NamedArgs{
		"title":      trip.Title,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
		"budget":     trip.Budget,
	}

	persisted, err := scanPredefinedTrip(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.Create: %w", err)
	}

	persisted.Destinations, err = insertPredefinedDestinations(ctx, tx, persisted.ID, trip.Destinations)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.Create: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.Create: commit: %w", err)
	}
	return persisted, nil
}

func (r *pgPredefinedTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT id, title, start_date, end_date, budget, created_at, updated_at
		FROM predefined_trips
		WHERE id = @id`

	trip, err := scanPredefinedTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.GetByID: %w", err)
	}

	trip.Destinations, err = listPredefinedDestinations(ctx, r.db, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.GetByID: %w", err)
	}
	return trip, nil
}

func (r *pgPredefinedTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `
		SELECT id, title, start_date, end_date, budget, created_at, updated_at
		FROM predefined_trips
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.PredefinedTripRepo.List: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanPredefinedTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PredefinedTripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PredefinedTripRepo.List: rows: %w", err)
	}
	rows.Close()

	for i := range trips {
		trips[i].Destinations, err = listPredefinedDestinations(ctx, r.db, trips[i].ID)
		if err != nil {
			return nil, fmt.Errorf("repo.PredefinedTripRepo.List: %w", err)
		}
	}
	return trips, nil
}

func (r *pgPredefinedTripRepo) Replace(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.Replace: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		UPDATE predefined_trips
		SET title      = @title,
		    start_date = @start_date,
		    end_date   = @end_date,
		    budget     = @budget,
		    updated_at = now()
		WHERE id = @id
		RETURNING id, title, start_date, end_date, budget, created_at, updated_at`

	args := pgx.NamedArgs{
		"id":         trip.ID,
		"title":      trip.Title,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
		"budget":     trip.Budget,
	}

	persisted, err := scanPredefinedTrip(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.Replace: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM predefined_destinations WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": trip.ID}); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.Replace: delete destinations: %w", err)
	}

	persisted.Destinations, err = insertPredefinedDestinations(ctx, tx, trip.ID, trip.Destinations)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.Replace: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.PredefinedTripRepo.Replace: commit: %w", err)
	}
	return persisted, nil
}

func (r *pgPredefinedTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.PredefinedTripRepo.Delete: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM predefined_destinations WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": id}); err != nil {
		return fmt.Errorf("repo.PredefinedTripRepo.Delete: delete destinations: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM predefined_trips WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PredefinedTripRepo.Delete: delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PredefinedTripRepo.Delete: %w", domain.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.PredefinedTripRepo.Delete: commit: %w", err)
	}
	return nil
}

// insertPredefinedDestinations mirrors insertDestinations for the catalog
// tables, which carry no category column.
func insertPredefinedDestinations(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, dests []domain.Destination) ([]domain.Destination, error) {
	const q = `
		INSERT INTO predefined_destinations (trip_id, name, date, cost, notes)
		VALUES (@trip_id, @name, @date, @cost, @notes)
		RETURNING id, trip_id, name, date, cost, notes`

	persisted := []domain.Destination{}
	for _, d := range dests {
		args := pgx.NamedArgs{
			"trip_id": tripID,
			"name":    d.Name,
			"date":    d.Date,
			"cost":    d.Cost,
			"notes":   d.Notes,
		}
		row, err := scanDestination(tx.QueryRow(ctx, q, args), false)
		if err != nil {
			return nil, fmt.Errorf("insert predefined destination: %w", err)
		}
		persisted = append(persisted, row)
	}
	return persisted, nil
}

// listPredefinedDestinations returns all catalog destination rows for tripID
// in insertion order.
func listPredefinedDestinations(ctx context.Context, db db, tripID uuid.UUID) ([]domain.Destination, error) {
	const q = `
		SELECT id, trip_id, name, date, cost, notes
		FROM predefined_destinations
		WHERE trip_id = @trip_id
		ORDER BY id`

	rows, err := db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("list predefined destinations: %w", err)
	}
	defer rows.Close()

	dests := []domain.Destination{}
	for rows.Next() {
		d, err := scanDestination(rows, false)
		if err != nil {
			return nil, fmt.Errorf("list predefined destinations: scan: %w", err)
		}
		dests = append(dests, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list predefined destinations: rows: %w", err)
	}
	return dests, nil
}

// scanPredefinedTrip maps a predefined_trips row into a domain.Trip.
// OwnerID stays the zero UUID: catalog trips belong to no user.
func scanPredefinedTrip(s scanner) (domain.Trip, error) {
	var (
		t     domain.Trip
		id    pgtype.UUID
		start pgtype.Date
		end   pgtype.Date
	)

	err := s.Scan(&id, &t.Title, &start, &end, &t.Budget, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = start.Time
	t.EndDate = end.Time
	t.Destinations = []domain.Destination{}
	return t, nil
}
