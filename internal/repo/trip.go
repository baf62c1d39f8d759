// Package repo contains all database access logic for the trip planner API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL, transactions, and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so the aggregate repos' internal transactions still work inside
// a test transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TripRepo defines the persistence operations for personal trip aggregates.
// Every mutation touches the trip header and its destination rows as one
// all-or-nothing transaction; no operation partially persists.
//
// Replace deletes every existing destination row and reinserts the draft's
// list, so destination IDs are not stable across an edit. That is the
// documented contract: callers must not rely on destination ID stability.
type TripRepo interface {
	// Create inserts the trip header plus one row per destination in a single
	// transaction and returns the persisted aggregate with assigned IDs.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves one trip with its destinations.
	// Returns domain.ErrNotFound if the trip does not exist and
	// domain.ErrForbidden if it belongs to a different user.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (domain.Trip, error)

	// ListByOwner returns all trips owned by a user, destinations attached.
	// A trip with zero destinations carries an empty, non-nil slice.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error)

	// Replace updates the header's scalar fields, deletes all existing
	// destinations, and reinserts the draft's list, all in one transaction.
	// Ownership is checked inside the same transaction before any write.
	Replace(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes the destinations then the header in one transaction.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO trips (user_id, title, start_date, end_date, budget)
		VALUES (@user_id, @title, @start_date, @end_date, @budget)
		RETURNING id, user_id, title, start_date, end_date, budget, created_at, updated_at`

	args := pgx.NamedArgs{
		"user_id":    trip.OwnerID,
		"title":      trip.Title,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
		"budget":     trip.Budget,
	}

	persisted, err := scanTrip(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}

	persisted.Destinations, err = insertDestinations(ctx, tx, persisted.ID, trip.Destinations)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: commit: %w", err)
	}
	return persisted, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT id, user_id, title, start_date, end_date, budget, created_at, updated_at
		FROM trips
		WHERE id = @id`

	trip, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	if trip.OwnerID != ownerID {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrForbidden)
	}

	trip.Destinations, err = listDestinations(ctx, r.db, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return trip, nil
}

func (r *pgTripRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	const q = `
		SELECT id, user_id, title, start_date, end_date, budget, created_at, updated_at
		FROM trips
		WHERE user_id = @user_id
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListByOwner: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByOwner: rows: %w", err)
	}
	rows.Close()

	for i := range trips {
		trips[i].Destinations, err = listDestinations(ctx, r.db, trips[i].ID)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListByOwner: %w", err)
		}
	}
	return trips, nil
}

func (r *pgTripRepo) Replace(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Replace: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := checkOwnership(ctx, tx, trip.ID, trip.OwnerID); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Replace: %w", err)
	}

	const q = `
		UPDATE trips
		SET title      = @title,
		    start_date = @start_date,
		    end_date   = @end_date,
		    budget     = @budget,
		    updated_at = now()
		WHERE id = @id
		RETURNING id, user_id, title, start_date, end_date, budget, created_at, updated_at`

	args := pgx.NamedArgs{
		"id":         trip.ID,
		"title":      trip.Title,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
		"budget":     trip.Budget,
	}

	persisted, err := scanTrip(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Replace: %w", err)
	}

	// Full-replace semantics: drop every existing destination row and insert
	// the draft's list fresh. Simpler than diffing old vs. new at the price
	// of reassigned destination IDs on every edit.
	if _, err := tx.Exec(ctx, `DELETE FROM destinations WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": trip.ID}); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Replace: delete destinations: %w", err)
	}

	persisted.Destinations, err = insertDestinations(ctx, tx, trip.ID, trip.Destinations)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Replace: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Replace: commit: %w", err)
	}
	return persisted, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := checkOwnership(ctx, tx, id, ownerID); err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM destinations WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": id}); err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: delete destinations: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM trips WHERE id = @id`,
		pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: delete trip: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: commit: %w", err)
	}
	return nil
}

// checkOwnership verifies inside the caller's transaction that the trip exists
// and belongs to ownerID. Returns domain.ErrNotFound / domain.ErrForbidden;
// the caller rolls back, so on violation no write is persisted.
func checkOwnership(ctx context.Context, tx pgx.Tx, tripID, ownerID uuid.UUID) error {
	var owner pgtype.UUID
	err := tx.QueryRow(ctx, `SELECT user_id FROM trips WHERE id = @id`,
		pgx.NamedArgs{"id": tripID}).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if uuid.UUID(owner.Bytes) != ownerID {
		return domain.ErrForbidden
	}
	return nil
}

// insertDestinations inserts one row per destination for tripID and returns
// the persisted records with their assigned IDs, in insertion order.
func insertDestinations(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, dests []domain.Destination) ([]domain.Destination, error) {
	const q = `
		INSERT INTO destinations (trip_id, name, date, cost, notes, category)
		VALUES (@trip_id, @name, @date, @cost, @notes, @category)
		RETURNING id, trip_id, name, date, cost, notes, category`

	persisted := []domain.Destination{}
	for _, d := range dests {
		category := d.Category
		if category == "" {
			category = domain.CategoryOther
		}
		args := pgx.NamedArgs{
			"trip_id":  tripID,
			"name":     d.Name,
			"date":     d.Date,
			"cost":     d.Cost,
			"notes":    d.Notes,
			"category": category,
		}
		row, err := scanDestination(tx.QueryRow(ctx, q, args), true)
		if err != nil {
			return nil, fmt.Errorf("insert destination: %w", err)
		}
		persisted = append(persisted, row)
	}
	return persisted, nil
}

// listDestinations returns all destination rows for tripID in insertion order.
// No chronological sorting happens here; date ordering is a presentation
// concern handled by the HTTP layer.
func listDestinations(ctx context.Context, db db, tripID uuid.UUID) ([]domain.Destination, error) {
	const q = `
		SELECT id, trip_id, name, date, cost, notes, category
		FROM destinations
		WHERE trip_id = @trip_id
		ORDER BY id`

	rows, err := db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()

	dests := []domain.Destination{}
	for rows.Next() {
		d, err := scanDestination(rows, true)
		if err != nil {
			return nil, fmt.Errorf("list destinations: scan: %w", err)
		}
		dests = append(dests, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list destinations: rows: %w", err)
	}
	return dests, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single trips row into a domain.Trip.
// Destinations are loaded separately; the returned trip has none attached.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t       domain.Trip
		id      pgtype.UUID
		ownerID pgtype.UUID
		start   pgtype.Date
		end     pgtype.Date
	)

	err := s.Scan(&id, &ownerID, &t.Title, &start, &end, &t.Budget, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(ownerID.Bytes)
	t.StartDate = start.Time
	t.EndDate = end.Time
	t.Destinations = []domain.Destination{}
	return t, nil
}

// scanDestination maps a destinations row into a domain.Destination.
// withCategory is false for the predefined tables, which have no category column.
func scanDestination(s scanner, withCategory bool) (domain.Destination, error) {
	var (
		d      domain.Destination
		id     pgtype.UUID
		tripID pgtype.UUID
	)

	targets := []any{&id, &tripID, &d.Name, &d.Date, &d.Cost, &d.Notes}
	if withCategory {
		targets = append(targets, &d.Category)
	}

	if err := s.Scan(targets...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Destination{}, domain.ErrNotFound
		}
		return domain.Destination{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	d.TripID = uuid.UUID(tripID.Bytes)
	return d, nil
}
