package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
	"github.com/okuznetsov/trip-planner/backend/internal/repo"
	"github.com/okuznetsov/trip-planner/backend/testutil"
)

// newTestTx opens a transaction against the test database that is rolled back
// when the test finishes, giving free per-test isolation. The aggregate repos
// call Begin on it, which opens a savepoint, so their internal transactions
// still commit and roll back correctly inside the test transaction.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// newOwner inserts a user row to satisfy the trips.user_id foreign key.
func newOwner(t *testing.T, tx pgx.Tx) domain.User {
	t.Helper()
	users := repo.NewUserRepo(tx)
	u, err := users.Create(context.Background(), domain.User{
		Username:     "traveller",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return u
}

// tripFixture returns a trip draft with two destinations and sensible defaults.
// Callers can override individual fields after calling this function.
func tripFixture(ownerID uuid.UUID) domain.Trip {
	return domain.Trip{
		Title:     "Summer in Georgia",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		Budget:    1000,
		OwnerID:   ownerID,
		Destinations: []domain.Destination{
			{Name: "Tbilisi", Date: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC), Cost: 400, Category: domain.CategoryLodging},
			{Name: "Kazbegi", Date: time.Date(2026, 6, 5, 9, 0, 0, 0, time.UTC), Cost: 300, Category: domain.CategoryTransport, Notes: "shared van"},
		},
	}
}

func TestTripRepo_Create(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	r := repo.NewTripRepo(tx)
	ctx := context.Background()

	input := tripFixture(owner.ID)
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated")
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, input.Title, got.Title)
	assert.Equal(t, input.Budget, got.Budget)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")

	require.Len(t, got.Destinations, 2)
	for i, d := range got.Destinations {
		assert.NotEqual(t, uuid.Nil, d.ID, "destination %d should carry an assigned ID", i)
		assert.Equal(t, got.ID, d.TripID)
	}
	assert.Equal(t, "Tbilisi", got.Destinations[0].Name)
	assert.Equal(t, 400.0, got.Destinations[0].Cost)
	assert.Equal(t, domain.CategoryTransport, got.Destinations[1].Category)
	assert.Equal(t, "shared van", got.Destinations[1].Notes)
}

func TestTripRepo_Create_NoDestinations(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	r := repo.NewTripRepo(tx)

	input := tripFixture(owner.ID)
	input.Destinations = nil

	got, err := r.Create(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, got.Destinations, "destinations must be an empty slice, never nil")
	assert.Empty(t, got.Destinations)
}

func TestTripRepo_Create_Atomic(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	r := repo.NewTripRepo(tx)
	ctx := context.Background()

	input := tripFixture(owner.ID)
	// numeric(12,2) overflows on this cost, so the second destination insert
	// fails after the header and first destination were written.
	input.Destinations[1].Cost = 1e15

	_, err := r.Create(ctx, input)
	require.Error(t, err)

	// The whole transaction must have rolled back: no header row survives.
	trips, err := r.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, trips, "a failing destination insert must leave zero trip rows")
}

func TestTripRepo_GetByID_NotFound(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	r := repo.NewTripRepo(tx)

	_, err := r.GetByID(context.Background(), uuid.New(), owner.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_GetByID_WrongOwner(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	other := newOwner(t, tx)
	r := repo.NewTripRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture(owner.ID))
	require.NoError(t, err)

	_, err = r.GetByID(ctx, created.ID, other.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTripRepo_ListByOwner_ScopedToOwner(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	other := newOwner(t, tx)
	r := repo.NewTripRepo(tx)
	ctx := context.Background()

	mine, err := r.Create(ctx, tripFixture(owner.ID))
	require.NoError(t, err)
	_, err = r.Create(ctx, tripFixture(other.ID))
	require.NoError(t, err)

	trips, err := r.ListByOwner(ctx, owner.ID)

	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, mine.ID, trips[0].ID)
	assert.Len(t, trips[0].Destinations, 2, "destinations are aggregated into the listing")
}

func TestTripRepo_Replace(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	r := repo.NewTripRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture(owner.ID))
	require.NoError(t, err)
	oldIDs := map[uuid.UUID]bool{}
	for _, d := range created.Destinations {
		oldIDs[d.ID] = true
	}

	draft := created
	draft.Title = "Autumn in Georgia"
	draft.Budget = 1500
	draft.Destinations = []domain.Destination{
		{Name: "Batumi", Date: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), Cost: 500, Category: domain.CategoryLodging},
	}

	got, err := r.Replace(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "Autumn in Georgia", got.Title)
	assert.Equal(t, 1500.0, got.Budget)

	// Exactly the last draft's destinations survive — no leftovers from the
	// prior version, and every row carries a freshly assigned ID.
	listed, err := r.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Destinations, 1)
	assert.Equal(t, "Batumi", listed[0].Destinations[0].Name)
	assert.False(t, oldIDs[listed[0].Destinations[0].ID], "destination IDs are reassigned on every edit")
}

func TestTripRepo_Replace_WrongOwner_NoWrites(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	attacker := newOwner(t, tx)
	r := repo.NewTripRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture(owner.ID))
	require.NoError(t, err)

	draft := created
	draft.OwnerID = attacker.ID
	draft.Title = "hijacked"
	draft.Destinations = nil

	_, err = r.Replace(ctx, draft)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// The trip is unchanged for its real owner.
	unchanged, err := r.GetByID(ctx, created.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, unchanged.Title)
	assert.Len(t, unchanged.Destinations, 2)
}

func TestTripRepo_Replace_NotFound(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	r := repo.NewTripRepo(tx)

	draft := tripFixture(owner.ID)
	draft.ID = uuid.New()

	_, err := r.Replace(context.Background(), draft)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_Delete(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	r := repo.NewTripRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture(owner.ID))
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, created.ID, owner.ID))

	trips, err := r.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, trips, "deleted trip must not appear in listings")

	// A replace after delete fails rather than silently recreating the trip.
	_, err = r.Replace(ctx, created)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_Delete_WrongOwner(t *testing.T) {
	tx := newTestTx(t)
	owner := newOwner(t, tx)
	attacker := newOwner(t, tx)
	r := repo.NewTripRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, tripFixture(owner.ID))
	require.NoError(t, err)

	err = r.Delete(ctx, created.ID, attacker.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = r.GetByID(ctx, created.ID, owner.ID)
	assert.NoError(t, err, "trip must survive a forbidden delete attempt")
}
