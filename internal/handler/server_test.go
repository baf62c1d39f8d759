package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
	"github.com/okuznetsov/trip-planner/backend/internal/handler"
	"github.com/okuznetsov/trip-planner/backend/internal/middleware"
	"github.com/okuznetsov/trip-planner/backend/internal/repo"
)

// ---- service mocks ---------------------------------------------------------

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create  func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	list    func(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error)
	replace func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete  func(ctx context.Context, id, ownerID uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	return m.list(ctx, ownerID)
}
func (m *mockTripServicer) Replace(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.replace(ctx, t)
}
func (m *mockTripServicer) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return m.delete(ctx, id, ownerID)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockPredefinedServicer is a test double for handler.PredefinedServicer.
type mockPredefinedServicer struct {
	create  func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	list    func(ctx context.Context) ([]domain.Trip, error)
	replace func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPredefinedServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockPredefinedServicer) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockPredefinedServicer) Replace(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.replace(ctx, t)
}
func (m *mockPredefinedServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.PredefinedServicer = (*mockPredefinedServicer)(nil)

// mockAuthServicer is a test double for handler.AuthServicer.
type mockAuthServicer struct {
	register func(ctx context.Context, username, email, password string) (domain.User, error)
	login    func(ctx context.Context, email, password string) (string, error)
	profile  func(ctx context.Context, id uuid.UUID) (domain.User, error)
}

func (m *mockAuthServicer) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	return m.register(ctx, username, email, password)
}
func (m *mockAuthServicer) Login(ctx context.Context, email, password string) (string, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuthServicer) Profile(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.profile(ctx, id)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

// ---- auth stubs ------------------------------------------------------------

// stubVerifier resolves bearer tokens from a fixed map.
type stubVerifier struct {
	byToken map[string]uuid.UUID
}

func (s *stubVerifier) Verify(token string) (uuid.UUID, error) {
	id, ok := s.byToken[token]
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id, nil
}

// stubUserRepo serves users from a fixed map, like the table would.
type stubUserRepo struct {
	byID map[uuid.UUID]domain.User
}

func (s *stubUserRepo) Create(_ context.Context, _ domain.User) (domain.User, error) {
	panic("not used in handler tests")
}
func (s *stubUserRepo) GetByEmail(_ context.Context, _ string) (domain.User, error) {
	panic("not used in handler tests")
}
func (s *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

var _ repo.UserRepo = (*stubUserRepo)(nil)

// ---- test wiring -----------------------------------------------------------

// Fixed bearer tokens resolved by the stub verifier.
const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

// testEnv bundles the mocks behind a fully routed handler, wired the same
// way main.go wires production: a real Authenticator in front of Routes,
// with only the token verification and user lookup stubbed out.
type testEnv struct {
	trips   *mockTripServicer
	catalog *mockPredefinedServicer
	auth    *mockAuthServicer

	user  domain.User
	admin domain.User

	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		trips:   &mockTripServicer{},
		catalog: &mockPredefinedServicer{},
		auth:    &mockAuthServicer{},
		user: domain.User{
			ID:       uuid.New(),
			Username: "vera",
			Email:    "vera@example.com",
			Role:     domain.RoleUser,
		},
		admin: domain.User{
			ID:       uuid.New(),
			Username: "admin",
			Email:    "admin@example.com",
			Role:     domain.RoleAdmin,
		},
	}

	verifier := &stubVerifier{byToken: map[string]uuid.UUID{
		userToken:  env.user.ID,
		adminToken: env.admin.ID,
	}}
	users := &stubUserRepo{byID: map[uuid.UUID]domain.User{
		env.user.ID:  env.user,
		env.admin.ID: env.admin,
	}}

	authn := middleware.NewAuthenticator(verifier, users)
	passthrough := func(next http.Handler) http.Handler { return next }

	srv := handler.NewServer(env.trips, env.catalog, env.auth)
	env.handler = srv.Routes(authn, passthrough)
	return env
}

// ---- shared helpers --------------------------------------------------------

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// tripFixture is a persisted aggregate as the service layer would return it:
// destinations deliberately out of date order to exercise response sorting.
func tripFixture(ownerID uuid.UUID) domain.Trip {
	tripID := uuid.New()
	return domain.Trip{
		ID:        tripID,
		Title:     "Georgia Loop",
		StartDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		Budget:    1000,
		OwnerID:   ownerID,
		Destinations: []domain.Destination{
			{
				ID:       uuid.New(),
				TripID:   tripID,
				Name:     "Kazbegi",
				Date:     time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC),
				Cost:     300,
				Category: domain.CategoryLodging,
			},
			{
				ID:       uuid.New(),
				TripID:   tripID,
				Name:     "Tbilisi",
				Date:     time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
				Cost:     400,
				Notes:    "old town",
				Category: domain.CategoryFood,
			},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

// tripDraftBody is a well-formed request body matching tripFixture, with
// budget and costs sent as strings the way the web client does.
func tripDraftBody() map[string]any {
	return map[string]any{
		"title":      "Georgia Loop",
		"start_date": "2026-05-01",
		"end_date":   "2026-05-10",
		"budget":     "1000",
		"destinations": []map[string]any{
			{"name": "Tbilisi", "date": "2026-05-01", "cost": "400", "notes": "old town", "category": "Food"},
			{"name": "Kazbegi", "date": "2026-05-06", "cost": 300, "category": "Lodging"},
		},
	}
}

// errorBody decodes the single-line {error} response shape.
func errorBody(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}
