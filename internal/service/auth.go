package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
	"github.com/okuznetsov/trip-planner/backend/internal/repo"
)

// minPasswordLength is the minimum accepted password length at registration.
const minPasswordLength = 6

// TokenIssuer mints a signed bearer token for a user ID.
// Defined here, in the consumer package, so the service can be unit-tested
// with a stub instead of a real signer.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// AuthService implements registration, login, and profile lookup.
type AuthService struct {
	users  repo.UserRepo
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService backed by the provided user repo
// and token issuer.
func NewAuthService(users repo.UserRepo, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a new account with role "user" and a bcrypt password hash.
// Returns domain.ErrValidation for bad input and domain.ErrConflict when the
// email is already registered. The returned user has its hash cleared.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" {
		return domain.User{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Register: hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credentials and returns a signed bearer token.
// Unknown email and wrong password both surface as domain.ErrUnauthorized so
// the response cannot be used to probe which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthorized)
		}
		return "", fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("service.AuthService.Login: issue token: %w", err)
	}
	return token, nil
}

// Profile returns the account for id with the password hash cleared.
func (s *AuthService) Profile(ctx context.Context, id uuid.UUID) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}
