// Package auth issues and verifies the signed bearer tokens used by the API.
// Tokens are HS256 JWTs carrying the user ID as the subject claim; role
// checks are done against the database at request time, not baked into the
// token, so a role change takes effect without reissuing tokens.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
)

// TokenManager signs and verifies bearer tokens with a shared HMAC secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager. ttl bounds token lifetime;
// the default wiring uses 30 days.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token whose subject is the given user ID.
func (m *TokenManager) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth.TokenManager.Issue: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a signed token and returns the user ID it
// carries. Any failure — bad signature, wrong algorithm, expiry, malformed
// subject — is reported uniformly as domain.ErrUnauthorized so callers
// cannot leak why a token was rejected.
func (m *TokenManager) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("auth.TokenManager.Verify: %w", domain.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, fmt.Errorf("auth.TokenManager.Verify: missing subject: %w", domain.ErrUnauthorized)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth.TokenManager.Verify: bad subject: %w", domain.ErrUnauthorized)
	}
	return id, nil
}
