package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role gates access to the predefined-catalog write routes.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account. PasswordHash is the bcrypt hash of the
// password and must never be serialized to a client.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
