package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, empty destination list).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when an authenticated caller lacks the required
// ownership or role for an operation. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized is returned when a bearer token is missing, malformed,
// expired, or carries a bad signature. Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict is returned when a write collides with existing state,
// e.g. registering an email that is already taken. Maps to HTTP 409.
var ErrConflict = errors.New("conflict")
