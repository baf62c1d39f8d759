// Package domain contains the core data types for the trip planner backend.
// This package has zero external dependencies beyond uuid/time and is imported
// by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level aggregate: a titled, dated container of destinations,
// either personal (owned by a user) or part of the public predefined catalog.
// A trip and its destinations are always persisted and replaced as one unit.
type Trip struct {
	ID        uuid.UUID
	Title     string
	StartDate time.Time
	EndDate   time.Time
	// Budget of 0 means "no budget constraint" — the evaluator never flags
	// an unconstrained trip as over budget.
	Budget float64
	// OwnerID is the zero UUID for predefined trips, which belong to the
	// public catalog rather than an individual user.
	OwnerID      uuid.UUID
	Destinations []Destination
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Destination is a single dated, costed stop within a trip. It has no
// identity outside its parent trip: replacing a trip's destination list
// assigns fresh IDs to every destination, including unchanged ones.
type Destination struct {
	ID     uuid.UUID
	TripID uuid.UUID
	Name   string
	// Date is the moment the destination occurs. Clients may supply a bare
	// calendar date; it is stored as the midnight UTC timestamp of that day.
	Date  time.Time
	Cost  float64
	Notes string
	// Category is set on personal-trip destinations only; predefined
	// destinations leave it empty.
	Category Category
}

// Category classifies a personal-trip destination's cost.
type Category string

// The fixed set of destination categories.
const (
	CategoryTransport     Category = "Transport"
	CategoryLodging       Category = "Lodging"
	CategoryFood          Category = "Food"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
)

// Valid reports whether c is one of the fixed category values.
func (c Category) Valid() bool {
	switch c {
	case CategoryTransport, CategoryLodging, CategoryFood, CategoryEntertainment, CategoryOther:
		return true
	}
	return false
}
