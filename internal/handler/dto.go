package handler

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/okuznetsov/trip-planner/backend/internal/domain"
)

// flexNumber is a float64 that tolerates sloppy JSON input: a number, a
// numeric string, or anything else, which degrades to 0. The web client has
// always submitted cost and budget as form-field strings, and both sides of
// the budget arithmetic must coerce identically, so the server reproduces
// that leniency instead of tightening validation.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*f = flexNumber(asNumber)
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if parsed, err := strconv.ParseFloat(asString, 64); err == nil {
			*f = flexNumber(parsed)
			return nil
		}
	}

	// Non-numeric input contributes zero rather than failing the request.
	*f = 0
	return nil
}

// flexTime accepts an ISO-8601 timestamp or a bare calendar date, which is
// taken as midnight UTC of that day.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = flexTime(parsed.UTC())
			return nil
		}
	}
	// Leave the zero value; the service rejects destinations without a date.
	*t = flexTime(time.Time{})
	return nil
}

// ---- requests --------------------------------------------------------------

// tripRequest is the body shape shared by trip create and replace, for both
// personal and catalog trips.
type tripRequest struct {
	Title        string               `json:"title"`
	StartDate    openapi_types.Date   `json:"start_date"`
	EndDate      openapi_types.Date   `json:"end_date"`
	Budget       flexNumber           `json:"budget"`
	Destinations []destinationRequest `json:"destinations"`
}

type destinationRequest struct {
	Name     string     `json:"name"`
	Date     flexTime   `json:"date"`
	Cost     flexNumber `json:"cost"`
	Notes    string     `json:"notes"`
	Category string     `json:"category"`
}

// toDomain converts the request body into a domain.Trip draft.
func (r tripRequest) toDomain() domain.Trip {
	trip := domain.Trip{
		Title:     r.Title,
		StartDate: r.StartDate.Time,
		EndDate:   r.EndDate.Time,
		Budget:    float64(r.Budget),
	}
	for _, d := range r.Destinations {
		trip.Destinations = append(trip.Destinations, domain.Destination{
			Name:     d.Name,
			Date:     time.Time(d.Date),
			Cost:     float64(d.Cost),
			Notes:    d.Notes,
			Category: domain.Category(d.Category),
		})
	}
	return trip
}

// ---- responses -------------------------------------------------------------

type tripResponse struct {
	ID           uuid.UUID             `json:"id"`
	Title        string                `json:"title"`
	StartDate    openapi_types.Date    `json:"start_date"`
	EndDate      openapi_types.Date    `json:"end_date"`
	Budget       float64               `json:"budget"`
	UserID       *uuid.UUID            `json:"user_id,omitempty"`
	Destinations []destinationResponse `json:"destinations"`
	Summary      budgetResponse        `json:"budget_summary"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type destinationResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Cost     float64   `json:"cost"`
	Notes    string    `json:"notes,omitempty"`
	Category string    `json:"category,omitempty"`
}

type budgetResponse struct {
	TotalCost  float64 `json:"total_cost"`
	Remaining  float64 `json:"remaining"`
	OverBudget bool    `json:"over_budget"`
}

// tripToResponse converts a persisted aggregate into its JSON shape.
// Destinations are presented in date-ascending order — the store keeps
// insertion order, and every surface that lists destinations must reproduce
// the same chronological view. The budget summary is computed here with the
// same formula the client uses pre-submit, so the numbers always agree.
func tripToResponse(t domain.Trip) tripResponse {
	resp := tripResponse{
		ID:        t.ID,
		Title:     t.Title,
		StartDate: openapi_types.Date{Time: t.StartDate},
		EndDate:   openapi_types.Date{Time: t.EndDate},
		Budget:    t.Budget,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.OwnerID != uuid.Nil {
		owner := t.OwnerID
		resp.UserID = &owner
	}

	dests := make([]domain.Destination, len(t.Destinations))
	copy(dests, t.Destinations)
	sort.SliceStable(dests, func(i, j int) bool { return dests[i].Date.Before(dests[j].Date) })

	resp.Destinations = make([]destinationResponse, len(dests))
	for i, d := range dests {
		resp.Destinations[i] = destinationResponse{
			ID:       d.ID,
			Name:     d.Name,
			Date:     d.Date,
			Cost:     d.Cost,
			Notes:    d.Notes,
			Category: string(d.Category),
		}
	}

	summary := domain.Evaluate(t.Destinations, t.Budget)
	resp.Summary = budgetResponse{
		TotalCost:  summary.TotalCost,
		Remaining:  summary.Remaining,
		OverBudget: summary.OverBudget,
	}
	return resp
}

// tripsToResponse maps a trip list, preserving the store's ordering.
func tripsToResponse(trips []domain.Trip) []tripResponse {
	out := make([]tripResponse, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	return out
}
