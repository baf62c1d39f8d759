package domain

// BudgetSummary is the result of evaluating a destination list against a
// trip budget. The same formula runs before a destination is added (on the
// prospective list, to produce a warning) and after persistence (to render
// the summary), so the two displayed numbers always agree for the same set.
type BudgetSummary struct {
	// TotalCost is the sum of every destination's cost.
	TotalCost float64
	// Remaining is budget minus total when a budget is set, 0 otherwise.
	// It goes negative when the trip is over budget.
	Remaining float64
	// OverBudget is true only when a positive budget is exceeded. A budget
	// of zero or less means "unconstrained" and never flags.
	OverBudget bool
}

// Evaluate computes the budget summary for a destination list.
// Pure function: no I/O, no error conditions — it always returns a value.
// Malformed costs never reach this point; the JSON boundary coerces them
// to zero before they enter a Destination.
func Evaluate(destinations []Destination, budget float64) BudgetSummary {
	var total float64
	for _, d := range destinations {
		total += d.Cost
	}

	s := BudgetSummary{TotalCost: total}
	if budget > 0 {
		s.Remaining = budget - total
		s.OverBudget = total > budget
	}
	return s
}
