package services

import "vida/internal/models"

// BudgetStatus classifies how far along a budget is.
type BudgetStatus string

const (
	BudgetStatusGood     BudgetStatus = "good"
	BudgetStatusWarning  BudgetStatus = "warning"
	BudgetStatusExceeded BudgetStatus = "exceeded"
)

// Status thresholds, in percent. Fixed design constants, not per-budget
// configuration.
const (
	warningThreshold  = 80.0
	exceededThreshold = 100.0
)

// BudgetProgress returns spent_amount as a percentage of amount, capped at
// 100 for display. A non-positive amount yields 0; the create-time invariant
// should prevent that, but division by zero is guarded regardless.
func BudgetProgress(b *models.Budget) float64 {
	if b.Amount <= 0 {
		return 0
	}
	progress := float64(b.SpentAmount) / float64(b.Amount) * 100
	if progress > 100 {
		return 100
	}
	return progress
}

// BudgetStatusOf classifies the budget by its uncapped spending ratio:
// exceeded at or above 100%, warning from 80% up, good below that.
func BudgetStatusOf(b *models.Budget) BudgetStatus {
	if b.Amount <= 0 {
		return BudgetStatusGood
	}
	ratio := float64(b.SpentAmount) / float64(b.Amount) * 100
	switch {
	case ratio >= exceededThreshold:
		return BudgetStatusExceeded
	case ratio >= warningThreshold:
		return BudgetStatusWarning
	default:
		return BudgetStatusGood
	}
}

// BudgetRemaining returns amount - spent_amount. The value is signed: a
// negative result means the budget is exceeded by that much, and the caller
// decides how to label it.
func BudgetRemaining(b *models.Budget) int64 {
	return b.Amount - b.SpentAmount
}

// BudgetReport bundles the derived progress values for presentation.
type BudgetReport struct {
	BudgetID   uint         `json:"budget_id"`
	Budgeted   int64        `json:"budgeted"`
	Spent      int64        `json:"spent"`
	Remaining  int64        `json:"remaining"`
	Percentage float64      `json:"percentage"`
	Status     BudgetStatus `json:"status"`
}

// EvaluateBudget derives the full progress report for a budget.
func EvaluateBudget(b *models.Budget) BudgetReport {
	return BudgetReport{
		BudgetID:   b.ID,
		Budgeted:   b.Amount,
		Spent:      b.SpentAmount,
		Remaining:  BudgetRemaining(b),
		Percentage: BudgetProgress(b),
		Status:     BudgetStatusOf(b),
	}
}
