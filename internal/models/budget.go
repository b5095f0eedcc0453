package models

import "time"

// BudgetPeriod represents the recurrence granularity of a budget
type BudgetPeriod string

const (
	BudgetPeriodDaily   BudgetPeriod = "daily"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
	BudgetPeriodCustom  BudgetPeriod = "custom"
)

// Valid reports whether p is one of the known budget periods.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetPeriodDaily, BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly, BudgetPeriodCustom:
		return true
	}
	return false
}

// EndDate derives the inclusive end date for a budget starting at start.
// Custom periods have no derived end date (ok is false); the caller supplies
// one explicitly or leaves it unset. Month and year additions clamp to the
// last valid day of the target month, so Jan 31 + 1 month is Feb 28/29 rather
// than rolling into March.
func (p BudgetPeriod) EndDate(start time.Time) (time.Time, bool) {
	switch p {
	case BudgetPeriodDaily:
		return start.AddDate(0, 0, 1), true
	case BudgetPeriodWeekly:
		return start.AddDate(0, 0, 7), true
	case BudgetPeriodMonthly:
		return addMonthsClamped(start, 1), true
	case BudgetPeriodYearly:
		return addMonthsClamped(start, 12), true
	default:
		return time.Time{}, false
	}
}

// addMonthsClamped adds whole months to t, clamping the day of month to the
// last valid day of the target month. time.Time.AddDate normalizes overflow
// (Jan 31 + 1 month = Mar 2/3), which is not calendar-correct for budgets.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// First of the target month; time.Date normalizes month overflow.
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month. Day 0 of the
// following month normalizes to that month's last day.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Budget represents a spending limit tracked over a period, optionally scoped
// to a single account or free-text category. SpentAmount is derived from the
// transaction ledger and never edited directly.
type Budget struct {
	Base
	UserID      uint         `gorm:"not null" json:"user_id"`
	AccountID   *uint        `json:"account_id,omitempty"`
	Name        string       `gorm:"not null" json:"name"`
	Amount      int64        `gorm:"type:bigint;not null" json:"amount"`
	SpentAmount int64        `gorm:"type:bigint;not null;default:0" json:"spent_amount"`
	Category    *string      `json:"category,omitempty"`
	Period      BudgetPeriod `gorm:"not null;default:'monthly'" json:"period"`
	StartDate   time.Time    `gorm:"not null" json:"start_date"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
	IsActive    bool         `gorm:"default:true" json:"is_active"`

	// Relationships
	Account *FinanceAccount `gorm:"foreignKey:AccountID;constraint:OnDelete:SET NULL" json:"account,omitempty"`
}
