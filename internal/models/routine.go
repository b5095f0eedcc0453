package models

import (
	"strconv"
	"strings"
	"time"
)

// ConflictPolicy decides what happens when a routine's generated task clashes
// with an existing one for the same slot.
type ConflictPolicy string

const (
	ConflictPolicySkip     ConflictPolicy = "skip"
	ConflictPolicyOverride ConflictPolicy = "override"
	ConflictPolicyAsk      ConflictPolicy = "ask"
)

// Valid reports whether p is one of the known conflict policies.
func (p ConflictPolicy) Valid() bool {
	switch p {
	case ConflictPolicySkip, ConflictPolicyOverride, ConflictPolicyAsk:
		return true
	}
	return false
}

// Routine represents a recurring habit slot: which weekdays it runs on, when
// it starts, and how long it lasts. DaysOfWeek is a comma-separated list of
// weekday numbers (0 = Sunday), matching time.Weekday.
type Routine struct {
	Base
	UserID         uint           `gorm:"not null" json:"user_id"`
	Name           string         `gorm:"not null" json:"name"`
	DaysOfWeek     string         `gorm:"not null" json:"days_of_week"`
	StartTime      string         `gorm:"not null" json:"start_time"`
	DurationMin    int            `gorm:"not null" json:"duration_min"`
	ConflictPolicy ConflictPolicy `gorm:"not null;default:'skip'" json:"conflict_policy"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`

	HabitLogs []HabitLog `gorm:"foreignKey:RoutineID" json:"habit_logs,omitempty"`
}

// RunsOn reports whether the routine is scheduled for the given weekday.
func (r *Routine) RunsOn(day time.Weekday) bool {
	for _, part := range strings.Split(r.DaysOfWeek, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if time.Weekday(n) == day {
			return true
		}
	}
	return false
}
