package models

// HabitLog records whether a routine was completed on a given day. Date is a
// calendar day in YYYY-MM-DD form; there is at most one log per routine per
// day.
type HabitLog struct {
	Base
	RoutineID uint   `gorm:"not null;uniqueIndex:idx_habit_logs_routine_date" json:"routine_id"`
	Date      string `gorm:"not null;uniqueIndex:idx_habit_logs_routine_date" json:"date"`
	Completed bool   `json:"completed"`
	Notes     string `json:"notes"`
}
