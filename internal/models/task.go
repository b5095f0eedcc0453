package models

import "time"

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Valid reports whether s is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskPriority represents how urgent a task is
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known task priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities for agenda sorting: high first.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityHigh:
		return 1
	case TaskPriorityMedium:
		return 2
	default:
		return 3
	}
}

// Task represents a scheduled to-do item. Tasks spawned from a routine keep
// a reference to their origin so the day planner can distinguish them from
// ad-hoc entries.
type Task struct {
	Base
	UserID          uint         `gorm:"not null" json:"user_id"`
	OriginRoutineID *uint        `json:"origin_routine_id,omitempty"`
	Title           string       `gorm:"not null" json:"title"`
	Description     string       `json:"description"`
	StartTime       time.Time    `gorm:"not null" json:"start_time"`
	EndTime         time.Time    `gorm:"not null" json:"end_time"`
	AllowOverlap    bool         `json:"allow_overlap"`
	Status          TaskStatus   `gorm:"not null;default:'pending'" json:"status"`
	Priority        TaskPriority `gorm:"not null;default:'medium'" json:"priority"`

	OriginRoutine *Routine `gorm:"foreignKey:OriginRoutineID;constraint:OnDelete:SET NULL" json:"origin_routine,omitempty"`
}
