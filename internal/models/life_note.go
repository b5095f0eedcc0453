package models

// LifeNote is a free-form journal entry, optionally tagged with a mood.
type LifeNote struct {
	Base
	UserID  uint    `gorm:"not null" json:"user_id"`
	Title   string  `json:"title"`
	Content string  `gorm:"not null" json:"content"`
	Mood    *string `json:"mood,omitempty"`
}
