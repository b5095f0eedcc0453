package models

import "time"

// Base contains common columns for all tables. Records carry auto-incrementing
// integer identifiers and deletes are hard deletes.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
