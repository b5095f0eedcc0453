package models

// User represents the user model in the database
type User struct {
	Base
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Accounts     []FinanceAccount `gorm:"foreignKey:UserID" json:"accounts,omitempty"`
	Budgets      []Budget         `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
	Transactions []Transaction    `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
