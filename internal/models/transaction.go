package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction represents a financial movement in the ledger. Only confirmed
// expense transactions attributed to a budget count toward that budget's
// spent amount.
type Transaction struct {
	Base
	UserID            uint            `gorm:"not null" json:"user_id"`
	AccountID         *uint           `json:"account_id,omitempty"`
	BudgetID          *uint           `json:"budget_id,omitempty"`
	Type              TransactionType `gorm:"not null" json:"type"`
	Amount            int64           `gorm:"type:bigint;not null" json:"amount"`
	Category          string          `gorm:"not null" json:"category"`
	Description       string          `json:"description"`
	Date              time.Time       `gorm:"not null" json:"date"`
	IsRecurring       bool            `json:"is_recurring"`
	RecurrencePattern *string         `json:"recurrence_pattern,omitempty"`
	// No gorm default tag here: the zero value must be insertable so pending
	// (unconfirmed) transactions are stored as such.
	IsConfirmed bool `json:"is_confirmed"`

	// Relationships. A deleted budget clears BudgetID on its transactions
	// rather than cascading the delete.
	Account *FinanceAccount `gorm:"foreignKey:AccountID;constraint:OnDelete:SET NULL" json:"account,omitempty"`
	Budget  *Budget         `gorm:"foreignKey:BudgetID;constraint:OnDelete:SET NULL" json:"budget,omitempty"`
}
