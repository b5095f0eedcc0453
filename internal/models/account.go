package models

// AccountType represents the type of finance account
type AccountType string

const (
	AccountTypeCash          AccountType = "cash"
	AccountTypeBankAccount   AccountType = "bank_account"
	AccountTypeCreditCard    AccountType = "credit_card"
	AccountTypeDigitalWallet AccountType = "digital_wallet"
	AccountTypeSavings       AccountType = "savings"
)

// FinanceAccount represents a money account owned by a user. Balances are
// stored in minor currency units.
type FinanceAccount struct {
	Base
	UserID         uint        `gorm:"not null" json:"user_id"`
	Name           string      `gorm:"not null" json:"name"`
	Type           AccountType `gorm:"not null;default:'bank_account'" json:"type"`
	Currency       string      `gorm:"not null;default:'CLP'" json:"currency"`
	InitialBalance int64       `gorm:"type:bigint;not null;default:0" json:"initial_balance"`
	CurrentBalance int64       `gorm:"type:bigint;not null;default:0" json:"current_balance"`
	IsActive       bool        `gorm:"default:true" json:"is_active"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
