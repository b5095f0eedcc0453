package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "vida/internal/errors"
	"vida/internal/models"
	"vida/internal/pagination"
)

// accountService handles finance-account business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new finance account for a user. The current balance
// starts at the initial balance.
func (s *accountService) CreateAccount(
	userID uint,
	name string,
	accountType models.AccountType,
	currency string,
	initialBalance int64,
) (*models.FinanceAccount, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if accountType == "" {
		accountType = models.AccountTypeBankAccount
	}
	if currency == "" {
		currency = "CLP"
	}

	account := &models.FinanceAccount{
		UserID:         userID,
		Name:           name,
		Type:           accountType,
		Currency:       currency,
		InitialBalance: initialBalance,
		CurrentBalance: initialBalance,
		IsActive:       true,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetUserAccounts returns a paginated list of accounts for the user.
func (s *accountService) GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.FinanceAccount], error) {
	page.Defaults()

	base := s.db.Model(&models.FinanceAccount{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.FinanceAccount
	if err := base.Order("created_at").Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID returns an account by ID if it belongs to the user.
func (s *accountService) GetAccountByID(userID, accountID uint) (*models.FinanceAccount, error) {
	var account models.FinanceAccount
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount updates an account's name and active flag.
func (s *accountService) UpdateAccount(userID, accountID uint, name string, isActive *bool) (*models.FinanceAccount, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeleteAccount hard-deletes an account. Transactions and budgets keep
// existing with account_id cleared.
func (s *accountService) DeleteAccount(userID, accountID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("account_id = ?", accountID).
			Update("account_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Budget{}).
			Where("account_id = ?", accountID).
			Update("account_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", accountID, userID).
			Delete(&models.FinanceAccount{}).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AdjustBalance applies a confirmed transaction's effect to the account's
// current balance: income adds, expense subtracts. Transfers are balance
// neutral from the account's perspective here and are skipped.
func (s *accountService) AdjustBalance(accountID uint, transactionType models.TransactionType, amount int64) error {
	var delta int64
	switch transactionType {
	case models.TransactionTypeIncome:
		delta = amount
	case models.TransactionTypeExpense:
		delta = -amount
	default:
		return nil
	}

	if err := s.db.Model(&models.FinanceAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"current_balance": gorm.Expr("current_balance + ?", delta),
			"updated_at":      time.Now(),
		}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
