package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "vida/internal/errors"
	"vida/internal/models"
	"vida/internal/pagination"
)

// transactionService handles transaction-related business logic. Transaction
// mutations do not push budget recomputes; the budget refresher's periodic
// pass is the backstop that folds new spending into spent_amount.
type transactionService struct {
	db       *gorm.DB
	accounts AccountServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accounts AccountServicer) TransactionServicer {
	return &transactionService{db: db, accounts: accounts}
}

// CreateTransaction records a new transaction. Referenced accounts and
// budgets must belong to the user, and a confirmed income/expense adjusts the
// account's current balance.
func (s *transactionService) CreateTransaction(
	userID uint,
	accountID, budgetID *uint,
	transactionType models.TransactionType,
	amount int64,
	category, description string,
	date time.Time,
	isConfirmed bool,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	switch transactionType {
	case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeTransfer:
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if date.IsZero() {
		date = time.Now()
	}

	if accountID != nil {
		if _, err := s.accounts.GetAccountByID(userID, *accountID); err != nil {
			return nil, err
		}
	}
	if budgetID != nil {
		var count int64
		if err := s.db.Model(&models.Budget{}).
			Where("id = ? AND user_id = ?", *budgetID, userID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrBudgetNotFound
		}
	}

	transaction := &models.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		BudgetID:    budgetID,
		Type:        transactionType,
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
		IsConfirmed: isConfirmed,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if isConfirmed && accountID != nil {
		if err := s.accounts.AdjustBalance(*accountID, transactionType, amount); err != nil {
			return nil, err
		}
	}

	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, most recent first.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// applyTransactionFilters applies the optional filters to a transaction query.
func applyTransactionFilters(q *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		q = q.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	if filter.AccountID != nil {
		q = q.Where("account_id = ?", *filter.AccountID)
	}
	if filter.BudgetID != nil {
		q = q.Where("budget_id = ?", *filter.BudgetID)
	}
	return q
}

// GetTransactionByID returns a transaction by ID if it belongs to the user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// ConfirmTransaction marks a pending transaction as confirmed, applying its
// balance effect. Confirming an already-confirmed transaction is a no-op.
func (s *transactionService) ConfirmTransaction(userID, transactionID uint) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.IsConfirmed {
		return transaction, nil
	}

	if err := s.db.Model(transaction).
		Updates(map[string]interface{}{"is_confirmed": true, "updated_at": time.Now()}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transaction.AccountID != nil {
		if err := s.accounts.AdjustBalance(*transaction.AccountID, transaction.Type, transaction.Amount); err != nil {
			return nil, err
		}
	}

	transaction.IsConfirmed = true
	return transaction, nil
}

// DeleteTransaction hard-deletes a transaction, reverting its balance effect
// if it was confirmed. Budgets are not touched here; the next refresh pass
// re-derives spent_amount from the remaining ledger.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrTransactionNotFound.Code {
			return nil
		}
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if transaction.IsConfirmed && transaction.AccountID != nil && transaction.Type != models.TransactionTypeTransfer {
		// Reverse the original balance effect.
		reverse := models.TransactionTypeIncome
		if transaction.Type == models.TransactionTypeIncome {
			reverse = models.TransactionTypeExpense
		}
		return s.accounts.AdjustBalance(*transaction.AccountID, reverse, transaction.Amount)
	}
	return nil
}
