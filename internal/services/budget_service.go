package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "vida/internal/errors"
	"vida/internal/logger"
	"vida/internal/models"
	"vida/internal/pagination"
)

// budgetService handles budget-related business logic: the budget lifecycle,
// period-based end-date derivation, and keeping spent_amount in sync with the
// transaction ledger.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a new budget. For daily/weekly/monthly/yearly periods
// the end date is derived from the start date unless the caller passes an
// explicit override; a custom period keeps whatever end date was supplied,
// including none.
func (s *budgetService) CreateBudget(
	userID uint,
	name string,
	amount int64,
	period models.BudgetPeriod,
	startDate time.Time,
	endDate *time.Time,
	category *string,
	accountID *uint,
) (*models.Budget, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrBudgetNameRequired
	}
	if amount <= 0 {
		return nil, apperrors.ErrBudgetAmountInvalid
	}
	if !period.Valid() {
		return nil, apperrors.ErrInvalidBudgetPeriod
	}

	if accountID != nil {
		var count int64
		if err := s.db.Model(&models.FinanceAccount{}).
			Where("id = ? AND user_id = ?", *accountID, userID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrAccountNotFound
		}
	}

	if endDate == nil {
		if derived, ok := period.EndDate(startDate); ok {
			endDate = &derived
		}
	}

	budget := &models.Budget{
		UserID:      userID,
		AccountID:   accountID,
		Name:        name,
		Amount:      amount,
		SpentAmount: 0,
		Category:    category,
		Period:      period,
		StartDate:   startDate,
		EndDate:     endDate,
		IsActive:    true,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of the user's budgets ordered by
// start date descending, optionally restricted to active budgets or a period.
func (s *budgetService) GetUserBudgets(
	userID uint,
	page pagination.PageRequest,
	activeOnly bool,
	period *models.BudgetPeriod,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if activeOnly {
		base = base.Where("is_active = ?", true)
	}
	if period != nil {
		base = base.Where("period = ?", *period)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Order("start_date DESC").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget applies a partial update. Only supplied fields change and
// updated_at is refreshed on any write. A missing budget is a no-op, not an
// error. No recompute is triggered here; that is the caller's or the
// refresher's responsibility.
func (s *budgetService) UpdateBudget(userID, budgetID uint, update BudgetUpdate) error {
	updates := make(map[string]interface{})
	if update.Name.Set {
		name := strings.TrimSpace(update.Name.Value)
		if name == "" {
			return apperrors.ErrBudgetNameRequired
		}
		updates["name"] = name
	}
	if update.Amount.Set {
		if update.Amount.Value <= 0 {
			return apperrors.ErrBudgetAmountInvalid
		}
		updates["amount"] = update.Amount.Value
	}
	if update.SpentAmount.Set {
		updates["spent_amount"] = update.SpentAmount.Value
	}
	if update.Category.Set {
		updates["category"] = update.Category.Value
	}
	if update.Period.Set {
		if !update.Period.Value.Valid() {
			return apperrors.ErrInvalidBudgetPeriod
		}
		updates["period"] = update.Period.Value
	}
	if update.StartDate.Set {
		updates["start_date"] = update.StartDate.Value
	}
	if update.EndDate.Set {
		updates["end_date"] = update.EndDate.Value
	}
	if update.IsActive.Set {
		updates["is_active"] = update.IsActive.Value
	}

	// Changing the period or start date re-derives the end date, unless the
	// caller set one explicitly in the same update.
	if (update.Period.Set || update.StartDate.Set) && !update.EndDate.Set {
		var current models.Budget
		if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		period := current.Period
		if update.Period.Set {
			period = update.Period.Value
		}
		startDate := current.StartDate
		if update.StartDate.Set {
			startDate = update.StartDate.Value
		}
		if derived, ok := period.EndDate(startDate); ok {
			updates["end_date"] = &derived
		}
	}

	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()

	if err := s.db.Model(&models.Budget{}).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteBudget hard-deletes a budget. Transactions that referenced it keep
// existing with budget_id cleared; a missing budget is a no-op. The scoped
// delete runs first: attributions are only cleared once the delete proves
// the budget belonged to the caller.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", budgetID, userID).
			Delete(&models.Budget{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Transaction{}).
			Where("budget_id = ?", budgetID).
			Update("budget_id", nil).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RecomputeSpent re-derives spent_amount as the sum of confirmed expense
// transactions attributed to the budget. With no matching transactions the
// result is zero. The operation is idempotent and safe to race with
// transaction writes; the periodic refresh pass corrects any staleness.
func (s *budgetService) RecomputeSpent(budgetID uint) error {
	var spent int64
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("budget_id = ? AND type = ? AND is_confirmed = ?",
			budgetID, models.TransactionTypeExpense, true).
		Scan(&spent).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&models.Budget{}).
		Where("id = ?", budgetID).
		Updates(map[string]interface{}{"spent_amount": spent, "updated_at": time.Now()}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetActiveBudgetsForDate returns the budgets currently in effect as of the
// given date: active, started on or before it, and not yet ended (an unset
// end date never expires). This is the authoritative "currently in effect"
// query used by the refresher and progress views.
func (s *budgetService) GetActiveBudgetsForDate(userID uint, asOf time.Time) ([]models.Budget, error) {
	var budgets []models.Budget
	err := s.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("start_date <= ?", asOf).
		Where("end_date IS NULL OR end_date >= ?", asOf).
		Order("period, category").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// RefreshActiveBudgets recomputes spent_amount for every active budget of the
// user and returns the refreshed list. A failure on one budget is logged and
// does not abort the pass for the rest.
func (s *budgetService) RefreshActiveBudgets(userID uint) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := s.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("start_date DESC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range budgets {
		if err := s.RecomputeSpent(budgets[i].ID); err != nil {
			logger.Get().Warnw("budget recompute failed",
				"budget_id", budgets[i].ID,
				"user_id", userID,
				"error", err,
			)
		}
	}

	// Re-fetch so the returned list reflects the refreshed amounts.
	var refreshed []models.Budget
	if err := s.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("start_date DESC").
		Find(&refreshed).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return refreshed, nil
}
