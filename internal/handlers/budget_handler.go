package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "vida/internal/errors"
	"vida/internal/logger"
	"vida/internal/models"
	"vida/internal/pagination"
	"vida/internal/services"
)

// BudgetTracker starts a periodic spent-amount refresh loop for a user
// session. Satisfied by *services.BudgetRefresher.
type BudgetTracker interface {
	Track(ctx context.Context, userID uint)
}

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	tracker       BudgetTracker
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, tracker BudgetTracker) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, tracker: tracker}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name      string              `json:"name" binding:"required,min=1,max=100"`
	Amount    int64               `json:"amount" binding:"required,gt=0"`
	Period    models.BudgetPeriod `json:"period" binding:"required,budget_period"`
	StartDate time.Time           `json:"start_date" binding:"required"`
	EndDate   *time.Time          `json:"end_date"`
	Category  *string             `json:"category" binding:"omitempty,max=100"`
	AccountID *uint               `json:"account_id"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a new budget; the end date is derived from the period when omitted
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(
		userID, req.Name, req.Amount, req.Period, req.StartDate, req.EndDate, req.Category, req.AccountID,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets for the authenticated user. Listing is
// the load point of the budget screen: active budgets are re-aggregated from
// the ledger first, and the user's periodic refresh session is started.
// @Summary     Get budgets
// @Description Get a paginated list of budgets with freshly recomputed spent amounts
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       active_only query bool   false "Only budgets currently in effect"
// @Param       period      query string false "Filter by period (daily/weekly/monthly/yearly/custom)"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	activeOnly := false
	switch c.Query("active_only") {
	case "", "false":
	case "true":
		activeOnly = true
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "active_only must be 'true' or 'false'"))
		return
	}

	var period *models.BudgetPeriod
	if v := c.Query("period"); v != "" {
		p := models.BudgetPeriod(v)
		if !p.Valid() {
			respondWithError(c, apperrors.ErrInvalidBudgetPeriod)
			return
		}
		period = &p
	}

	// Refresh-on-load: a stale spent_amount here would feed stale progress to
	// the client until the next periodic pass. A failed refresh degrades to
	// the stored values rather than failing the listing.
	if _, err := h.budgetService.RefreshActiveBudgets(userID); err != nil {
		logger.Get().Warnw("budget refresh on load failed", "user_id", userID, "error", err)
	}
	if h.tracker != nil {
		// The session must outlive this request; it ends via Untrack or the
		// refresher's Stop, not with the response.
		h.tracker.Track(context.WithoutCancel(c.Request.Context()), userID)
	}

	result, err := h.budgetService.GetUserBudgets(userID, page, activeOnly, period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Description Get a specific budget by ID
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles a partial update of an existing budget. Keys absent
// from the payload are left untouched; category and end_date accept an
// explicit null to clear the stored value.
// @Summary     Update budget
// @Description Partially update a budget; omitted fields keep their value
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Budget ID"
// @Param       request body map[string]interface{} true "Fields to update"
// @Success     200 {object} MessageResponse "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	update, err := parseBudgetUpdate(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.UpdateBudget(userID, budgetID, update); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget updated successfully"})
}

// parseBudgetUpdate decodes the request body into a BudgetUpdate, keeping
// "key absent" distinct from "key set to null".
func parseBudgetUpdate(c *gin.Context) (services.BudgetUpdate, error) {
	var update services.BudgetUpdate

	body, err := c.GetRawData()
	if err != nil {
		return update, apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "request body must be a JSON object")
	}

	if v, ok := raw["name"]; ok {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "name must be a string")
		}
		update.Name = services.Some(name)
	}
	if v, ok := raw["amount"]; ok {
		var amount int64
		if err := json.Unmarshal(v, &amount); err != nil {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be an integer")
		}
		update.Amount = services.Some(amount)
	}
	if v, ok := raw["category"]; ok {
		var category *string
		if err := json.Unmarshal(v, &category); err != nil {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "category must be a string or null")
		}
		update.Category = services.Some(category)
	}
	if v, ok := raw["period"]; ok {
		var period models.BudgetPeriod
		if err := json.Unmarshal(v, &period); err != nil {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be a string")
		}
		update.Period = services.Some(period)
	}
	if v, ok := raw["start_date"]; ok {
		var startDate time.Time
		if err := json.Unmarshal(v, &startDate); err != nil {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must be an RFC 3339 timestamp")
		}
		update.StartDate = services.Some(startDate)
	}
	if v, ok := raw["end_date"]; ok {
		var endDate *time.Time
		if err := json.Unmarshal(v, &endDate); err != nil {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be an RFC 3339 timestamp or null")
		}
		update.EndDate = services.Some(endDate)
	}
	if v, ok := raw["is_active"]; ok {
		var isActive bool
		if err := json.Unmarshal(v, &isActive); err != nil {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "is_active must be a boolean")
		}
		update.IsActive = services.Some(isActive)
	}

	return update, nil
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Delete a budget; its transactions keep existing with the budget reference cleared
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetBudgetProgress handles retrieving the spending progress for a budget.
// @Summary     Get budget progress
// @Description Get spent, remaining, percentage and status for a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} services.BudgetReport "Budget progress"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/progress [get]
func (h *BudgetHandler) GetBudgetProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Ownership first: recomputes only run against the caller's own budgets.
	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Recompute before reporting so the percentages reflect the ledger as of
	// this request, not the last refresh pass.
	if err := h.budgetService.RecomputeSpent(budgetID); err != nil {
		logger.Get().Warnw("budget recompute on progress read failed", "budget_id", budgetID, "error", err)
	} else if budget, err = h.budgetService.GetBudgetByID(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": services.EvaluateBudget(budget)})
}
