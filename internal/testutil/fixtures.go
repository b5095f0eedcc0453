package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"vida/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Name:     fmt.Sprintf("Test User %d", n),
		Email:    fmt.Sprintf("user%d@test.com", n),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a bank account with the given balance (in minor units).
func CreateTestAccount(t *testing.T, db *gorm.DB, userID uint, balance int64) *models.FinanceAccount {
	t.Helper()

	account := &models.FinanceAccount{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Account %d", nextID()),
		Type:           models.AccountTypeBankAccount,
		Currency:       "CLP",
		InitialBalance: balance,
		CurrentBalance: balance,
		IsActive:       true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestBudget creates an active monthly budget with a limit of 100000.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID uint) *models.Budget {
	t.Helper()

	start := time.Now().Truncate(24 * time.Hour)
	end := start.AddDate(0, 1, 0)
	budget := &models.Budget{
		UserID:    userID,
		Name:      fmt.Sprintf("Test Budget %d", nextID()),
		Amount:    100000,
		Period:    models.BudgetPeriodMonthly,
		StartDate: start,
		EndDate:   &end,
		IsActive:  true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestExpense creates a confirmed expense transaction attributed to a budget.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID uint, budgetID *uint, amount int64) *models.Transaction {
	t.Helper()
	return CreateTestTransaction(t, db, userID, budgetID, models.TransactionTypeExpense, amount, true)
}

// CreateTestRoutine creates an active daily routine at 08:00 for 30 minutes.
func CreateTestRoutine(t *testing.T, db *gorm.DB, userID uint) *models.Routine {
	t.Helper()

	routine := &models.Routine{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Routine %d", nextID()),
		DaysOfWeek:     "0,1,2,3,4,5,6",
		StartTime:      "08:00",
		DurationMin:    30,
		ConflictPolicy: models.ConflictPolicySkip,
		IsActive:       true,
	}
	if err := db.Create(routine).Error; err != nil {
		t.Fatalf("failed to create test routine: %v", err)
	}
	return routine
}

// CreateTestTask creates a pending medium-priority task starting at the given time.
func CreateTestTask(t *testing.T, db *gorm.DB, userID uint, start time.Time) *models.Task {
	t.Helper()

	task := &models.Task{
		UserID:    userID,
		Title:     fmt.Sprintf("Test Task %d", nextID()),
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    models.TaskStatusPending,
		Priority:  models.TaskPriorityMedium,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateTestNote creates a journal note with the given mood (nil for none).
func CreateTestNote(t *testing.T, db *gorm.DB, userID uint, mood *string) *models.LifeNote {
	t.Helper()

	note := &models.LifeNote{
		UserID:  userID,
		Title:   fmt.Sprintf("Test Note %d", nextID()),
		Content: "test content",
		Mood:    mood,
	}
	if err := db.Create(note).Error; err != nil {
		t.Fatalf("failed to create test note: %v", err)
	}
	return note
}

// CreateTestTransaction creates a transaction of the given type and amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, budgetID *uint, txType models.TransactionType, amount int64, confirmed bool) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		BudgetID:    budgetID,
		Type:        txType,
		Amount:      amount,
		Category:    "general",
		Date:        time.Now(),
		IsConfirmed: confirmed,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
