package services

import (
	"time"

	"vida/internal/models"
	"vida/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// AccountServicer defines the contract for finance-account business logic.
type AccountServicer interface {
	CreateAccount(userID uint, name string, accountType models.AccountType, currency string, initialBalance int64) (*models.FinanceAccount, error)
	GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.FinanceAccount], error)
	GetAccountByID(userID, accountID uint) (*models.FinanceAccount, error)
	UpdateAccount(userID, accountID uint, name string, isActive *bool) (*models.FinanceAccount, error)
	DeleteAccount(userID, accountID uint) error
	AdjustBalance(accountID uint, transactionType models.TransactionType, amount int64) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Type      *models.TransactionType
	Category  *string
	AccountID *uint
	BudgetID  *uint
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, accountID, budgetID *uint, transactionType models.TransactionType, amount int64, category, description string, date time.Time, isConfirmed bool) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	ConfirmTransaction(userID, transactionID uint) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// Optional wraps a value that may be omitted from a partial update. It keeps
// "field not supplied" distinct from "field set to its zero value", which
// matters for clearing nullable columns like category and end_date.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns an Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// BudgetUpdate describes a partial update to a budget. Unset fields are left
// untouched; set fields overwrite the stored value. The updated_at column is
// refreshed on any write.
type BudgetUpdate struct {
	Name        Optional[string]
	Amount      Optional[int64]
	SpentAmount Optional[int64]
	Category    Optional[*string]
	Period      Optional[models.BudgetPeriod]
	StartDate   Optional[time.Time]
	EndDate     Optional[*time.Time]
	IsActive    Optional[bool]
}

// TaskFilter holds optional filter parameters for listing tasks.
type TaskFilter struct {
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Date     *time.Time
}

// TaskUpdate describes a partial update to a task; unset fields are left
// untouched.
type TaskUpdate struct {
	Title        Optional[string]
	Description  Optional[string]
	StartTime    Optional[time.Time]
	EndTime      Optional[time.Time]
	Status       Optional[models.TaskStatus]
	Priority     Optional[models.TaskPriority]
	AllowOverlap Optional[bool]
}

// TaskStats summarizes a user's task counts.
type TaskStats struct {
	Total        int64 `json:"total"`
	Completed    int64 `json:"completed"`
	Pending      int64 `json:"pending"`
	TodayPending int64 `json:"today_pending"`
}

// TaskServicer defines the contract for task-related business logic.
type TaskServicer interface {
	CreateTask(userID uint, routineID *uint, title, description string, startTime, endTime time.Time, allowOverlap bool, priority models.TaskPriority) (*models.Task, error)
	GetUserTasks(userID uint, page pagination.PageRequest, filter TaskFilter) (*pagination.PageResponse[models.Task], error)
	GetTodayTasks(userID uint, now time.Time) ([]models.Task, error)
	GetTaskByID(userID, taskID uint) (*models.Task, error)
	UpdateTask(userID, taskID uint, update TaskUpdate) error
	CompleteTask(userID, taskID uint) (*models.Task, error)
	DeleteTask(userID, taskID uint) error
	GetTaskStats(userID uint, now time.Time) (*TaskStats, error)
}

// RoutineUpdate describes a partial update to a routine.
type RoutineUpdate struct {
	Name           Optional[string]
	DaysOfWeek     Optional[string]
	StartTime      Optional[string]
	DurationMin    Optional[int]
	ConflictPolicy Optional[models.ConflictPolicy]
	IsActive       Optional[bool]
}

// HabitEntry is one routine's completion state for a given day, joined from
// the routine definition and any habit log recorded for that day.
type HabitEntry struct {
	RoutineID   uint   `json:"routine_id"`
	RoutineName string `json:"routine_name"`
	StartTime   string `json:"start_time"`
	DurationMin int    `json:"duration_min"`
	Completed   bool   `json:"completed"`
	Notes       string `json:"notes,omitempty"`
}

// RoutineServicer defines the contract for routine and habit-log business
// logic.
type RoutineServicer interface {
	CreateRoutine(userID uint, name, daysOfWeek, startTime string, durationMin int, policy models.ConflictPolicy) (*models.Routine, error)
	GetUserRoutines(userID uint, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Routine], error)
	GetRoutineByID(userID, routineID uint) (*models.Routine, error)
	GetRoutinesForDay(userID uint, day time.Weekday) ([]models.Routine, error)
	UpdateRoutine(userID, routineID uint, update RoutineUpdate) error
	ToggleRoutine(userID, routineID uint) (*models.Routine, error)
	DeleteRoutine(userID, routineID uint) error
	LogHabit(userID, routineID uint, date string, completed bool, notes string) (*models.HabitLog, error)
	GetHabitsForDate(userID uint, date time.Time) ([]HabitEntry, error)
	GetStreak(userID, routineID uint, asOf time.Time) (int, error)
}

// NoteFilter holds optional filter parameters for listing life notes.
type NoteFilter struct {
	Mood     *string
	FromDate *time.Time
	ToDate   *time.Time
	Search   *string
}

// NoteUpdate describes a partial update to a life note. Mood is nullable and
// can be cleared explicitly.
type NoteUpdate struct {
	Title   Optional[string]
	Content Optional[string]
	Mood    Optional[*string]
}

// MoodCount is one mood's frequency in a user's journal.
type MoodCount struct {
	Mood  string `json:"mood"`
	Count int64  `json:"count"`
}

// NoteServicer defines the contract for life-note business logic.
type NoteServicer interface {
	CreateNote(userID uint, title, content string, mood *string) (*models.LifeNote, error)
	GetUserNotes(userID uint, page pagination.PageRequest, filter NoteFilter) (*pagination.PageResponse[models.LifeNote], error)
	GetNoteByID(userID, noteID uint) (*models.LifeNote, error)
	UpdateNote(userID, noteID uint, update NoteUpdate) error
	DeleteNote(userID, noteID uint) error
	GetMoodStats(userID uint, from, to *time.Time) ([]MoodCount, error)
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID uint, name string, amount int64, period models.BudgetPeriod, startDate time.Time, endDate *time.Time, category *string, accountID *uint) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest, activeOnly bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, update BudgetUpdate) error
	DeleteBudget(userID, budgetID uint) error
	RecomputeSpent(budgetID uint) error
	GetActiveBudgetsForDate(userID uint, asOf time.Time) ([]models.Budget, error)
	RefreshActiveBudgets(userID uint) ([]models.Budget, error)
}
