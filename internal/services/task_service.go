package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "vida/internal/errors"
	"vida/internal/models"
	"vida/internal/pagination"
)

// taskService handles task-related business logic.
type taskService struct {
	db *gorm.DB
}

// NewTaskService creates a new TaskServicer.
func NewTaskService(db *gorm.DB) TaskServicer {
	return &taskService{db: db}
}

// CreateTask schedules a new task. New tasks start pending; a referenced
// origin routine must belong to the user.
func (s *taskService) CreateTask(
	userID uint,
	routineID *uint,
	title, description string,
	startTime, endTime time.Time,
	allowOverlap bool,
	priority models.TaskPriority,
) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.ErrInvalidTaskPriority
	}
	if !endTime.After(startTime) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_time must be after start_time")
	}

	if routineID != nil {
		var count int64
		if err := s.db.Model(&models.Routine{}).
			Where("id = ? AND user_id = ?", *routineID, userID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrRoutineNotFound
		}
	}

	task := &models.Task{
		UserID:          userID,
		OriginRoutineID: routineID,
		Title:           title,
		Description:     description,
		StartTime:       startTime,
		EndTime:         endTime,
		AllowOverlap:    allowOverlap,
		Status:          models.TaskStatusPending,
		Priority:        priority,
	}

	if err := s.db.Create(task).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return task, nil
}

// GetUserTasks retrieves a paginated, filtered list of the user's tasks in
// start-time order.
func (s *taskService) GetUserTasks(userID uint, page pagination.PageRequest, filter TaskFilter) (*pagination.PageResponse[models.Task], error) {
	page.Defaults()

	base := s.db.Model(&models.Task{}).Where("user_id = ?", userID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		base = base.Where("priority = ?", *filter.Priority)
	}
	if filter.Date != nil {
		dayStart, dayEnd := dayBounds(*filter.Date)
		base = base.Where("start_time >= ? AND start_time < ?", dayStart, dayEnd)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var tasks []models.Task
	if err := base.Order("start_time ASC").Scopes(pagination.Paginate(page)).Find(&tasks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(tasks, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTodayTasks returns the user's pending tasks for the day containing now,
// ordered by priority (high first) and then start time.
func (s *taskService) GetTodayTasks(userID uint, now time.Time) ([]models.Task, error) {
	dayStart, dayEnd := dayBounds(now)

	var tasks []models.Task
	err := s.db.
		Where("user_id = ? AND status = ?", userID, models.TaskStatusPending).
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Order("CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, start_time ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tasks, nil
}

// GetTaskByID returns a task by ID if it belongs to the user.
func (s *taskService) GetTaskByID(userID, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &task, nil
}

// UpdateTask applies a partial update. A missing task is a no-op.
func (s *taskService) UpdateTask(userID, taskID uint, update TaskUpdate) error {
	updates := make(map[string]interface{})
	if update.Title.Set {
		title := strings.TrimSpace(update.Title.Value)
		if title == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
		}
		updates["title"] = title
	}
	if update.Description.Set {
		updates["description"] = update.Description.Value
	}
	if update.StartTime.Set {
		updates["start_time"] = update.StartTime.Value
	}
	if update.EndTime.Set {
		updates["end_time"] = update.EndTime.Value
	}
	if update.Status.Set {
		if !update.Status.Value.Valid() {
			return apperrors.ErrInvalidTaskStatus
		}
		updates["status"] = update.Status.Value
	}
	if update.Priority.Set {
		if !update.Priority.Value.Valid() {
			return apperrors.ErrInvalidTaskPriority
		}
		updates["priority"] = update.Priority.Value
	}
	if update.AllowOverlap.Set {
		updates["allow_overlap"] = update.AllowOverlap.Value
	}

	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()

	if err := s.db.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CompleteTask marks a task completed. Completing an already-completed task
// is a no-op.
func (s *taskService) CompleteTask(userID, taskID uint) (*models.Task, error) {
	task, err := s.GetTaskByID(userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == models.TaskStatusCompleted {
		return task, nil
	}

	if err := s.db.Model(task).
		Updates(map[string]interface{}{"status": models.TaskStatusCompleted, "updated_at": time.Now()}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	task.Status = models.TaskStatusCompleted
	return task, nil
}

// DeleteTask hard-deletes a task. A missing task is a no-op.
func (s *taskService) DeleteTask(userID, taskID uint) error {
	if err := s.db.Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&models.Task{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetTaskStats summarizes the user's task counts as of now.
func (s *taskService) GetTaskStats(userID uint, now time.Time) (*TaskStats, error) {
	stats := &TaskStats{}

	if err := s.db.Model(&models.Task{}).
		Where("user_id = ?", userID).
		Count(&stats.Total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Task{}).
		Where("user_id = ? AND status = ?", userID, models.TaskStatusCompleted).
		Count(&stats.Completed).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	dayStart, dayEnd := dayBounds(now)
	if err := s.db.Model(&models.Task{}).
		Where("user_id = ? AND status = ?", userID, models.TaskStatusPending).
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Count(&stats.TodayPending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}

// dayBounds returns the half-open [start, end) interval for the calendar day
// containing t, in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
