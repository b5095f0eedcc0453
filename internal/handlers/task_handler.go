package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "vida/internal/errors"
	"vida/internal/models"
	"vida/internal/pagination"
	"vida/internal/services"
)

// TaskHandler handles task requests.
type TaskHandler struct {
	taskService services.TaskServicer
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService services.TaskServicer) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents the request payload for creating a task.
type CreateTaskRequest struct {
	Title           string              `json:"title" binding:"required,min=1,max=200"`
	Description     string              `json:"description" binding:"max=1000"`
	StartTime       time.Time           `json:"start_time" binding:"required"`
	EndTime         time.Time           `json:"end_time" binding:"required"`
	AllowOverlap    bool                `json:"allow_overlap"`
	Priority        models.TaskPriority `json:"priority" binding:"omitempty,task_priority"`
	OriginRoutineID *uint               `json:"origin_routine_id"`
}

// UpdateTaskRequest represents the request payload for updating a task.
// Pointer fields distinguish omitted values from zero values.
type UpdateTaskRequest struct {
	Title        *string              `json:"title" binding:"omitempty,min=1,max=200"`
	Description  *string              `json:"description" binding:"omitempty,max=1000"`
	StartTime    *time.Time           `json:"start_time"`
	EndTime      *time.Time           `json:"end_time"`
	Status       *models.TaskStatus   `json:"status" binding:"omitempty,task_status"`
	Priority     *models.TaskPriority `json:"priority" binding:"omitempty,task_priority"`
	AllowOverlap *bool                `json:"allow_overlap"`
}

// CreateTask handles the creation of a new task.
// @Summary     Create a task
// @Description Schedule a new task for the authenticated user
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTaskRequest true "Task details"
// @Success     201 {object} models.Task "Task created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Origin routine not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	task, err := h.taskService.CreateTask(
		userID, req.OriginRoutineID, req.Title, req.Description,
		req.StartTime, req.EndTime, req.AllowOverlap, req.Priority,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// GetTasks handles listing tasks for the authenticated user.
// @Summary     Get tasks
// @Description Get a paginated, filtered list of tasks
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       status    query string false "Filter by status (pending/completed/cancelled)"
// @Param       priority  query string false "Filter by priority (low/medium/high)"
// @Param       date      query string false "Filter by calendar day (RFC3339)"
// @Success     200 {object} pagination.PageResponse[models.Task] "Paginated tasks"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks [get]
func (h *TaskHandler) GetTasks(c *gin.Context) {
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

	filter, err := parseTaskFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.taskService.GetUserTasks(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// parseTaskFilter builds a TaskFilter from the request's query parameters.
func parseTaskFilter(c *gin.Context) (services.TaskFilter, error) {
	var filter services.TaskFilter

	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		if !status.Valid() {
			return filter, apperrors.ErrInvalidTaskStatus
		}
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TaskPriority(v)
		if !priority.Valid() {
			return filter, apperrors.ErrInvalidTaskPriority
		}
		filter.Priority = &priority
	}
	if v := c.Query("date"); v != "" {
		date, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be RFC3339")
		}
		filter.Date = &date
	}
	return filter, nil
}

// GetTodayTasks handles listing the day's pending tasks in agenda order.
// @Summary     Get today's tasks
// @Description Get pending tasks for today, highest priority first
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.Task "Today's tasks"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks/today [get]
func (h *TaskHandler) GetTodayTasks(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tasks, err := h.taskService.GetTodayTasks(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask handles retrieving a specific task.
// @Summary     Get task by ID
// @Description Get a single task belonging to the authenticated user
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Task ID"
// @Success     200 {object} models.Task "Task"
// @Failure     400 {object} ErrorResponse "Invalid task ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Task not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	taskID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	task, err := h.taskService.GetTaskByID(userID, taskID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// UpdateTask handles partially updating a task.
// @Summary     Update a task
// @Description Update fields of a task; omitted fields are left unchanged
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Task ID"
// @Param       request body UpdateTaskRequest true "Fields to update"
// @Success     200 {object} MessageResponse "Task updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	taskID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var update services.TaskUpdate
	if req.Title != nil {
		update.Title = services.Some(*req.Title)
	}
	if req.Description != nil {
		update.Description = services.Some(*req.Description)
	}
	if req.StartTime != nil {
		update.StartTime = services.Some(*req.StartTime)
	}
	if req.EndTime != nil {
		update.EndTime = services.Some(*req.EndTime)
	}
	if req.Status != nil {
		update.Status = services.Some(*req.Status)
	}
	if req.Priority != nil {
		update.Priority = services.Some(*req.Priority)
	}
	if req.AllowOverlap != nil {
		update.AllowOverlap = services.Some(*req.AllowOverlap)
	}

	if err := h.taskService.UpdateTask(userID, taskID, update); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully"})
}

// CompleteTask handles marking a task as completed.
// @Summary     Complete a task
// @Description Mark a task as completed
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Task ID"
// @Success     200 {object} models.Task "Completed task"
// @Failure     400 {object} ErrorResponse "Invalid task ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Task not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks/{id}/complete [post]
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	taskID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	task, err := h.taskService.CompleteTask(userID, taskID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// DeleteTask handles deleting a task.
// @Summary     Delete a task
// @Description Delete a task belonging to the authenticated user
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Task ID"
// @Success     200 {object} MessageResponse "Task deleted"
// @Failure     400 {object} ErrorResponse "Invalid task ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	taskID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.taskService.DeleteTask(userID, taskID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// GetTaskStats handles summarizing the user's task counts.
// @Summary     Get task stats
// @Description Get total/completed/pending counts plus today's pending tasks
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.TaskStats "Task stats"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks/stats [get]
func (h *TaskHandler) GetTaskStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.taskService.GetTaskStats(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
