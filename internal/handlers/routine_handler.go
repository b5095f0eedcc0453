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

// RoutineHandler handles routine and habit-log requests.
type RoutineHandler struct {
	routineService services.RoutineServicer
}

// NewRoutineHandler creates a new RoutineHandler.
func NewRoutineHandler(routineService services.RoutineServicer) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

// CreateRoutineRequest represents the request payload for creating a routine.
type CreateRoutineRequest struct {
	Name           string                `json:"name" binding:"required,min=1,max=100"`
	DaysOfWeek     string                `json:"days_of_week" binding:"required"`
	StartTime      string                `json:"start_time" binding:"required"`
	DurationMin    int                   `json:"duration_min" binding:"required,gt=0"`
	ConflictPolicy models.ConflictPolicy `json:"conflict_policy" binding:"omitempty,conflict_policy"`
}

// UpdateRoutineRequest represents the request payload for updating a routine.
type UpdateRoutineRequest struct {
	Name           *string                `json:"name" binding:"omitempty,min=1,max=100"`
	DaysOfWeek     *string                `json:"days_of_week"`
	StartTime      *string                `json:"start_time"`
	DurationMin    *int                   `json:"duration_min" binding:"omitempty,gt=0"`
	ConflictPolicy *models.ConflictPolicy `json:"conflict_policy" binding:"omitempty,conflict_policy"`
	IsActive       *bool                  `json:"is_active"`
}

// LogHabitRequest represents the request payload for recording a habit log.
type LogHabitRequest struct {
	Date      string `json:"date" binding:"required"`
	Completed bool   `json:"completed"`
	Notes     string `json:"notes" binding:"max=500"`
}

// CreateRoutine handles the creation of a new routine.
// @Summary     Create a routine
// @Description Create a new recurring routine for the authenticated user
// @Tags        routines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRoutineRequest true "Routine details"
// @Success     201 {object} models.Routine "Routine created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /routines [post]
func (h *RoutineHandler) CreateRoutine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	routine, err := h.routineService.CreateRoutine(
		userID, req.Name, req.DaysOfWeek, req.StartTime, req.DurationMin, req.ConflictPolicy,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"routine": routine})
}

// GetRoutines handles listing routines for the authenticated user.
// @Summary     Get routines
// @Description Get a paginated list of routines
// @Tags        routines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       active_only query bool   false "Only active routines"
// @Success     200 {object} pagination.PageResponse[models.Routine] "Paginated routines"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /routines [get]
func (h *RoutineHandler) GetRoutines(c *gin.Context) {
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
	if v := c.Query("active_only"); v != "" {
		switch v {
		case "true":
			activeOnly = true
		case "false":
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "active_only must be true or false"))
			return
		}
	}

	result, err := h.routineService.GetUserRoutines(userID, page, activeOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRoutine handles retrieving a specific routine.
// @Summary     Get routine by ID
// @Description Get a single routine belonging to the authenticated user
// @Tags        routines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Routine ID"
// @Success     200 {object} models.Routine "Routine"
// @Failure     400 {object} ErrorResponse "Invalid routine ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Routine not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /routines/{id} [get]
func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	routineID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	routine, err := h.routineService.GetRoutineByID(userID, routineID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"routine": routine})
}

// UpdateRoutine handles partially updating a routine.
// @Summary     Update a routine
// @Description Update fields of a routine; omitted fields are left unchanged
// @Tags        routines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Routine ID"
// @Param       request body UpdateRoutineRequest true "Fields to update"
// @Success     200 {object} MessageResponse "Routine updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /routines/{id} [put]
func (h *RoutineHandler) UpdateRoutine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	routineID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var update services.RoutineUpdate
	if req.Name != nil {
		update.Name = services.Some(*req.Name)
	}
	if req.DaysOfWeek != nil {
		update.DaysOfWeek = services.Some(*req.DaysOfWeek)
	}
	if req.StartTime != nil {
		update.StartTime = services.Some(*req.StartTime)
	}
	if req.DurationMin != nil {
		update.DurationMin = services.Some(*req.DurationMin)
	}
	if req.ConflictPolicy != nil {
		update.ConflictPolicy = services.Some(*req.ConflictPolicy)
	}
	if req.IsActive != nil {
		update.IsActive = services.Some(*req.IsActive)
	}

	if err := h.routineService.UpdateRoutine(userID, routineID, update); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Routine updated successfully"})
}

// ToggleRoutine handles flipping a routine's active flag.
// @Summary     Toggle a routine
// @Description Flip a routine between active and inactive
// @Tags        routines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Routine ID"
// @Success     200 {object} models.Routine "Toggled routine"
// @Failure     400 {object} ErrorResponse "Invalid routine ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Routine not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /routines/{id}/toggle [post]
func (h *RoutineHandler) ToggleRoutine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	routineID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	routine, err := h.routineService.ToggleRoutine(userID, routineID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"routine": routine})
}

// DeleteRoutine handles deleting a routine.
// @Summary     Delete a routine
// @Description Delete a routine and its habit logs
// @Tags        routines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Routine ID"
// @Success     200 {object} MessageResponse "Routine deleted"
// @Failure     400 {object} ErrorResponse "Invalid routine ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /routines/{id} [delete]
func (h *RoutineHandler) DeleteRoutine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	routineID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.routineService.DeleteRoutine(userID, routineID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Routine deleted successfully"})
}

// LogHabit handles recording a routine's completion for a day.
// @Summary     Log a habit
// @Description Record whether a routine was completed on a given day
// @Tags        routines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int             true "Routine ID"
// @Param       request body LogHabitRequest true "Habit log"
// @Success     200 {object} models.HabitLog "Habit log"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Routine not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /routines/{id}/log [post]
func (h *RoutineHandler) LogHabit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	routineID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LogHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	log, err := h.routineService.LogHabit(userID, routineID, req.Date, req.Completed, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit_log": log})
}

// GetHabitsForDate handles listing the day's routines with their completion
// state.
// @Summary     Get habits for a date
// @Description Get the routines scheduled for a date, joined with their logs
// @Tags        routines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       date query string false "Date (YYYY-MM-DD, default today)"
// @Success     200 {object} map[string][]services.HabitEntry "Habits"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /routines/habits [get]
func (h *RoutineHandler) GetHabitsForDate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	date := time.Now()
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	habits, err := h.routineService.GetHabitsForDate(userID, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

// GetStreak handles reporting a routine's current completion streak.
// @Summary     Get habit streak
// @Description Get the consecutive-day completion streak for a routine
// @Tags        routines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Routine ID"
// @Success     200 {object} map[string]int "Streak"
// @Failure     400 {object} ErrorResponse "Invalid routine ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Routine not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /routines/{id}/streak [get]
func (h *RoutineHandler) GetStreak(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	routineID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	streak, err := h.routineService.GetStreak(userID, routineID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"streak": streak})
}
