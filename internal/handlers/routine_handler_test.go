package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "vida/internal/errors"
	"vida/internal/models"
	"vida/internal/pagination"
	"vida/internal/services"
)

// --- mock routine service ---

type mockRoutineService struct {
	createRoutineFn    func(userID uint, name, daysOfWeek, startTime string, durationMin int, policy models.ConflictPolicy) (*models.Routine, error)
	getUserRoutinesFn  func(userID uint, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Routine], error)
	getRoutineByIDFn   func(userID, routineID uint) (*models.Routine, error)
	getRoutinesDayFn   func(userID uint, day time.Weekday) ([]models.Routine, error)
	updateRoutineFn    func(userID, routineID uint, update services.RoutineUpdate) error
	toggleRoutineFn    func(userID, routineID uint) (*models.Routine, error)
	deleteRoutineFn    func(userID, routineID uint) error
	logHabitFn         func(userID, routineID uint, date string, completed bool, notes string) (*models.HabitLog, error)
	getHabitsForDateFn func(userID uint, date time.Time) ([]services.HabitEntry, error)
	getStreakFn        func(userID, routineID uint, asOf time.Time) (int, error)
}

func (m *mockRoutineService) CreateRoutine(userID uint, name, daysOfWeek, startTime string, durationMin int, policy models.ConflictPolicy) (*models.Routine, error) {
	if m.createRoutineFn != nil {
		return m.createRoutineFn(userID, name, daysOfWeek, startTime, durationMin, policy)
	}
	return &models.Routine{}, nil
}

func (m *mockRoutineService) GetUserRoutines(userID uint, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Routine], error) {
	if m.getUserRoutinesFn != nil {
		return m.getUserRoutinesFn(userID, page, activeOnly)
	}
	resp := pagination.NewPageResponse([]models.Routine{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockRoutineService) GetRoutineByID(userID, routineID uint) (*models.Routine, error) {
	if m.getRoutineByIDFn != nil {
		return m.getRoutineByIDFn(userID, routineID)
	}
	return &models.Routine{}, nil
}

func (m *mockRoutineService) GetRoutinesForDay(userID uint, day time.Weekday) ([]models.Routine, error) {
	if m.getRoutinesDayFn != nil {
		return m.getRoutinesDayFn(userID, day)
	}
	return []models.Routine{}, nil
}

func (m *mockRoutineService) UpdateRoutine(userID, routineID uint, update services.RoutineUpdate) error {
	if m.updateRoutineFn != nil {
		return m.updateRoutineFn(userID, routineID, update)
	}
	return nil
}

func (m *mockRoutineService) ToggleRoutine(userID, routineID uint) (*models.Routine, error) {
	if m.toggleRoutineFn != nil {
		return m.toggleRoutineFn(userID, routineID)
	}
	return &models.Routine{}, nil
}

func (m *mockRoutineService) DeleteRoutine(userID, routineID uint) error {
	if m.deleteRoutineFn != nil {
		return m.deleteRoutineFn(userID, routineID)
	}
	return nil
}

func (m *mockRoutineService) LogHabit(userID, routineID uint, date string, completed bool, notes string) (*models.HabitLog, error) {
	if m.logHabitFn != nil {
		return m.logHabitFn(userID, routineID, date, completed, notes)
	}
	return &models.HabitLog{}, nil
}

func (m *mockRoutineService) GetHabitsForDate(userID uint, date time.Time) ([]services.HabitEntry, error) {
	if m.getHabitsForDateFn != nil {
		return m.getHabitsForDateFn(userID, date)
	}
	return []services.HabitEntry{}, nil
}

func (m *mockRoutineService) GetStreak(userID, routineID uint, asOf time.Time) (int, error) {
	if m.getStreakFn != nil {
		return m.getStreakFn(userID, routineID, asOf)
	}
	return 0, nil
}

var _ services.RoutineServicer = (*mockRoutineService)(nil)

func setupRoutineRouter(handler *RoutineHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/routines", handler.CreateRoutine)
	auth.GET("/routines", handler.GetRoutines)
	auth.GET("/routines/habits", handler.GetHabitsForDate)
	auth.GET("/routines/:id", handler.GetRoutine)
	auth.PUT("/routines/:id", handler.UpdateRoutine)
	auth.POST("/routines/:id/toggle", handler.ToggleRoutine)
	auth.POST("/routines/:id/log", handler.LogHabit)
	auth.GET("/routines/:id/streak", handler.GetStreak)
	auth.DELETE("/routines/:id", handler.DeleteRoutine)
	return r
}

func TestRoutineHandler_CreateRoutine(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockRoutineService{
			createRoutineFn: func(_ uint, name, daysOfWeek, startTime string, durationMin int, policy models.ConflictPolicy) (*models.Routine, error) {
				return &models.Routine{
					Base:           models.Base{ID: 1},
					Name:           name,
					DaysOfWeek:     daysOfWeek,
					StartTime:      startTime,
					DurationMin:    durationMin,
					ConflictPolicy: policy,
					IsActive:       true,
				}, nil
			},
		}
		handler := NewRoutineHandler(svc)
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "POST", "/routines",
			`{"name":"Correr","days_of_week":"1,3,5","start_time":"07:00","duration_min":45,"conflict_policy":"override"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		routine := result["routine"].(map[string]interface{})
		if routine["name"] != "Correr" {
			t.Errorf("expected Correr, got %v", routine["name"])
		}
		if routine["conflict_policy"] != "override" {
			t.Errorf("expected override policy, got %v", routine["conflict_policy"])
		}
	})

	t.Run("returns 400 on unknown conflict policy", func(t *testing.T) {
		handler := NewRoutineHandler(&mockRoutineService{})
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "POST", "/routines",
			`{"name":"Correr","days_of_week":"1","start_time":"07:00","duration_min":45,"conflict_policy":"merge"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on non-positive duration", func(t *testing.T) {
		handler := NewRoutineHandler(&mockRoutineService{})
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "POST", "/routines",
			`{"name":"Correr","days_of_week":"1","start_time":"07:00","duration_min":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRoutineHandler_GetRoutines(t *testing.T) {
	t.Run("passes active_only to the service", func(t *testing.T) {
		var gotActiveOnly bool
		svc := &mockRoutineService{
			getUserRoutinesFn: func(_ uint, _ pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Routine], error) {
				gotActiveOnly = activeOnly
				resp := pagination.NewPageResponse([]models.Routine{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewRoutineHandler(svc)
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "GET", "/routines?active_only=true", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !gotActiveOnly {
			t.Error("expected active_only to reach the service")
		}
	})

	t.Run("returns 400 on bad active_only", func(t *testing.T) {
		handler := NewRoutineHandler(&mockRoutineService{})
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "GET", "/routines?active_only=yes", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRoutineHandler_ToggleRoutine(t *testing.T) {
	t.Run("returns the toggled routine", func(t *testing.T) {
		svc := &mockRoutineService{
			toggleRoutineFn: func(_, routineID uint) (*models.Routine, error) {
				return &models.Routine{Base: models.Base{ID: routineID}, IsActive: false}, nil
			},
		}
		handler := NewRoutineHandler(svc)
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "POST", "/routines/3/toggle", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		routine := result["routine"].(map[string]interface{})
		if routine["is_active"] != false {
			t.Errorf("expected inactive routine, got %v", routine["is_active"])
		}
	})

	t.Run("returns 404 when routine not found", func(t *testing.T) {
		svc := &mockRoutineService{
			toggleRoutineFn: func(_, _ uint) (*models.Routine, error) {
				return nil, apperrors.ErrRoutineNotFound
			},
		}
		handler := NewRoutineHandler(svc)
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "POST", "/routines/99/toggle", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ROUTINE_NOT_FOUND")
	})
}

func TestRoutineHandler_LogHabit(t *testing.T) {
	t.Run("returns the log", func(t *testing.T) {
		svc := &mockRoutineService{
			logHabitFn: func(_, routineID uint, date string, completed bool, notes string) (*models.HabitLog, error) {
				return &models.HabitLog{
					Base:      models.Base{ID: 1},
					RoutineID: routineID,
					Date:      date,
					Completed: completed,
					Notes:     notes,
				}, nil
			},
		}
		handler := NewRoutineHandler(svc)
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "POST", "/routines/3/log",
			`{"date":"2024-03-04","completed":true,"notes":"felt great"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		log := result["habit_log"].(map[string]interface{})
		if log["date"] != "2024-03-04" {
			t.Errorf("expected 2024-03-04, got %v", log["date"])
		}
		if log["completed"] != true {
			t.Errorf("expected completed, got %v", log["completed"])
		}
	})

	t.Run("returns 400 on missing date", func(t *testing.T) {
		handler := NewRoutineHandler(&mockRoutineService{})
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "POST", "/routines/3/log", `{"completed":true}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRoutineHandler_GetHabitsForDate(t *testing.T) {
	t.Run("returns habit entries", func(t *testing.T) {
		svc := &mockRoutineService{
			getHabitsForDateFn: func(_ uint, date time.Time) ([]services.HabitEntry, error) {
				if date.Format("2006-01-02") != "2024-03-04" {
					t.Errorf("expected 2024-03-04, got %s", date.Format("2006-01-02"))
				}
				return []services.HabitEntry{
					{RoutineID: 1, RoutineName: "Correr", Completed: true},
				}, nil
			},
		}
		handler := NewRoutineHandler(svc)
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "GET", "/routines/habits?date=2024-03-04", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		habits := result["habits"].([]interface{})
		if len(habits) != 1 {
			t.Fatalf("expected 1 habit, got %d", len(habits))
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		handler := NewRoutineHandler(&mockRoutineService{})
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "GET", "/routines/habits?date=04-03-2024", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRoutineHandler_GetStreak(t *testing.T) {
	t.Run("returns the streak", func(t *testing.T) {
		svc := &mockRoutineService{
			getStreakFn: func(_, _ uint, _ time.Time) (int, error) {
				return 4, nil
			},
		}
		handler := NewRoutineHandler(svc)
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "GET", "/routines/3/streak", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["streak"].(float64) != 4 {
			t.Errorf("expected streak 4, got %v", result["streak"])
		}
	})
}

func TestRoutineHandler_DeleteRoutine(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		called := false
		svc := &mockRoutineService{
			deleteRoutineFn: func(_, _ uint) error {
				called = true
				return nil
			},
		}
		handler := NewRoutineHandler(svc)
		r := setupRoutineRouter(handler)

		rec := doRequest(r, "DELETE", "/routines/3", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !called {
			t.Error("expected delete to reach the service")
		}
	})
}
