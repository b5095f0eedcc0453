package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func (app *testApp) createRoutine(t *testing.T, token, name, daysOfWeek string) float64 {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"days_of_week":%q,"start_time":"07:00","duration_min":30}`, name, daysOfWeek)
	rec := app.request("POST", "/api/v1/routines", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create routine failed: %d %s", rec.Code, rec.Body.String())
	}
	routine := parseJSON(t, rec)["routine"].(map[string]interface{})
	return routine["id"].(float64)
}

func TestPlannerFlow_TaskLifecycle(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "planner@test.com", "password123")

	// Anchored mid-day so the task unambiguously falls on today's agenda.
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
	body := fmt.Sprintf(`{"title":"Pagar cuentas","start_time":%q,"end_time":%q,"priority":"high"}`,
		start.Format(time.RFC3339), start.Add(30*time.Minute).Format(time.RFC3339))
	rec := app.request("POST", "/api/v1/tasks", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task failed: %d %s", rec.Code, rec.Body.String())
	}
	task := parseJSON(t, rec)["task"].(map[string]interface{})
	taskID := task["id"].(float64)
	if task["status"] != "pending" {
		t.Errorf("expected pending task, got %v", task["status"])
	}

	// Stats see one pending task.
	rec = app.request("GET", "/api/v1/tasks/stats", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats failed: %d %s", rec.Code, rec.Body.String())
	}
	stats := parseJSON(t, rec)["stats"].(map[string]interface{})
	if stats["pending"].(float64) != 1 {
		t.Errorf("expected 1 pending, got %v", stats["pending"])
	}

	// Complete it and re-check.
	rec = app.request("POST", fmt.Sprintf("/api/v1/tasks/%.0f/complete", taskID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/tasks/stats", "", token)
	stats = parseJSON(t, rec)["stats"].(map[string]interface{})
	if stats["completed"].(float64) != 1 {
		t.Errorf("expected 1 completed, got %v", stats["completed"])
	}
	if stats["pending"].(float64) != 0 {
		t.Errorf("expected 0 pending, got %v", stats["pending"])
	}

	// A completed task leaves the today agenda.
	rec = app.request("GET", "/api/v1/tasks/today", "", token)
	tasks := parseJSON(t, rec)["tasks"].([]interface{})
	if len(tasks) != 0 {
		t.Errorf("expected empty agenda, got %d tasks", len(tasks))
	}
}

func TestPlannerFlow_RoutineHabitsAndStreak(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "habits@test.com", "password123")

	routineID := app.createRoutine(t, token, "Meditar", "0,1,2,3,4,5,6")

	// Log yesterday and the day before as completed.
	for _, daysAgo := range []int{1, 2} {
		date := time.Now().AddDate(0, 0, -daysAgo).Format("2006-01-02")
		body := fmt.Sprintf(`{"date":%q,"completed":true}`, date)
		rec := app.request("POST", fmt.Sprintf("/api/v1/routines/%.0f/log", routineID), body, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("log habit failed: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := app.request("GET", fmt.Sprintf("/api/v1/routines/%.0f/streak", routineID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("streak failed: %d %s", rec.Code, rec.Body.String())
	}
	if streak := parseJSON(t, rec)["streak"].(float64); streak != 2 {
		t.Errorf("expected streak 2, got %v", streak)
	}

	// Today's habit list shows the routine, not yet completed today.
	rec = app.request("GET", "/api/v1/routines/habits", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("habits failed: %d %s", rec.Code, rec.Body.String())
	}
	habits := parseJSON(t, rec)["habits"].([]interface{})
	if len(habits) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(habits))
	}
	if habits[0].(map[string]interface{})["completed"] != false {
		t.Error("expected today's habit not completed yet")
	}

	// Toggling the routine off removes it from the habit list.
	rec = app.request("POST", fmt.Sprintf("/api/v1/routines/%.0f/toggle", routineID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/routines/habits", "", token)
	habits = parseJSON(t, rec)["habits"].([]interface{})
	if len(habits) != 0 {
		t.Errorf("expected no habits after deactivation, got %d", len(habits))
	}
}

func TestPlannerFlow_NotesAndMoodStats(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "journal@test.com", "password123")

	for _, mood := range []string{"happy", "happy", "sad"} {
		body := fmt.Sprintf(`{"content":"entrada del diario","mood":%q}`, mood)
		rec := app.request("POST", "/api/v1/notes", body, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create note failed: %d %s", rec.Code, rec.Body.String())
		}
	}
	rec := app.request("POST", "/api/v1/notes", `{"content":"sin animo registrado"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create note failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/notes/stats/moods", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("mood stats failed: %d %s", rec.Code, rec.Body.String())
	}
	moods := parseJSON(t, rec)["moods"].([]interface{})
	if len(moods) != 2 {
		t.Fatalf("expected 2 moods, got %d", len(moods))
	}
	top := moods[0].(map[string]interface{})
	if top["mood"] != "happy" || top["count"].(float64) != 2 {
		t.Errorf("expected happy x2 first, got %v", top)
	}

	// Filtering by mood narrows the list.
	rec = app.request("GET", "/api/v1/notes?mood=sad", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list notes failed: %d %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total_items"].(float64); total != 1 {
		t.Errorf("expected 1 sad note, got %v", total)
	}
}

func TestPlannerFlow_RoutineDeleteDetachesTasks(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "detach@test.com", "password123")

	routineID := app.createRoutine(t, token, "Gimnasio", "1,3,5")

	start := time.Now().Add(time.Hour)
	body := fmt.Sprintf(`{"title":"Gimnasio","start_time":%q,"end_time":%q,"origin_routine_id":%.0f}`,
		start.Format(time.RFC3339), start.Add(time.Hour).Format(time.RFC3339), routineID)
	rec := app.request("POST", "/api/v1/tasks", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task failed: %d %s", rec.Code, rec.Body.String())
	}
	taskID := parseJSON(t, rec)["task"].(map[string]interface{})["id"].(float64)

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/routines/%.0f", routineID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete routine failed: %d %s", rec.Code, rec.Body.String())
	}

	// The spawned task survives with its origin reference cleared.
	rec = app.request("GET", fmt.Sprintf("/api/v1/tasks/%.0f", taskID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get task failed: %d %s", rec.Code, rec.Body.String())
	}
	task := parseJSON(t, rec)["task"].(map[string]interface{})
	if _, present := task["origin_routine_id"]; present {
		t.Errorf("expected origin reference cleared, got %v", task["origin_routine_id"])
	}
}
