package services

import (
	"testing"
	"time"

	"vida/internal/models"
	"vida/internal/pagination"
	"vida/internal/testutil"
)

func TestCreateRoutine(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)

		routine, err := svc.CreateRoutine(user.ID, "Morning run", "1,3,5", "07:00", 45, models.ConflictPolicyOverride)
		testutil.AssertNoError(t, err)

		if routine.ID == 0 {
			t.Fatal("expected non-zero routine ID")
		}
		if !routine.IsActive {
			t.Error("expected new routine to be active")
		}
		if routine.ConflictPolicy != models.ConflictPolicyOverride {
			t.Errorf("expected override policy, got %s", routine.ConflictPolicy)
		}
	})

	t.Run("defaults_to_skip_policy", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)

		routine, err := svc.CreateRoutine(user.ID, "Stretching", "0,6", "09:00", 15, "")
		testutil.AssertNoError(t, err)
		if routine.ConflictPolicy != models.ConflictPolicySkip {
			t.Errorf("expected skip policy, got %s", routine.ConflictPolicy)
		}
	})

	t.Run("rejects_bad_days", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)

		for _, days := range []string{"", "7", "1,lunes", "1,,3"} {
			_, err := svc.CreateRoutine(user.ID, "Bad days", days, "07:00", 30, "")
			testutil.AssertAppError(t, err, "INVALID_INPUT")
		}
	})

	t.Run("rejects_non_positive_duration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateRoutine(user.ID, "Zero", "1", "07:00", 0, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserRoutines(t *testing.T) {
	t.Run("active_only_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestRoutine(t, db, user.ID)
		paused := testutil.CreateTestRoutine(t, db, user.ID)
		_, err := svc.ToggleRoutine(user.ID, paused.ID)
		testutil.AssertNoError(t, err)

		all, err := svc.GetUserRoutines(user.ID, pagination.PageRequest{}, false)
		testutil.AssertNoError(t, err)
		if all.TotalItems != 2 {
			t.Errorf("expected 2 routines, got %d", all.TotalItems)
		}

		active, err := svc.GetUserRoutines(user.ID, pagination.PageRequest{}, true)
		testutil.AssertNoError(t, err)
		if active.TotalItems != 1 {
			t.Errorf("expected 1 active routine, got %d", active.TotalItems)
		}
	})
}

func TestGetRoutinesForDay(t *testing.T) {
	t.Run("matches_exact_day_numbers", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)

		monday, err := svc.CreateRoutine(user.ID, "Monday only", "1", "07:00", 30, "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateRoutine(user.ID, "Weekend", "0,6", "10:00", 60, "")
		testutil.AssertNoError(t, err)

		routines, err := svc.GetRoutinesForDay(user.ID, time.Monday)
		testutil.AssertNoError(t, err)

		if len(routines) != 1 {
			t.Fatalf("expected 1 routine on Monday, got %d", len(routines))
		}
		if routines[0].ID != monday.ID {
			t.Error("expected the Monday routine")
		}
	})

	t.Run("skips_inactive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		_, err := svc.ToggleRoutine(user.ID, routine.ID)
		testutil.AssertNoError(t, err)

		routines, err := svc.GetRoutinesForDay(user.ID, time.Wednesday)
		testutil.AssertNoError(t, err)
		if len(routines) != 0 {
			t.Errorf("expected no routines, got %d", len(routines))
		}
	})
}

func TestUpdateRoutine(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		err := svc.UpdateRoutine(user.ID, routine.ID, RoutineUpdate{
			Name:        Some("Evening walk"),
			DurationMin: Some(20),
		})
		testutil.AssertNoError(t, err)

		updated, err := svc.GetRoutineByID(user.ID, routine.ID)
		testutil.AssertNoError(t, err)
		if updated.Name != "Evening walk" {
			t.Errorf("expected renamed routine, got %q", updated.Name)
		}
		if updated.DurationMin != 20 {
			t.Errorf("expected duration 20, got %d", updated.DurationMin)
		}
		if updated.StartTime != routine.StartTime {
			t.Error("expected start time untouched")
		}
	})

	t.Run("rejects_bad_days", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		err := svc.UpdateRoutine(user.ID, routine.ID, RoutineUpdate{DaysOfWeek: Some("8")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestToggleRoutine(t *testing.T) {
	t.Run("flips_active_flag", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		toggled, err := svc.ToggleRoutine(user.ID, routine.ID)
		testutil.AssertNoError(t, err)
		if toggled.IsActive {
			t.Error("expected routine to be inactive after first toggle")
		}

		toggled, err = svc.ToggleRoutine(user.ID, routine.ID)
		testutil.AssertNoError(t, err)
		if !toggled.IsActive {
			t.Error("expected routine to be active after second toggle")
		}
	})
}

func TestDeleteRoutine(t *testing.T) {
	t.Run("deletes_routine_and_logs_and_detaches_tasks", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		taskSvc := NewTaskService(db)
		user := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		_, err := svc.LogHabit(user.ID, routine.ID, "2024-03-04", true, "")
		testutil.AssertNoError(t, err)
		start := time.Now()
		task, err := taskSvc.CreateTask(user.ID, &routine.ID, "Spawned", "", start, start.Add(time.Hour), false, "")
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteRoutine(user.ID, routine.ID))

		_, err = svc.GetRoutineByID(user.ID, routine.ID)
		testutil.AssertAppError(t, err, "ROUTINE_NOT_FOUND")

		var logCount int64
		db.Model(&models.HabitLog{}).Where("routine_id = ?", routine.ID).Count(&logCount)
		if logCount != 0 {
			t.Errorf("expected habit logs removed, found %d", logCount)
		}

		kept, err := taskSvc.GetTaskByID(user.ID, task.ID)
		testutil.AssertNoError(t, err)
		if kept.OriginRoutineID != nil {
			t.Errorf("expected origin reference cleared, got %v", kept.OriginRoutineID)
		}
	})

	t.Run("foreign_routine_keeps_owner_logs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		_, err := svc.LogHabit(user.ID, routine.ID, "2024-03-04", true, "")
		testutil.AssertNoError(t, err)

		// A foreign delete touches neither the routine nor its logs.
		testutil.AssertNoError(t, svc.DeleteRoutine(other.ID, routine.ID))

		_, err = svc.GetRoutineByID(user.ID, routine.ID)
		testutil.AssertNoError(t, err)
		var logCount int64
		db.Model(&models.HabitLog{}).Where("routine_id = ?", routine.ID).Count(&logCount)
		if logCount != 1 {
			t.Errorf("expected habit log kept, found %d", logCount)
		}
	})
}

func TestLogHabit(t *testing.T) {
	t.Run("creates_then_updates_same_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		first, err := svc.LogHabit(user.ID, routine.ID, "2024-03-04", false, "skipped")
		testutil.AssertNoError(t, err)
		second, err := svc.LogHabit(user.ID, routine.ID, "2024-03-04", true, "done after all")
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Error("expected the same log row to be updated")
		}
		if !second.Completed {
			t.Error("expected log marked completed")
		}

		var count int64
		db.Model(&models.HabitLog{}).Where("routine_id = ?", routine.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected a single log for the day, found %d", count)
		}
	})

	t.Run("rejects_bad_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		_, err := svc.LogHabit(user.ID, routine.ID, "04-03-2024", true, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("foreign_routine_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		_, err := svc.LogHabit(other.ID, routine.ID, "2024-03-04", true, "")
		testutil.AssertAppError(t, err, "ROUTINE_NOT_FOUND")
	})
}

func TestGetHabitsForDate(t *testing.T) {
	t.Run("joins_logs_for_the_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		logged := testutil.CreateTestRoutine(t, db, user.ID)
		unlogged := testutil.CreateTestRoutine(t, db, user.ID)

		date := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC) // a Monday
		_, err := svc.LogHabit(user.ID, logged.ID, "2024-03-04", true, "felt great")
		testutil.AssertNoError(t, err)

		entries, err := svc.GetHabitsForDate(user.ID, date)
		testutil.AssertNoError(t, err)

		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		byID := make(map[uint]HabitEntry, len(entries))
		for _, e := range entries {
			byID[e.RoutineID] = e
		}
		if !byID[logged.ID].Completed {
			t.Error("expected logged routine marked completed")
		}
		if byID[logged.ID].Notes != "felt great" {
			t.Errorf("expected log notes carried over, got %q", byID[logged.ID].Notes)
		}
		if byID[unlogged.ID].Completed {
			t.Error("expected unlogged routine to show not completed")
		}
	})
}

func TestGetStreak(t *testing.T) {
	t.Run("counts_consecutive_completed_days", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		asOf := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
		for _, date := range []string{"2024-03-09", "2024-03-08", "2024-03-07"} {
			_, err := svc.LogHabit(user.ID, routine.ID, date, true, "")
			testutil.AssertNoError(t, err)
		}
		// The gap at 03-05 ends the streak.
		_, err := svc.LogHabit(user.ID, routine.ID, "2024-03-04", true, "")
		testutil.AssertNoError(t, err)

		streak, err := svc.GetStreak(user.ID, routine.ID, asOf)
		testutil.AssertNoError(t, err)
		if streak != 3 {
			t.Errorf("expected streak 3, got %d", streak)
		}
	})

	t.Run("incomplete_day_breaks_streak", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		asOf := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
		_, err := svc.LogHabit(user.ID, routine.ID, "2024-03-09", false, "")
		testutil.AssertNoError(t, err)
		_, err = svc.LogHabit(user.ID, routine.ID, "2024-03-08", true, "")
		testutil.AssertNoError(t, err)

		streak, err := svc.GetStreak(user.ID, routine.ID, asOf)
		testutil.AssertNoError(t, err)
		if streak != 0 {
			t.Errorf("expected streak 0, got %d", streak)
		}
	})

	t.Run("no_logs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRoutineService(db)
		user := testutil.CreateTestUser(t, db)
		routine := testutil.CreateTestRoutine(t, db, user.ID)

		streak, err := svc.GetStreak(user.ID, routine.ID, time.Now())
		testutil.AssertNoError(t, err)
		if streak != 0 {
			t.Errorf("expected streak 0, got %d", streak)
		}
	})
}
