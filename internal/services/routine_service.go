package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "vida/internal/errors"
	"vida/internal/models"
	"vida/internal/pagination"
)

// routineService handles routine and habit-log business logic. Routines are
// the recurring definitions; habit logs record per-day completion against
// them.
type routineService struct {
	db *gorm.DB
}

// NewRoutineService creates a new RoutineServicer.
func NewRoutineService(db *gorm.DB) RoutineServicer {
	return &routineService{db: db}
}

// CreateRoutine creates a new routine. DaysOfWeek is a comma-separated list
// of weekday numbers (0 = Sunday).
func (s *routineService) CreateRoutine(
	userID uint,
	name, daysOfWeek, startTime string,
	durationMin int,
	policy models.ConflictPolicy,
) (*models.Routine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if err := validateDaysOfWeek(daysOfWeek); err != nil {
		return nil, err
	}
	if durationMin <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "duration_min must be greater than zero")
	}
	if policy == "" {
		policy = models.ConflictPolicySkip
	}
	if !policy.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported conflict policy")
	}

	routine := &models.Routine{
		UserID:         userID,
		Name:           name,
		DaysOfWeek:     daysOfWeek,
		StartTime:      startTime,
		DurationMin:    durationMin,
		ConflictPolicy: policy,
		IsActive:       true,
	}

	if err := s.db.Create(routine).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return routine, nil
}

// validateDaysOfWeek checks a comma-separated weekday list. Every entry must
// be a number in [0,6].
func validateDaysOfWeek(daysOfWeek string) error {
	if strings.TrimSpace(daysOfWeek) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "days_of_week is required")
	}
	for _, part := range strings.Split(daysOfWeek, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "days_of_week entries must be weekday numbers 0-6")
		}
	}
	return nil
}

// GetUserRoutines returns a paginated list of the user's routines, most
// recently created first.
func (s *routineService) GetUserRoutines(userID uint, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Routine], error) {
	page.Defaults()

	base := s.db.Model(&models.Routine{}).Where("user_id = ?", userID)
	if activeOnly {
		base = base.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var routines []models.Routine
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&routines).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(routines, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRoutineByID returns a routine by ID if it belongs to the user.
func (s *routineService) GetRoutineByID(userID, routineID uint) (*models.Routine, error) {
	var routine models.Routine
	if err := s.db.Where("id = ? AND user_id = ?", routineID, userID).First(&routine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoutineNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &routine, nil
}

// GetRoutinesForDay returns the user's active routines scheduled for the
// given weekday, in start-time order.
func (s *routineService) GetRoutinesForDay(userID uint, day time.Weekday) ([]models.Routine, error) {
	var routines []models.Routine
	err := s.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("start_time ASC").
		Find(&routines).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Day membership is matched in Go; a LIKE on the comma-separated column
	// would confuse e.g. day 1 with day 21.
	matched := routines[:0]
	for i := range routines {
		if routines[i].RunsOn(day) {
			matched = append(matched, routines[i])
		}
	}
	return matched, nil
}

// UpdateRoutine applies a partial update. A missing routine is a no-op.
func (s *routineService) UpdateRoutine(userID, routineID uint, update RoutineUpdate) error {
	updates := make(map[string]interface{})
	if update.Name.Set {
		name := strings.TrimSpace(update.Name.Value)
		if name == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
		}
		updates["name"] = name
	}
	if update.DaysOfWeek.Set {
		if err := validateDaysOfWeek(update.DaysOfWeek.Value); err != nil {
			return err
		}
		updates["days_of_week"] = update.DaysOfWeek.Value
	}
	if update.StartTime.Set {
		updates["start_time"] = update.StartTime.Value
	}
	if update.DurationMin.Set {
		if update.DurationMin.Value <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "duration_min must be greater than zero")
		}
		updates["duration_min"] = update.DurationMin.Value
	}
	if update.ConflictPolicy.Set {
		if !update.ConflictPolicy.Value.Valid() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported conflict policy")
		}
		updates["conflict_policy"] = update.ConflictPolicy.Value
	}
	if update.IsActive.Set {
		updates["is_active"] = update.IsActive.Value
	}

	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()

	if err := s.db.Model(&models.Routine{}).
		Where("id = ? AND user_id = ?", routineID, userID).
		Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ToggleRoutine flips a routine's active flag and returns the updated row.
func (s *routineService) ToggleRoutine(userID, routineID uint) (*models.Routine, error) {
	routine, err := s.GetRoutineByID(userID, routineID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(routine).
		Updates(map[string]interface{}{"is_active": !routine.IsActive, "updated_at": time.Now()}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	routine.IsActive = !routine.IsActive
	return routine, nil
}

// DeleteRoutine hard-deletes a routine and its habit logs. Tasks spawned from
// it keep existing with their origin reference cleared. A missing routine is
// a no-op; the scoped delete runs first so foreign ids touch nothing.
func (s *routineService) DeleteRoutine(userID, routineID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", routineID, userID).
			Delete(&models.Routine{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("routine_id = ?", routineID).
			Delete(&models.HabitLog{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).
			Where("origin_routine_id = ?", routineID).
			Update("origin_routine_id", nil).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// LogHabit records a routine's completion for a day. Logging the same day
// twice updates the existing entry rather than creating a second one.
func (s *routineService) LogHabit(userID, routineID uint, date string, completed bool, notes string) (*models.HabitLog, error) {
	if _, err := s.GetRoutineByID(userID, routineID); err != nil {
		return nil, err
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD")
	}

	var log models.HabitLog
	err := s.db.Where("routine_id = ? AND date = ?", routineID, date).First(&log).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log = models.HabitLog{
			RoutineID: routineID,
			Date:      date,
			Completed: completed,
			Notes:     notes,
		}
		if err := s.db.Create(&log).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		if err := s.db.Model(&log).
			Updates(map[string]interface{}{"completed": completed, "notes": notes, "updated_at": time.Now()}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		log.Completed = completed
		log.Notes = notes
	}
	return &log, nil
}

// GetHabitsForDate returns the user's routines scheduled for the given date's
// weekday, each joined with its habit log for that day if one exists.
func (s *routineService) GetHabitsForDate(userID uint, date time.Time) ([]HabitEntry, error) {
	routines, err := s.GetRoutinesForDay(userID, date.Weekday())
	if err != nil {
		return nil, err
	}
	if len(routines) == 0 {
		return []HabitEntry{}, nil
	}

	day := date.Format("2006-01-02")
	routineIDs := make([]uint, len(routines))
	for i := range routines {
		routineIDs[i] = routines[i].ID
	}

	var logs []models.HabitLog
	if err := s.db.Where("routine_id IN ? AND date = ?", routineIDs, day).Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byRoutine := make(map[uint]models.HabitLog, len(logs))
	for _, log := range logs {
		byRoutine[log.RoutineID] = log
	}

	entries := make([]HabitEntry, 0, len(routines))
	for _, r := range routines {
		entry := HabitEntry{
			RoutineID:   r.ID,
			RoutineName: r.Name,
			StartTime:   r.StartTime,
			DurationMin: r.DurationMin,
		}
		if log, ok := byRoutine[r.ID]; ok {
			entry.Completed = log.Completed
			entry.Notes = log.Notes
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetStreak counts the consecutive days before asOf on which the routine was
// logged completed, looking back at most 30 days. The current day is not
// counted; an unfinished today does not break a streak.
func (s *routineService) GetStreak(userID, routineID uint, asOf time.Time) (int, error) {
	if _, err := s.GetRoutineByID(userID, routineID); err != nil {
		return 0, err
	}

	var logs []models.HabitLog
	cutoff := asOf.AddDate(0, 0, -30).Format("2006-01-02")
	if err := s.db.
		Where("routine_id = ? AND date >= ?", routineID, cutoff).
		Find(&logs).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	completedOn := make(map[string]bool, len(logs))
	for _, log := range logs {
		completedOn[log.Date] = log.Completed
	}

	streak := 0
	for i := 1; i <= 30; i++ {
		day := asOf.AddDate(0, 0, -i).Format("2006-01-02")
		if !completedOn[day] {
			break
		}
		streak++
	}
	return streak, nil
}
