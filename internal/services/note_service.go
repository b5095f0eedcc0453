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

// noteService handles life-note business logic.
type noteService struct {
	db *gorm.DB
}

// NewNoteService creates a new NoteServicer.
func NewNoteService(db *gorm.DB) NoteServicer {
	return &noteService{db: db}
}

// CreateNote writes a new journal entry. Title and mood are optional;
// content is not.
func (s *noteService) CreateNote(userID uint, title, content string, mood *string) (*models.LifeNote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "content is required")
	}

	note := &models.LifeNote{
		UserID:  userID,
		Title:   title,
		Content: content,
		Mood:    mood,
	}

	if err := s.db.Create(note).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return note, nil
}

// GetUserNotes retrieves a paginated, filtered list of the user's notes, most
// recent first. Search matches title and content substrings.
func (s *noteService) GetUserNotes(userID uint, page pagination.PageRequest, filter NoteFilter) (*pagination.PageResponse[models.LifeNote], error) {
	page.Defaults()

	base := s.db.Model(&models.LifeNote{}).Where("user_id = ?", userID)
	if filter.Mood != nil {
		base = base.Where("mood = ?", *filter.Mood)
	}
	if filter.FromDate != nil {
		base = base.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("created_at <= ?", *filter.ToDate)
	}
	if filter.Search != nil {
		pattern := "%" + *filter.Search + "%"
		base = base.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notes []models.LifeNote
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&notes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(notes, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetNoteByID returns a note by ID if it belongs to the user.
func (s *noteService) GetNoteByID(userID, noteID uint) (*models.LifeNote, error) {
	var note models.LifeNote
	if err := s.db.Where("id = ? AND user_id = ?", noteID, userID).First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoteNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &note, nil
}

// UpdateNote applies a partial update. Setting mood to nil clears it. A
// missing note is a no-op.
func (s *noteService) UpdateNote(userID, noteID uint, update NoteUpdate) error {
	updates := make(map[string]interface{})
	if update.Title.Set {
		updates["title"] = update.Title.Value
	}
	if update.Content.Set {
		if strings.TrimSpace(update.Content.Value) == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "content is required")
		}
		updates["content"] = update.Content.Value
	}
	if update.Mood.Set {
		updates["mood"] = update.Mood.Value
	}

	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()

	if err := s.db.Model(&models.LifeNote{}).
		Where("id = ? AND user_id = ?", noteID, userID).
		Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteNote hard-deletes a note. A missing note is a no-op.
func (s *noteService) DeleteNote(userID, noteID uint) error {
	if err := s.db.Where("id = ? AND user_id = ?", noteID, userID).
		Delete(&models.LifeNote{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetMoodStats returns mood frequencies over the user's journal, most common
// first, optionally restricted to a date range.
func (s *noteService) GetMoodStats(userID uint, from, to *time.Time) ([]MoodCount, error) {
	base := s.db.Model(&models.LifeNote{}).
		Where("user_id = ? AND mood IS NOT NULL", userID)
	if from != nil {
		base = base.Where("created_at >= ?", *from)
	}
	if to != nil {
		base = base.Where("created_at <= ?", *to)
	}

	var stats []MoodCount
	err := base.
		Select("mood, COUNT(*) as count").
		Group("mood").
		Order("count DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return stats, nil
}
