package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "vida/internal/errors"
	"vida/internal/pagination"
	"vida/internal/services"
)

// NoteHandler handles journal note requests.
type NoteHandler struct {
	noteService services.NoteServicer
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(noteService services.NoteServicer) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// CreateNoteRequest represents the request payload for creating a note.
type CreateNoteRequest struct {
	Title   string  `json:"title" binding:"max=200"`
	Content string  `json:"content" binding:"required,min=1"`
	Mood    *string `json:"mood" binding:"omitempty,max=50"`
}

// CreateNote handles the creation of a new note.
// @Summary     Create a note
// @Description Create a new journal note for the authenticated user
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateNoteRequest true "Note details"
// @Success     201 {object} models.LifeNote "Note created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes [post]
func (h *NoteHandler) CreateNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	note, err := h.noteService.CreateNote(userID, req.Title, req.Content, req.Mood)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// GetNotes handles listing notes for the authenticated user.
// @Summary     Get notes
// @Description Get a paginated list of notes with optional filters
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       mood      query string false "Filter by mood"
// @Param       from_date query string false "Notes created on or after (RFC3339)"
// @Param       to_date   query string false "Notes created before (RFC3339)"
// @Param       search    query string false "Match against title or content"
// @Success     200 {object} pagination.PageResponse[models.LifeNote] "Paginated notes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes [get]
func (h *NoteHandler) GetNotes(c *gin.Context) {
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

	filter, err := parseNoteFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.noteService.GetUserNotes(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseNoteFilter(c *gin.Context) (services.NoteFilter, error) {
	var filter services.NoteFilter

	if v := c.Query("mood"); v != "" {
		filter.Mood = &v
	}
	if v := c.Query("from_date"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must be RFC3339")
		}
		filter.FromDate = &parsed
	}
	if v := c.Query("to_date"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must be RFC3339")
		}
		filter.ToDate = &parsed
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}

	return filter, nil
}

// GetNote handles retrieving a specific note.
// @Summary     Get note by ID
// @Description Get a single note belonging to the authenticated user
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Note ID"
// @Success     200 {object} models.LifeNote "Note"
// @Failure     400 {object} ErrorResponse "Invalid note ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Note not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes/{id} [get]
func (h *NoteHandler) GetNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	noteID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	note, err := h.noteService.GetNoteByID(userID, noteID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}

// UpdateNote handles a partial update of a note. Keys absent from the payload
// are left untouched; mood accepts an explicit null to clear the stored value.
// @Summary     Update a note
// @Description Partially update a note; omitted fields keep their value
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Note ID"
// @Param       request body map[string]interface{} true "Fields to update"
// @Success     200 {object} MessageResponse "Note updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes/{id} [put]
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	noteID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	update, err := parseNoteUpdate(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.noteService.UpdateNote(userID, noteID, update); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note updated successfully"})
}

// parseNoteUpdate decodes the request body into a NoteUpdate, keeping "key
// absent" distinct from "key set to null".
func parseNoteUpdate(c *gin.Context) (services.NoteUpdate, error) {
	var update services.NoteUpdate

	body, err := c.GetRawData()
	if err != nil {
		return update, apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "request body must be a JSON object")
	}

	if v, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(v, &title); err != nil {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "title must be a string")
		}
		update.Title = services.Some(title)
	}
	if v, ok := raw["content"]; ok {
		var content string
		if err := json.Unmarshal(v, &content); err != nil {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "content must be a string")
		}
		update.Content = services.Some(content)
	}
	if v, ok := raw["mood"]; ok {
		var mood *string
		if err := json.Unmarshal(v, &mood); err != nil {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "mood must be a string or null")
		}
		update.Mood = services.Some(mood)
	}

	return update, nil
}

// DeleteNote handles deleting a note.
// @Summary     Delete a note
// @Description Delete a note belonging to the authenticated user
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Note ID"
// @Success     200 {object} MessageResponse "Note deleted"
// @Failure     400 {object} ErrorResponse "Invalid note ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	noteID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.noteService.DeleteNote(userID, noteID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}

// GetMoodStats handles reporting note counts per mood.
// @Summary     Get mood statistics
// @Description Get note counts grouped by mood, optionally over a date range
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Count notes created on or after (RFC3339)"
// @Param       to_date   query string false "Count notes created before (RFC3339)"
// @Success     200 {object} map[string][]services.MoodCount "Mood counts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes/stats/moods [get]
func (h *NoteHandler) GetMoodStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var from, to *time.Time
	if v := c.Query("from_date"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must be RFC3339"))
			return
		}
		from = &parsed
	}
	if v := c.Query("to_date"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must be RFC3339"))
			return
		}
		to = &parsed
	}

	stats, err := h.noteService.GetMoodStats(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"moods": stats})
}
