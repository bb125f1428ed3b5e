package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// NoteHandler handles note-related requests.
type NoteHandler struct {
	noteService services.NoteServicer
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(noteService services.NoteServicer) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// NoteRequest represents the payload for creating or updating a note.
type NoteRequest struct {
	Title               string   `json:"title" binding:"required,max=255"`
	Content             string   `json:"content" binding:"max=10000"`
	Tags                []string `json:"tags" binding:"max=20,dive,max=50"`
	IsFavorite          bool     `json:"is_favorite"`
	RelatedGoalID       *uint    `json:"related_goal_id"`
	RelatedInvestmentID *uint    `json:"related_investment_id"`
	RelatedMonth        string   `json:"related_month" binding:"omitempty,year_month"`
}

func noteInputFromRequest(req NoteRequest) services.NoteInput {
	return services.NoteInput{
		Title:               req.Title,
		Content:             req.Content,
		Tags:                req.Tags,
		IsFavorite:          req.IsFavorite,
		RelatedGoalID:       req.RelatedGoalID,
		RelatedInvestmentID: req.RelatedInvestmentID,
		RelatedMonth:        req.RelatedMonth,
	}
}

// parseNoteFilter extracts the optional note filters from query parameters.
func parseNoteFilter(c *gin.Context) (services.NoteFilter, error) {
	var filter services.NoteFilter

	if v := c.Query("tag"); v != "" {
		tag := v
		filter.Tag = &tag
	}
	if v := c.Query("favorite"); v != "" {
		fav, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid favorite, must be true or false")
		}
		filter.Favorite = &fav
	}
	if v := c.Query("goal_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid goal_id")
		}
		goalID := uint(id)
		filter.GoalID = &goalID
	}
	if v := c.Query("investment_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid investment_id")
		}
		invID := uint(id)
		filter.InvestmentID = &invID
	}
	if v := c.Query("month"); v != "" {
		month := v
		filter.Month = &month
	}

	return filter, nil
}

// CreateNote handles the creation of a new note
// @Summary     Create a note
// @Description Create a note, optionally tagged and linked to a goal or investment
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body NoteRequest true "Note details"
// @Success     201 {object} models.Note "Note created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Linked goal or investment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes [post]
func (h *NoteHandler) CreateNote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	note, err := h.noteService.CreateNote(userID, noteInputFromRequest(req))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// GetUserNotes handles listing the user's notes
// @Summary     Get notes
// @Description Get a paginated list of notes with optional filters, most recently updated first
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page          query int    false "Page number (default 1)"
// @Param       page_size     query int    false "Items per page (default 20, max 100)"
// @Param       tag           query string false "Filter by exact tag"
// @Param       favorite      query bool   false "Filter by favorite flag"
// @Param       goal_id       query int    false "Filter by linked goal"
// @Param       investment_id query int    false "Filter by linked investment"
// @Param       month         query string false "Filter by related month (YYYY-MM)"
// @Success     200 {object} pagination.PageResponse[models.Note] "Paginated notes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes [get]
func (h *NoteHandler) GetUserNotes(c *gin.Context) {
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

// GetNoteByID handles the retrieval of a specific note
// @Summary     Get note by ID
// @Description Get a specific note by ID
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Note ID"
// @Success     200 {object} models.Note "Note details"
// @Failure     400 {object} ErrorResponse "Invalid note ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Note not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notes/{id} [get]
func (h *NoteHandler) GetNoteByID(c *gin.Context) {
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

// UpdateNote handles a full replacement of a note's content
// @Summary     Update note
// @Description Replace a note's content, tags and links
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int         true "Note ID"
// @Param       request body NoteRequest true "New note content"
// @Success     200 {object} models.Note "Note updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Note not found"
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

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	note, err := h.noteService.UpdateNote(userID, noteID, noteInputFromRequest(req))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}

// DeleteNote handles the deletion of a note
// @Summary     Delete note
// @Description Delete a note by ID
// @Tags        notes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Note ID"
// @Success     200 {object} MessageResponse "Note deleted"
// @Failure     400 {object} ErrorResponse "Invalid note ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Note not found"
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
