package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// noteService handles note-related business logic.
type noteService struct {
	db *gorm.DB
}

// NewNoteService creates a new NoteServicer.
func NewNoteService(db *gorm.DB) NoteServicer {
	return &noteService{db: db}
}

// validateNoteLinks checks that referenced goals and investments exist and
// belong to the user.
func (s *noteService) validateNoteLinks(userID uint, in NoteInput) error {
	if in.RelatedGoalID != nil {
		var count int64
		if err := s.db.Model(&models.Goal{}).Where("id = ? AND user_id = ?", *in.RelatedGoalID, userID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrGoalNotFound
		}
	}
	if in.RelatedInvestmentID != nil {
		var count int64
		if err := s.db.Model(&models.Investment{}).Where("id = ? AND user_id = ?", *in.RelatedInvestmentID, userID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrInvestmentNotFound
		}
	}
	return nil
}

// CreateNote creates a note for the user.
func (s *noteService) CreateNote(userID uint, in NoteInput) (*models.Note, error) {
	if in.Title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if err := s.validateNoteLinks(userID, in); err != nil {
		return nil, err
	}

	note := &models.Note{
		UserID:              userID,
		Title:               in.Title,
		Content:             in.Content,
		IsFavorite:          in.IsFavorite,
		RelatedGoalID:       in.RelatedGoalID,
		RelatedInvestmentID: in.RelatedInvestmentID,
		RelatedMonth:        in.RelatedMonth,
	}
	note.SetTags(in.Tags)

	if err := s.db.Create(note).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return note, nil
}

// GetUserNotes returns a paginated, filtered list of the user's notes,
// most recently updated first.
func (s *noteService) GetUserNotes(userID uint, page pagination.PageRequest, filter NoteFilter) (*pagination.PageResponse[models.Note], error) {
	page.Defaults()

	base := s.db.Model(&models.Note{}).Where("user_id = ?", userID)
	if filter.Tag != nil {
		// Tags are stored comma-separated; pad both sides so "carro"
		// does not match "carros".
		base = base.Where("',' || tags || ',' LIKE ?", "%,"+*filter.Tag+",%")
	}
	if filter.Favorite != nil {
		base = base.Where("is_favorite = ?", *filter.Favorite)
	}
	if filter.GoalID != nil {
		base = base.Where("related_goal_id = ?", *filter.GoalID)
	}
	if filter.InvestmentID != nil {
		base = base.Where("related_investment_id = ?", *filter.InvestmentID)
	}
	if filter.Month != nil {
		base = base.Where("related_month = ?", *filter.Month)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notes []models.Note
	if err := base.Order("updated_at DESC").
		Scopes(pagination.Paginate(page)).Find(&notes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(notes, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetNoteByID returns a note if it belongs to the user.
func (s *noteService) GetNoteByID(userID, noteID uint) (*models.Note, error) {
	var note models.Note
	if err := s.db.Where("user_id = ?", userID).First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoteNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &note, nil
}

// UpdateNote replaces a note's content. Save always touches UpdatedAt,
// even when nothing else changed, so "last edited" ordering stays honest.
func (s *noteService) UpdateNote(userID, noteID uint, in NoteInput) (*models.Note, error) {
	note, err := s.GetNoteByID(userID, noteID)
	if err != nil {
		return nil, err
	}

	if in.Title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if err := s.validateNoteLinks(userID, in); err != nil {
		return nil, err
	}

	note.Title = in.Title
	note.Content = in.Content
	note.IsFavorite = in.IsFavorite
	note.RelatedGoalID = in.RelatedGoalID
	note.RelatedInvestmentID = in.RelatedInvestmentID
	note.RelatedMonth = in.RelatedMonth
	note.SetTags(in.Tags)

	if err := s.db.Save(note).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return note, nil
}

// DeleteNote soft-deletes a note owned by the user.
func (s *noteService) DeleteNote(userID, noteID uint) error {
	note, err := s.GetNoteByID(userID, noteID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(note).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
