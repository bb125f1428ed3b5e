package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/logger"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// NextOccurrence returns the date one period after the given date.
// Monthly steps clamp to the last day of the target month (Jan 31 ->
// Feb 28/29) instead of letting AddDate normalize Jan 31 into March.
// Yearly steps clamp Feb 29 to Feb 28 on non-leap years.
func NextOccurrence(date time.Time, frequency models.Frequency) (time.Time, error) {
	switch frequency {
	case models.FrequencyWeekly:
		return date.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return addMonthsClamped(date, 1), nil
	case models.FrequencyYearly:
		return addMonthsClamped(date, 12), nil
	default:
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "frequency must be weekly, monthly or yearly")
	}
}

// addMonthsClamped advances date by n calendar months, clamping the day
// to the length of the target month.
func addMonthsClamped(date time.Time, n int) time.Time {
	year, month, day := date.Date()
	first := time.Date(year, month+time.Month(n), 1, date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// recurringService handles recurring-transaction business logic.
type recurringService struct {
	db *gorm.DB
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB) RecurringServicer {
	return &recurringService{db: db}
}

// CreateRecurring creates a standalone recurring template. The first run
// is the start date itself.
func (s *recurringService) CreateRecurring(userID uint, in RecurringInput) (*models.RecurringTransaction, error) {
	if in.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.Description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !models.ValidCategory(in.Category) {
		return nil, apperrors.ErrInvalidCategory
	}
	if _, err := NextOccurrence(in.StartDate, in.Frequency); err != nil {
		return nil, err
	}

	isEssential := in.IsEssential
	if in.Type == models.TransactionTypeIncome {
		isEssential = true
	}

	recurring := &models.RecurringTransaction{
		UserID:        userID,
		Description:   in.Description,
		Amount:        in.Amount,
		Category:      in.Category,
		Type:          in.Type,
		IsEssential:   isEssential,
		PaymentMethod: in.PaymentMethod,
		Frequency:     in.Frequency,
		StartDate:     in.StartDate,
		NextRunDate:   in.StartDate,
		Active:        true,
	}

	if err := s.db.Create(recurring).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return recurring, nil
}

// GetUserRecurring returns a paginated list of the user's templates.
func (s *recurringService) GetUserRecurring(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTransaction], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringTransaction{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var templates []models.RecurringTransaction
	if err := base.Order("next_run_date ASC").
		Scopes(pagination.Paginate(page)).Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(templates, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getRecurringByID returns a template if it belongs to the user.
func (s *recurringService) getRecurringByID(userID, recurringID uint) (*models.RecurringTransaction, error) {
	var recurring models.RecurringTransaction
	if err := s.db.Where("user_id = ?", userID).First(&recurring, recurringID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &recurring, nil
}

// SetActive pauses or resumes a template.
func (s *recurringService) SetActive(userID, recurringID uint, active bool) (*models.RecurringTransaction, error) {
	recurring, err := s.getRecurringByID(userID, recurringID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(recurring).Update("active", active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	recurring.Active = active
	return recurring, nil
}

// DeleteRecurring soft-deletes a template owned by the user.
func (s *recurringService) DeleteRecurring(userID, recurringID uint) error {
	recurring, err := s.getRecurringByID(userID, recurringID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(recurring).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ProcessDue materializes one transaction for every active template whose
// next run date is on or before today, then advances the template one
// period. A template that is still due fires again on the next call, so
// repeated invocations converge without a catch-up loop. Failures on one
// template are logged and do not block the others.
func (s *recurringService) ProcessDue(userID uint, today time.Time) (int, error) {
	var due []models.RecurringTransaction
	if err := s.db.Where("user_id = ? AND active = ? AND next_run_date <= ?", userID, true, today).
		Find(&due).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log := logger.Get()
	created := 0

	for i := range due {
		recurring := &due[i]

		next, err := NextOccurrence(recurring.NextRunDate, recurring.Frequency)
		if err != nil {
			log.Errorw("skipping recurring template with bad frequency",
				"recurring_id", recurring.ID, "frequency", recurring.Frequency)
			continue
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			transaction := &models.Transaction{
				UserID:        recurring.UserID,
				Description:   recurring.Description,
				Amount:        recurring.Amount,
				Date:          recurring.NextRunDate,
				Category:      recurring.Category,
				Type:          recurring.Type,
				IsEssential:   recurring.IsEssential,
				PaymentMethod: recurring.PaymentMethod,
			}
			if txErr := tx.Create(transaction).Error; txErr != nil {
				return txErr
			}
			return tx.Model(recurring).Update("next_run_date", next).Error
		})
		if err != nil {
			log.Errorw("failed to materialize recurring transaction",
				"recurring_id", recurring.ID, "error", err)
			continue
		}

		created++
	}

	return created, nil
}
