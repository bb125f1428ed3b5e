package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction creates a transaction and, when a recurrence block is
// present, the recurring template in the same database transaction. The
// template's next run is the first occurrence after the seed date, so the
// seed entry is never duplicated.
func (s *transactionService) CreateTransaction(userID uint, in CreateTransactionInput) (*models.Transaction, *models.RecurringTransaction, error) {
	if in.Amount <= 0 {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.Description == "" {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !models.ValidCategory(in.Category) {
		return nil, nil, apperrors.ErrInvalidCategory
	}
	if in.Type != models.TransactionTypeIncome && in.Type != models.TransactionTypeExpense {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
	}

	// Income always counts as essential.
	isEssential := in.IsEssential
	if in.Type == models.TransactionTypeIncome {
		isEssential = true
	}

	transaction := &models.Transaction{
		UserID:        userID,
		Description:   in.Description,
		Amount:        in.Amount,
		Date:          in.Date,
		Category:      in.Category,
		Type:          in.Type,
		IsEssential:   isEssential,
		PaymentMethod: in.PaymentMethod,
		ReceiptURL:    in.ReceiptURL,
	}

	var recurring *models.RecurringTransaction
	if in.Recurrence != nil {
		next, err := NextOccurrence(in.Date, in.Recurrence.Frequency)
		if err != nil {
			return nil, nil, err
		}
		recurring = &models.RecurringTransaction{
			UserID:        userID,
			Description:   in.Description,
			Amount:        in.Amount,
			Category:      in.Category,
			Type:          in.Type,
			IsEssential:   isEssential,
			PaymentMethod: in.PaymentMethod,
			Frequency:     in.Recurrence.Frequency,
			StartDate:     in.Date,
			NextRunDate:   next,
			Active:        true,
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Create(transaction).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if recurring != nil {
			if txErr := tx.Create(recurring).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return transaction, recurring, nil
}

// applyFilter narrows a transaction query to the given filter.
func applyFilter(q *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		q = q.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	return q
}

// GetUserTransactions returns a paginated list of the user's transactions,
// newest first.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := applyFilter(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Order("date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID returns a transaction if it belongs to the user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("user_id = ?", userID).First(&transaction, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies the non-nil fields of the input to an existing
// transaction, re-running the same validations as create.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, in UpdateTransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if in.Description != nil {
		if *in.Description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
		}
		transaction.Description = *in.Description
	}
	if in.Amount != nil {
		if *in.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		transaction.Amount = *in.Amount
	}
	if in.Date != nil {
		transaction.Date = *in.Date
	}
	if in.Category != nil {
		if !models.ValidCategory(*in.Category) {
			return nil, apperrors.ErrInvalidCategory
		}
		transaction.Category = *in.Category
	}
	if in.Type != nil {
		if *in.Type != models.TransactionTypeIncome && *in.Type != models.TransactionTypeExpense {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
		}
		transaction.Type = *in.Type
	}
	if in.IsEssential != nil {
		transaction.IsEssential = *in.IsEssential
	}
	if in.PaymentMethod != nil {
		transaction.PaymentMethod = *in.PaymentMethod
	}
	if in.ReceiptURL != nil {
		transaction.ReceiptURL = *in.ReceiptURL
	}
	if transaction.Type == models.TransactionTypeIncome {
		transaction.IsEssential = true
	}

	if err := s.db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// DeleteTransaction soft-deletes a transaction owned by the user.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetStats computes aggregate money flow for the filtered period.
// TotalInvested is the live market value of the user's positions and is
// not affected by the date filter.
func (s *transactionService) GetStats(userID uint, filter TransactionFilter) (*LedgerStats, error) {
	stats := &LedgerStats{}

	type sumRow struct {
		Type        models.TransactionType
		IsEssential bool
		Total       int64
	}
	var rows []sumRow
	q := applyFilter(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)
	if err := q.Select("type, is_essential, COALESCE(SUM(amount), 0) AS total").
		Group("type, is_essential").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, r := range rows {
		switch r.Type {
		case models.TransactionTypeIncome:
			stats.TotalIncome += r.Total
		case models.TransactionTypeExpense:
			stats.TotalExpenses += r.Total
			if r.IsEssential {
				stats.EssentialExpenses += r.Total
			} else {
				stats.NonEssentialExpenses += r.Total
			}
		}
	}

	if err := s.db.Model(&models.Investment{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(current_amount), 0)").Scan(&stats.TotalInvested).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stats.TotalBalance = stats.TotalIncome - stats.TotalExpenses
	return stats, nil
}

// csvAmount renders cents as a plain decimal string ("1234.56").
func csvAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ExportCSV renders the filtered transactions as CSV, newest first.
func (s *transactionService) ExportCSV(userID uint, filter TransactionFilter) ([]byte, error) {
	var transactions []models.Transaction
	q := applyFilter(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)
	if err := q.Order("date DESC, created_at DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "description", "category", "type", "amount", "is_essential", "payment_method"}
	if err := w.Write(header); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, t := range transactions {
		row := []string{
			t.Date.Format("2006-01-02"),
			t.Description,
			t.Category,
			string(t.Type),
			csvAmount(t.Amount),
			fmt.Sprintf("%t", t.IsEssential),
			t.PaymentMethod,
		}
		if err := w.Write(row); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}
