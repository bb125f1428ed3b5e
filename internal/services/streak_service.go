package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
)

// dateOnly truncates a time to midnight in its own location.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextStreak reconciles a streak count against the calendar. A repeat
// visit on the same day keeps the count, the next day extends it, and
// any longer gap resets it to 1. A zero count or zero lastActive starts
// a fresh streak.
func NextStreak(prevCount int, lastActive, today time.Time) int {
	if prevCount <= 0 || lastActive.IsZero() {
		return 1
	}

	last := dateOnly(lastActive)
	now := dateOnly(today)

	switch {
	case now.Equal(last):
		return prevCount
	case now.Equal(last.AddDate(0, 0, 1)):
		return prevCount + 1
	default:
		return 1
	}
}

// streakService tracks consecutive active days and derives badges.
type streakService struct {
	db    *gorm.DB
	stats TransactionServicer
}

// NewStreakService creates a new StreakServicer.
func NewStreakService(db *gorm.DB, stats TransactionServicer) StreakServicer {
	return &streakService{db: db, stats: stats}
}

// Touch records activity for today and returns the reconciled streak.
// Called on login and app load; calling it twice on the same day is a
// no-op.
func (s *streakService) Touch(userID uint, today time.Time) (*models.Streak, error) {
	var streak models.Streak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		streak = models.Streak{
			UserID:         userID,
			Count:          1,
			LastActiveDate: dateOnly(today),
		}
		if err := s.db.Create(&streak).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &streak, nil
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	next := NextStreak(streak.Count, streak.LastActiveDate, today)
	if next == streak.Count && dateOnly(streak.LastActiveDate).Equal(dateOnly(today)) {
		return &streak, nil
	}

	streak.Count = next
	streak.LastActiveDate = dateOnly(today)
	if err := s.db.Save(&streak).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &streak, nil
}

// GetStreak returns the user's streak, or a zero streak if none exists.
func (s *streakService) GetStreak(userID uint) (*models.Streak, error) {
	var streak models.Streak
	if err := s.db.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Streak{UserID: userID}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &streak, nil
}

// streakBadge builds a consecutive-days badge.
func streakBadge(days, count int) Badge {
	return Badge{
		Key:         fmt.Sprintf("streak_%d", days),
		Title:       fmt.Sprintf("%d dias seguidos", days),
		Description: fmt.Sprintf("Acesse o app por %d dias consecutivos.", days),
		Earned:      count >= days,
	}
}

// GetBadges derives the user's achievements from goals, stats and streak.
// Badges are read-only; nothing is persisted.
func (s *streakService) GetBadges(userID uint) ([]Badge, error) {
	stats, err := s.stats.GetStats(userID, TransactionFilter{})
	if err != nil {
		return nil, err
	}

	var completedGoals int64
	if err := s.db.Model(&models.Goal{}).
		Where("user_id = ? AND target_amount > 0 AND current_amount >= target_amount", userID).
		Count(&completedGoals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investmentCount int64
	if err := s.db.Model(&models.Investment{}).Where("user_id = ?", userID).
		Count(&investmentCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	streak, err := s.GetStreak(userID)
	if err != nil {
		return nil, err
	}

	balancedBudget := stats.TotalIncome > 0 &&
		float64(stats.EssentialExpenses) < float64(stats.TotalIncome)*0.5

	badges := []Badge{
		{
			Key:         "first_goal",
			Title:       "Primeira Meta",
			Description: "Complete sua primeira meta de economia.",
			Earned:      completedGoals > 0,
		},
		{
			Key:         "first_investment",
			Title:       "Investidor Iniciante",
			Description: "Registre seu primeiro investimento.",
			Earned:      investmentCount > 0,
		},
		{
			Key:         "balanced_budget",
			Title:       "Orçamento Equilibrado",
			Description: "Mantenha os gastos essenciais abaixo de 50% da renda.",
			Earned:      balancedBudget,
		},
		streakBadge(3, streak.Count),
		streakBadge(7, streak.Count),
		streakBadge(30, streak.Count),
	}

	return badges, nil
}
