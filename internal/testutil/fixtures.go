package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"centavo/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTransaction creates a transaction of the given type and amount (in cents).
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOn(t, db, userID, txType, amount, time.Now())
}

// CreateTestTransactionOn creates a transaction dated at the given time.
func CreateTestTransactionOn(t *testing.T, db *gorm.DB, userID uint, txType models.TransactionType, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	category := models.CategoryOther
	isEssential := false
	if txType == models.TransactionTypeIncome {
		category = models.CategorySalary
		isEssential = true
	}

	tx := &models.Transaction{
		UserID:      userID,
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Type:        txType,
		Amount:      amount,
		Date:        date,
		Category:    category,
		IsEssential: isEssential,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestEssentialExpense creates an essential expense transaction.
func CreateTestEssentialExpense(t *testing.T, db *gorm.DB, userID uint, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		Description: fmt.Sprintf("Test Essential %d", nextID()),
		Type:        models.TransactionTypeExpense,
		Amount:      amount,
		Date:        time.Now(),
		Category:    models.CategoryHousing,
		IsEssential: true,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test essential expense: %v", err)
	}
	return tx
}

// CreateTestRecurring creates an active recurring template due at nextRun.
func CreateTestRecurring(t *testing.T, db *gorm.DB, userID uint, frequency models.Frequency, nextRun time.Time) *models.RecurringTransaction {
	t.Helper()

	recurring := &models.RecurringTransaction{
		UserID:      userID,
		Description: fmt.Sprintf("Test Recurring %d", nextID()),
		Amount:      5000,
		Category:    models.CategoryFixedExpense,
		Type:        models.TransactionTypeExpense,
		IsEssential: true,
		Frequency:   frequency,
		StartDate:   nextRun,
		NextRunDate: nextRun,
		Active:      true,
	}
	if err := db.Create(recurring).Error; err != nil {
		t.Fatalf("failed to create test recurring transaction: %v", err)
	}
	return recurring
}

// CreateTestGoal creates a goal with the given target and current amounts (in cents).
func CreateTestGoal(t *testing.T, db *gorm.DB, userID uint, target, current int64) *models.Goal {
	t.Helper()
	return CreateTestGoalNamed(t, db, userID, fmt.Sprintf("Test Goal %d", nextID()), target, current)
}

// CreateTestGoalNamed creates a goal with a specific name.
func CreateTestGoalNamed(t *testing.T, db *gorm.DB, userID uint, name string, target, current int64) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: current,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestInvestment creates a ticker-bearing stock position.
func CreateTestInvestment(t *testing.T, db *gorm.DB, userID uint, quantity float64, invested int64) *models.Investment {
	t.Helper()

	n := nextID()
	inv := &models.Investment{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Stock %d", n),
		Type:           models.InvestmentTypeStock,
		Ticker:         fmt.Sprintf("TST%d", n),
		Quantity:       quantity,
		InvestedAmount: invested,
		CurrentAmount:  invested,
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}
	return inv
}

// CreateTestNote creates a note with the given tags.
func CreateTestNote(t *testing.T, db *gorm.DB, userID uint, tags ...string) *models.Note {
	t.Helper()

	note := &models.Note{
		UserID:  userID,
		Title:   fmt.Sprintf("Test Note %d", nextID()),
		Content: "test content",
	}
	note.SetTags(tags)
	if err := db.Create(note).Error; err != nil {
		t.Fatalf("failed to create test note: %v", err)
	}
	return note
}
