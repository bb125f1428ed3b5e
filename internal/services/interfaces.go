package services

import (
	"context"
	"time"

	"centavo/internal/models"
	"centavo/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// RecurrenceInput is the optional recurrence block attached to a new
// transaction. The template is created in the same database transaction
// as the seed entry.
type RecurrenceInput struct {
	Frequency models.Frequency
}

// CreateTransactionInput holds the payload for creating a transaction.
type CreateTransactionInput struct {
	Description   string
	Amount        int64
	Date          time.Time
	Category      string
	Type          models.TransactionType
	IsEssential   bool
	PaymentMethod string
	ReceiptURL    string
	Recurrence    *RecurrenceInput
}

// UpdateTransactionInput holds optional fields for updating a transaction.
// Nil fields are left untouched.
type UpdateTransactionInput struct {
	Description   *string
	Amount        *int64
	Date          *time.Time
	Category      *string
	Type          *models.TransactionType
	IsEssential   *bool
	PaymentMethod *string
	ReceiptURL    *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Type     *models.TransactionType
	Category *string
}

// LedgerStats aggregates money flow over a period. All values are cents.
type LedgerStats struct {
	TotalIncome          int64 `json:"total_income"`
	TotalExpenses        int64 `json:"total_expenses"`
	EssentialExpenses    int64 `json:"essential_expenses"`
	NonEssentialExpenses int64 `json:"non_essential_expenses"`
	TotalInvested        int64 `json:"total_invested"`
	TotalBalance         int64 `json:"total_balance"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, in CreateTransactionInput) (*models.Transaction, *models.RecurringTransaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, in UpdateTransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	GetStats(userID uint, filter TransactionFilter) (*LedgerStats, error)
	ExportCSV(userID uint, filter TransactionFilter) ([]byte, error)
}

// RecurringInput holds the payload for creating a recurring transaction template.
type RecurringInput struct {
	Description   string
	Amount        int64
	Category      string
	Type          models.TransactionType
	IsEssential   bool
	PaymentMethod string
	Frequency     models.Frequency
	StartDate     time.Time
}

// RecurringServicer defines the contract for recurring-transaction business logic.
type RecurringServicer interface {
	CreateRecurring(userID uint, in RecurringInput) (*models.RecurringTransaction, error)
	GetUserRecurring(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTransaction], error)
	SetActive(userID, recurringID uint, active bool) (*models.RecurringTransaction, error)
	DeleteRecurring(userID, recurringID uint) error
	ProcessDue(userID uint, today time.Time) (int, error)
}

// GoalServicer defines the contract for savings-goal business logic.
type GoalServicer interface {
	CreateGoal(userID uint, name string, targetAmount int64, deadline *time.Time) (*models.Goal, error)
	GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error)
	GetGoalByID(userID, goalID uint) (*models.Goal, error)
	UpdateGoal(userID, goalID uint, name *string, targetAmount, currentAmount *int64, deadline *time.Time) (*models.Goal, error)
	DeleteGoal(userID, goalID uint) error
}

// AddLotInput holds the payload for registering an investment purchase.
// A lot merges into an existing position keyed by (ticker, type) when
// Ticker is set, else by (name, type).
type AddLotInput struct {
	Name           string
	Type           models.InvestmentType
	Ticker         string
	Quantity       float64
	InvestedAmount int64
	TargetAmount   *int64
}

// SellResult reports the outcome of a sale. Investment is nil when the
// position was fully liquidated.
type SellResult struct {
	Investment       *models.Investment `json:"investment,omitempty"`
	Liquidated       bool               `json:"liquidated"`
	QuantitySold     float64            `json:"quantity_sold"`
	Proceeds         int64              `json:"proceeds"`
	RealizedGainLoss int64              `json:"realized_gain_loss"`
}

// QuoteRefreshResult summarizes a market-price refresh run.
type QuoteRefreshResult struct {
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// TypeSummary contains summary data for a single investment type.
type TypeSummary struct {
	Invested int64 `json:"invested"`
	Current  int64 `json:"current"`
	Count    int   `json:"count"`
}

// PortfolioSummary contains aggregated portfolio data across all positions.
type PortfolioSummary struct {
	TotalInvested int64                                 `json:"total_invested"`
	TotalCurrent  int64                                 `json:"total_current"`
	TotalGainLoss int64                                 `json:"total_gain_loss"`
	GainLossPct   float64                               `json:"gain_loss_pct"`
	ByType        map[models.InvestmentType]TypeSummary `json:"by_type"`
}

// InvestmentServicer defines the contract for investment-related business logic.
type InvestmentServicer interface {
	AddLot(userID uint, in AddLotInput) (*models.Investment, error)
	GetUserInvestments(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
	GetInvestmentByID(userID, investmentID uint) (*models.Investment, error)
	Sell(userID, investmentID uint, quantity float64, salePricePerUnit int64) (*SellResult, error)
	UpdateCurrentAmount(userID, investmentID uint, currentAmount int64) (*models.Investment, error)
	DeleteInvestment(userID, investmentID uint) error
	RefreshQuotes(ctx context.Context, userID uint) (*QuoteRefreshResult, error)
	GetPortfolio(userID uint) (*PortfolioSummary, error)
}

// NoteInput holds the payload for creating or replacing a note.
type NoteInput struct {
	Title               string
	Content             string
	Tags                []string
	IsFavorite          bool
	RelatedGoalID       *uint
	RelatedInvestmentID *uint
	RelatedMonth        string
}

// NoteFilter holds optional filter parameters for listing notes.
type NoteFilter struct {
	Tag          *string
	Favorite     *bool
	GoalID       *uint
	InvestmentID *uint
	Month        *string
}

// NoteServicer defines the contract for note-related business logic.
type NoteServicer interface {
	CreateNote(userID uint, in NoteInput) (*models.Note, error)
	GetUserNotes(userID uint, page pagination.PageRequest, filter NoteFilter) (*pagination.PageResponse[models.Note], error)
	GetNoteByID(userID, noteID uint) (*models.Note, error)
	UpdateNote(userID, noteID uint, in NoteInput) (*models.Note, error)
	DeleteNote(userID, noteID uint) error
}

// Insight is a single generated observation about the user's finances.
type Insight struct {
	Type    string `json:"type"` // danger, warning, success, info
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SimulationImpacts breaks a purchase simulation down into its three
// user-facing verdicts.
type SimulationImpacts struct {
	Balance   string `json:"balance"`
	Emergency string `json:"emergency"`
	Goals     string `json:"goals"`
}

// SimulationResult is the outcome of a "can I afford this" simulation.
type SimulationResult struct {
	Allowed          bool              `json:"allowed"`
	RemainingBalance int64             `json:"remaining_balance"`
	ImpactMessage    string            `json:"impact_message"`
	AffectedGoals    []string          `json:"affected_goals"`
	Impacts          SimulationImpacts `json:"impacts"`
}

// HealthScore is a 0-100 aggregate of the user's financial health with
// its component breakdown.
type HealthScore struct {
	Score           int     `json:"score"`
	SavingsRate     float64 `json:"savings_rate"`
	InvestmentRate  float64 `json:"investment_rate"`
	EssentialRate   float64 `json:"essential_rate"`
	SavingsPoints   int     `json:"savings_points"`
	InvestPoints    int     `json:"investment_points"`
	EssentialPoints int     `json:"essential_points"`
}

// GoalProjection estimates when a goal will be reached at the user's
// observed saving pace.
type GoalProjection struct {
	GoalID         uint       `json:"goal_id"`
	AvgPerMonth    int64      `json:"avg_per_month"`
	MonthsToReach  int        `json:"months_to_reach"`
	ProjectedDate  *time.Time `json:"projected_date,omitempty"`
	Completed      bool       `json:"completed"`
	HasTrajectory  bool       `json:"has_trajectory"`
}

// InsightServicer defines the contract for the insight and report engine.
type InsightServicer interface {
	GetInsights(userID uint, filter TransactionFilter) ([]Insight, error)
	SimulatePurchase(userID uint, amount int64) (*SimulationResult, error)
	GetHealthScore(userID uint, filter TransactionFilter) (*HealthScore, error)
	GetGoalProjection(userID, goalID uint, today time.Time) (*GoalProjection, error)
}

// AdviceServicer defines the contract for the AI financial assistant.
type AdviceServicer interface {
	GetAdvice(ctx context.Context, userID uint, prompt string) (string, error)
}

// Badge is an achievement derived from the user's activity.
type Badge struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

// StreakServicer defines the contract for activity-streak tracking.
type StreakServicer interface {
	Touch(userID uint, today time.Time) (*models.Streak, error)
	GetStreak(userID uint) (*models.Streak, error)
	GetBadges(userID uint) ([]Badge, error)
}
