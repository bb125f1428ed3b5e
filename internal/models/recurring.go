package models

import "time"

// Frequency is the cadence at which a recurring transaction fires.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// RecurringTransaction is a template that spawns concrete transactions
// on a schedule. It carries the same payload as a Transaction minus the
// date; NextRunDate is the date the next instance will be stamped with.
type RecurringTransaction struct {
	Base
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Description   string          `gorm:"not null" json:"description"`
	Amount        int64           `gorm:"type:bigint;not null" json:"amount"`
	Category      string          `gorm:"not null" json:"category"`
	Type          TransactionType `gorm:"not null" json:"type"`
	IsEssential   bool            `gorm:"not null;default:false" json:"is_essential"`
	PaymentMethod string          `json:"payment_method"`
	Frequency     Frequency       `gorm:"not null" json:"frequency"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	NextRunDate   time.Time       `gorm:"not null;index" json:"next_run_date"`
	Active        bool            `gorm:"not null;default:true" json:"active"`
}
