package models

import "time"

// Streak tracks consecutive days of activity for one user.
type Streak struct {
	Base
	UserID         uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Count          int       `gorm:"not null;default:0" json:"count"`
	LastActiveDate time.Time `gorm:"not null" json:"last_active_date"`
}
