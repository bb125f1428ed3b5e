package models

import "time"

// Goal represents a savings target. CurrentAmount is set explicitly
// by the user, never derived from transactions.
type Goal struct {
	Base
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	Name          string     `gorm:"not null" json:"name"`
	TargetAmount  int64      `gorm:"type:bigint;not null" json:"target_amount"`
	CurrentAmount int64      `gorm:"type:bigint;not null;default:0" json:"current_amount"`
	Deadline      *time.Time `json:"deadline,omitempty"`
}

// Completed reports whether the goal has reached its target.
func (g *Goal) Completed() bool {
	return g.TargetAmount > 0 && g.CurrentAmount >= g.TargetAmount
}

// Remaining returns the amount still missing to complete the goal.
func (g *Goal) Remaining() int64 {
	if r := g.TargetAmount - g.CurrentAmount; r > 0 {
		return r
	}
	return 0
}
