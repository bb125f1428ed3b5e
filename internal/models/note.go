package models

import (
	"encoding/json"
	"strings"
)

// Note is a free-text annotation, optionally linked to a goal, an
// investment, or a calendar month ("YYYY-MM"). Tags are stored as a
// comma-separated list; the Tags/SetTags accessors are the only place
// that encoding lives.
type Note struct {
	Base
	UserID              uint   `gorm:"not null;index" json:"user_id"`
	Title               string `gorm:"not null" json:"title"`
	Content             string `json:"content"`
	TagList             string `gorm:"column:tags" json:"-"`
	IsFavorite          bool   `gorm:"not null;default:false" json:"is_favorite"`
	RelatedGoalID       *uint  `json:"related_goal_id,omitempty"`
	RelatedInvestmentID *uint  `json:"related_investment_id,omitempty"`
	RelatedMonth        string `json:"related_month,omitempty"`
}

// MarshalJSON exposes the stored tag list as a "tags" array, so clients
// read tags back in the same shape they send them.
func (n Note) MarshalJSON() ([]byte, error) {
	type plain Note
	tags := n.Tags()
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(struct {
		plain
		Tags []string `json:"tags"`
	}{plain(n), tags})
}

// Tags returns the note's tags as a slice.
func (n *Note) Tags() []string {
	if n.TagList == "" {
		return nil
	}
	return strings.Split(n.TagList, ",")
}

// SetTags stores the given tags, dropping empty entries.
func (n *Note) SetTags(tags []string) {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			clean = append(clean, t)
		}
	}
	n.TagList = strings.Join(clean, ",")
}
