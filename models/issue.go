package models

import (
	"time"
)

// IssueSource enum
type IssueSource string

const (
	SourceWeb      IssueSource = "web"
	SourceTelegram IssueSource = "telegram"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusOpen IssueStatus = "open"
)

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID          uint        `gorm:"primaryKey" bson:"_id" json:"id"`
	Description string      `gorm:"not null" bson:"description" json:"description"`
	Category    string      `gorm:"index" bson:"category" json:"category"`
	ImagePath   string      `bson:"image_path" json:"image_path"`
	Source      IssueSource `gorm:"index" bson:"source" json:"source"`
	Status      IssueStatus `gorm:"index;default:open" bson:"status" json:"status"`
	CreatedAt   time.Time   `gorm:"index" bson:"created_at" json:"created_at"`
	UserEmail   *string     `gorm:"index" bson:"user_email,omitempty" json:"user_email"`
	Upvotes     int         `gorm:"index;default:0" bson:"upvotes" json:"upvotes"`
	ActionPlan  *string     `gorm:"type:text" bson:"action_plan,omitempty" json:"action_plan"`
}

// TableName pins the table name used by every relational backend
func (Issue) TableName() string {
	return "issues"
}

// ValidSource reports whether s is a known origin channel
func ValidSource(s string) bool {
	switch IssueSource(s) {
	case SourceWeb, SourceTelegram:
		return true
	}
	return false
}
