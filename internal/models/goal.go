package models

import "time"

// GoalPriority ranks financial goals.
type GoalPriority string

const (
	GoalPriorityLow    GoalPriority = "low"
	GoalPriorityMedium GoalPriority = "medium"
	GoalPriorityHigh   GoalPriority = "high"
)

// Goal is a named savings target with tracked progress.
type Goal struct {
	Base
	UserID        string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string       `gorm:"not null" json:"name"`
	Target        int64        `gorm:"type:bigint;not null" json:"target"`
	CurrentAmount int64        `gorm:"type:bigint;not null;default:0" json:"current_amount"`
	IsCompleted   bool         `gorm:"not null;default:false" json:"is_completed"`
	Description   string       `json:"description,omitempty"`
	TargetDate    *time.Time   `gorm:"type:date" json:"target_date,omitempty"`
	Priority      GoalPriority `gorm:"not null;default:'medium'" json:"priority"`
	Category      string       `json:"category,omitempty"`
}
