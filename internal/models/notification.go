package models

import (
	"time"

	"fintrack/internal/uuid"

	"gorm.io/gorm"
)

// NotificationKind classifies a notification for filtering and display.
type NotificationKind string

const (
	NotificationLimitExceeded  NotificationKind = "limit_exceeded"
	NotificationPaymentDue     NotificationKind = "payment_due"
	NotificationPaymentOverdue NotificationKind = "payment_overdue"
	NotificationIncome         NotificationKind = "income"
	NotificationGoalAchieved   NotificationKind = "goal_achieved"
	NotificationGeneral        NotificationKind = "general"
)

// Notification is a derived message shown to the user. Rows are immutable
// once written and are hard-deleted on dismissal.
type Notification struct {
	ID        string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"not null" json:"kind"`
	Message   string           `gorm:"not null" json:"message"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New()
	}
	return nil
}
