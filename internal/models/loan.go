package models

import "time"

// Loan is a credit repaid in fixed monthly payments.
type Loan struct {
	Base
	UserID         string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string     `gorm:"not null" json:"name"`
	Balance        int64      `gorm:"type:bigint;not null" json:"balance"`
	Payment        int64      `gorm:"type:bigint;not null" json:"payment"`
	PaymentDate    time.Time  `gorm:"type:date;not null" json:"payment_date"`
	LastRemindedOn *time.Time `gorm:"type:date" json:"-"`
}
