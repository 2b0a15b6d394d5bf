package models

import "time"

// OperationType is the direction of money movement.
type OperationType string

const (
	OperationTypeIncome  OperationType = "income"
	OperationTypeExpense OperationType = "expense"
)

// Operation is a single income or expense tied to a category and date.
// Amount is signed: positive for income, negative for expense.
type Operation struct {
	Base
	UserID      string        `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  string        `gorm:"type:uuid;not null;index" json:"category_id"`
	Type        OperationType `gorm:"not null" json:"type"`
	Amount      int64         `gorm:"type:bigint;not null" json:"amount"`
	Date        time.Time     `gorm:"type:date;not null;index" json:"date"`
	Description string        `json:"description,omitempty"`
	Tags        string        `json:"tags,omitempty"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// SignedAmount returns amount with the sign implied by typ.
func SignedAmount(typ OperationType, amount int64) int64 {
	if amount < 0 {
		amount = -amount
	}
	if typ == OperationTypeExpense {
		return -amount
	}
	return amount
}

// Abs returns the unsigned operation amount.
func (o *Operation) Abs() int64 {
	if o.Amount < 0 {
		return -o.Amount
	}
	return o.Amount
}
