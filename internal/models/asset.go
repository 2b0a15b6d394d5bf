package models

// Asset is a named balance the user holds (cash, card, brokerage...).
type Asset struct {
	Base
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name    string `gorm:"not null" json:"name"`
	Balance int64  `gorm:"type:bigint;not null;default:0" json:"balance"`
}

// SavingsAccount is an interest-bearing deposit.
type SavingsAccount struct {
	Base
	UserID       string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string  `gorm:"not null" json:"name"`
	Balance      int64   `gorm:"type:bigint;not null;default:0" json:"balance"`
	InterestRate float64 `gorm:"not null;default:0" json:"interest_rate"` // annual, percent
}
