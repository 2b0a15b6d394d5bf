package models

import "time"

// User is an account holder. Every other entity belongs to exactly one user.
type User struct {
	Base
	Login               string     `gorm:"uniqueIndex;not null" json:"login"`
	DisplayName         string     `gorm:"not null;default:''" json:"display_name"`
	Email               string     `json:"email,omitempty"`
	Password            string     `gorm:"not null" json:"-"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}
