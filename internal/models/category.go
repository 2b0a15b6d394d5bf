package models

// Category groups operations. Balance is the running signed sum of the
// category's live operations and is maintained by the operation service.
type Category struct {
	Base
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name    string `gorm:"not null" json:"name"`
	Balance int64  `gorm:"type:bigint;not null;default:0" json:"balance"`
}

// CategoryLimit is a monthly spending cap for one category.
type CategoryLimit struct {
	Base
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string `gorm:"type:uuid;not null;uniqueIndex" json:"category_id"`
	Limit      int64  `gorm:"column:monthly_limit;type:bigint;not null" json:"limit"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
