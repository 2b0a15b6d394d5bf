// Package validator registers the domain validation tags on Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"fintrack/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn installs the custom tags on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("operation_type", validateOperationType)
	_ = v.RegisterValidation("goal_priority", validateGoalPriority)
	_ = v.RegisterValidation("notification_kind", validateNotificationKind)
	_ = v.RegisterValidation("month", validateMonth)
}

func validateOperationType(fl validator.FieldLevel) bool {
	switch models.OperationType(fl.Field().String()) {
	case models.OperationTypeIncome, models.OperationTypeExpense:
		return true
	}
	return false
}

func validateGoalPriority(fl validator.FieldLevel) bool {
	switch models.GoalPriority(fl.Field().String()) {
	case models.GoalPriorityLow, models.GoalPriorityMedium, models.GoalPriorityHigh:
		return true
	}
	return false
}

func validateNotificationKind(fl validator.FieldLevel) bool {
	switch models.NotificationKind(fl.Field().String()) {
	case models.NotificationLimitExceeded,
		models.NotificationPaymentDue,
		models.NotificationPaymentOverdue,
		models.NotificationIncome,
		models.NotificationGoalAchieved,
		models.NotificationGeneral:
		return true
	}
	return false
}

// validateMonth accepts YYYY-MM.
func validateMonth(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01", fl.Field().String())
	return err == nil
}
