// Package server assembles the service layer and the HTTP router of the API.
package server

import (
	"gorm.io/gorm"

	"fintrack/internal/services"
)

// Services bundles every service the router serves.
type Services struct {
	Users         services.UserServicer
	Audit         services.AuditServicer
	Categories    services.CategoryServicer
	Operations    services.OperationServicer
	Assets        services.AssetServicer
	Savings       services.SavingsServicer
	Loans         services.LoanServicer
	Goals         services.GoalServicer
	Notifications services.NotificationServicer
	Dashboard     services.DashboardServicer
	Reminders     services.ReminderServicer
}

// Options carries the optional collaborators of the service layer.
type Options struct {
	// Dispatcher forwards stored notifications to e-mail and AMQP. Nil disables delivery.
	Dispatcher services.Dispatcher
	// KeyRates supplies the central bank key rate. Nil omits it from savings summaries.
	KeyRates services.KeyRateProvider
	// LargeIncomeThreshold is the smallest income in kopecks that raises an income notification.
	LargeIncomeThreshold int64
}

// NewServices wires the service layer over db.
func NewServices(db *gorm.DB, opts Options) *Services {
	notifications := services.NewNotificationService(db, opts.Dispatcher)
	return &Services{
		Users:         services.NewUserService(db),
		Audit:         services.NewAuditService(db),
		Categories:    services.NewCategoryService(db),
		Operations:    services.NewOperationService(db, notifications, opts.LargeIncomeThreshold),
		Assets:        services.NewAssetService(db),
		Savings:       services.NewSavingsService(db, opts.KeyRates),
		Loans:         services.NewLoanService(db),
		Goals:         services.NewGoalService(db, notifications),
		Notifications: notifications,
		Dashboard:     services.NewDashboardService(db),
		Reminders:     services.NewReminderService(db, notifications),
	}
}
