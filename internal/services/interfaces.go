package services

import (
	"context"
	"time"

	"fintrack/internal/finance"
	"fintrack/internal/models"
	"fintrack/internal/notify"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(login, password, displayName, email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(login, password string) (*models.User, error)
	UpdateProfile(userID string, displayName, email *string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	RotateRefreshTokenHash(userID, presentedHash, newHash string) error
}

// CategorySpending is one category's spending against its limit for a month.
type CategorySpending struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	finance.LimitUsage
}

// CategoryServicer defines the contract for categories and their monthly limits.
type CategoryServicer interface {
	CreateCategory(userID, name string, balance int64) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error

	CreateLimit(userID, categoryID string, limit int64) (*models.CategoryLimit, error)
	GetUserLimits(userID string) ([]models.CategoryLimit, error)
	UpdateLimit(userID, limitID string, limit int64) (*models.CategoryLimit, error)
	DeleteLimit(userID, limitID string) error

	GetSpending(userID string, month time.Time) ([]CategorySpending, error)
}

// OperationInput carries the user-editable fields of an operation. Amount is
// unsigned; the sign follows Type.
type OperationInput struct {
	CategoryID  string
	Type        models.OperationType
	Amount      int64
	Date        time.Time
	Description string
	Tags        string
}

// OperationFilter holds optional filter parameters for listing operations.
// From and To are inclusive calendar days.
type OperationFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID string
	Type       models.OperationType
	Query      string
	Tags       string
}

// OperationSummary aggregates the operations matched by a filter.
type OperationSummary struct {
	finance.Totals
	Balance int64 `json:"balance"`
}

// OperationServicer defines the contract for income/expense operations.
type OperationServicer interface {
	CreateOperation(userID string, in OperationInput) (*models.Operation, error)
	GetUserOperations(userID string, page pagination.PageRequest, filter OperationFilter) (*pagination.PageResponse[models.Operation], error)
	GetOperationByID(userID, operationID string) (*models.Operation, error)
	UpdateOperation(userID, operationID string, in OperationInput) (*models.Operation, error)
	DeleteOperation(userID, operationID string) error
	GetSummary(userID string, filter OperationFilter) (*OperationSummary, error)
	ExportOperations(userID string, filter OperationFilter) ([]models.Operation, error)
}

// BalanceSummary totals a list of balances.
type BalanceSummary struct {
	Total int64 `json:"total"`
	Count int64 `json:"count"`
}

// AssetServicer defines the contract for assets.
type AssetServicer interface {
	CreateAsset(userID, name string, balance int64) (*models.Asset, error)
	GetUserAssets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error)
	GetAssetByID(userID, assetID string) (*models.Asset, error)
	UpdateAsset(userID, assetID string, name *string, balance *int64) (*models.Asset, error)
	DeleteAsset(userID, assetID string) error
	GetSummary(userID string) (*BalanceSummary, error)
}

// KeyRateProvider supplies the central bank key rate in percent.
type KeyRateProvider interface {
	KeyRate(ctx context.Context) (float64, error)
}

// SavingsSummary aggregates savings accounts.
type SavingsSummary struct {
	TotalBalance             int64    `json:"total_balance"`
	Count                    int64    `json:"count"`
	AverageRate              float64  `json:"average_rate"`
	ProjectedMonthlyInterest int64    `json:"projected_monthly_interest"`
	KeyRate                  *float64 `json:"key_rate,omitempty"`
}

// SavingsServicer defines the contract for savings accounts.
type SavingsServicer interface {
	CreateAccount(userID, name string, balance int64, rate float64) (*models.SavingsAccount, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsAccount], error)
	GetAccountByID(userID, accountID string) (*models.SavingsAccount, error)
	UpdateAccount(userID, accountID string, name *string, balance *int64, rate *float64) (*models.SavingsAccount, error)
	DeleteAccount(userID, accountID string) error
	GetSummary(ctx context.Context, userID string) (*SavingsSummary, error)
}

// LoanInput carries the fields of a new loan.
type LoanInput struct {
	Name        string
	Balance     int64
	Payment     int64
	PaymentDate time.Time
}

// LoanUpdate carries optional loan changes; nil fields are left untouched.
type LoanUpdate struct {
	Name        *string
	Balance     *int64
	Payment     *int64
	PaymentDate *time.Time
}

// LoanView is a loan with its derived repayment figures.
type LoanView struct {
	models.Loan
	DaysUntilPayment int                   `json:"days_until_payment"`
	PaymentStatus    finance.PaymentStatus `json:"payment_status"`
	MonthsLeft       int                   `json:"months_left"`
	ProgressPercent  float64               `json:"progress_percent"`
}

// LoanSummary aggregates a user's loans.
type LoanSummary struct {
	TotalBalance        int64 `json:"total_balance"`
	TotalMonthlyPayment int64 `json:"total_monthly_payment"`
	Count               int64 `json:"count"`
}

// LoanServicer defines the contract for loans.
type LoanServicer interface {
	CreateLoan(userID string, in LoanInput) (*LoanView, error)
	GetUserLoans(userID string, page pagination.PageRequest) (*pagination.PageResponse[LoanView], error)
	GetLoanByID(userID, loanID string) (*LoanView, error)
	UpdateLoan(userID, loanID string, in LoanUpdate) (*LoanView, error)
	DeleteLoan(userID, loanID string) error
	GetSchedule(userID, loanID string) ([]finance.Installment, error)
	RecordPayment(userID, loanID string, amount int64) (*LoanView, error)
	GetSummary(userID string) (*LoanSummary, error)
}

// GoalInput carries the fields of a new goal.
type GoalInput struct {
	Name          string
	Target        int64
	CurrentAmount int64
	Description   string
	TargetDate    *time.Time
	Priority      models.GoalPriority
	Category      string
	IsCompleted   bool
}

// GoalUpdate carries optional goal changes; nil fields are left untouched.
type GoalUpdate struct {
	Name          *string
	Target        *int64
	CurrentAmount *int64
	Description   *string
	TargetDate    *time.Time
	Priority      *models.GoalPriority
	Category      *string
	IsCompleted   *bool
}

// GoalView is a goal with its derived progress.
type GoalView struct {
	models.Goal
	Progress  float64            `json:"progress"`
	Remaining int64              `json:"remaining"`
	Status    finance.GoalStatus `json:"status"`
}

// GoalSummary aggregates a user's goals and compares them with current wealth.
type GoalSummary struct {
	finance.GoalsOverview
	TotalWealth int64 `json:"total_wealth"`
}

// GoalServicer defines the contract for financial goals.
type GoalServicer interface {
	CreateGoal(userID string, in GoalInput) (*GoalView, error)
	GetUserGoals(userID string, page pagination.PageRequest) (*pagination.PageResponse[GoalView], error)
	GetGoalByID(userID, goalID string) (*GoalView, error)
	UpdateGoal(userID, goalID string, in GoalUpdate) (*GoalView, error)
	DeleteGoal(userID, goalID string) error
	GetSummary(userID string) (*GoalSummary, error)
}

// Dispatcher hands stored notifications to external delivery channels.
type Dispatcher interface {
	Enabled() bool
	Dispatch(msg notify.Message)
}

// NotificationServicer defines the contract for notifications.
type NotificationServicer interface {
	Notify(userID string, alert finance.Alert) (*models.Notification, error)
	GetUserNotifications(userID string, page pagination.PageRequest, kind models.NotificationKind) (*pagination.PageResponse[models.Notification], error)
	DeleteNotification(userID, notificationID string) error
	ClearNotifications(userID string) (int64, error)
	CountNotifications(userID string) (int64, error)
}

// Dashboard is the overview shown on the home page.
type Dashboard struct {
	TotalAssets       int64              `json:"total_assets"`
	TotalSavings      int64              `json:"total_savings"`
	TotalLoans        int64              `json:"total_loans"`
	NetWorth          int64              `json:"net_worth"`
	MonthlyIncome     int64              `json:"monthly_income"`
	MonthlyExpenses   int64              `json:"monthly_expenses"`
	RecentOperations  []models.Operation `json:"recent_operations"`
	CategorySpending  []CategorySpending `json:"category_spending"`
	NotificationCount int64              `json:"notification_count"`
}

// DashboardServicer defines the contract for the dashboard overview.
type DashboardServicer interface {
	GetDashboard(userID string) (*Dashboard, error)
}

// ReminderServicer scans loans and raises payment reminders.
type ReminderServicer interface {
	RunReminders(now time.Time) (int, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
