package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/finance"
	"fintrack/internal/models"
)

const recentOperationsLimit = 5

// dashboardService assembles the home page overview.
type dashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db, now: time.Now}
}

// GetDashboard returns balances, this month's cash flow, recent operations
// and category spending for the user.
func (s *dashboardService) GetDashboard(userID string) (*Dashboard, error) {
	now := s.now()

	assets, err := balanceSummary(s.db, &models.Asset{}, userID)
	if err != nil {
		return nil, err
	}
	savings, err := balanceSummary(s.db, &models.SavingsAccount{}, userID)
	if err != nil {
		return nil, err
	}
	loans, err := balanceSummary(s.db, &models.Loan{}, userID)
	if err != nil {
		return nil, err
	}

	start, end := finance.MonthRange(now)
	var monthOps []models.Operation
	if err := s.db.Scopes(ownedBy(userID)).
		Where("date >= ? AND date < ?", start, end).
		Select("type", "amount", "date", "category_id").
		Find(&monthOps).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	totals := finance.MonthTotals(monthOps, now)

	recent := []models.Operation{}
	if err := s.db.Scopes(ownedBy(userID)).Preload("Category").
		Order("date DESC, created_at DESC").
		Limit(recentOperationsLimit).
		Find(&recent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spending, err := categorySpending(s.db, userID, now)
	if err != nil {
		return nil, err
	}

	var notifications int64
	if err := s.db.Model(&models.Notification{}).Scopes(ownedBy(userID)).Count(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &Dashboard{
		TotalAssets:       assets.Total,
		TotalSavings:      savings.Total,
		TotalLoans:        loans.Total,
		NetWorth:          finance.NetWorth(assets.Total, savings.Total, loans.Total),
		MonthlyIncome:     totals.Income,
		MonthlyExpenses:   totals.Expenses,
		RecentOperations:  recent,
		CategorySpending:  spending,
		NotificationCount: notifications,
	}, nil
}
