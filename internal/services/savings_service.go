package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/finance"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

const keyRateTimeout = 5 * time.Second

// savingsService handles savings accounts.
type savingsService struct {
	db    *gorm.DB
	rates KeyRateProvider
}

// NewSavingsService creates a new SavingsServicer. rates may be nil, in
// which case the summary carries no key rate.
func NewSavingsService(db *gorm.DB, rates KeyRateProvider) SavingsServicer {
	return &savingsService{db: db, rates: rates}
}

func validateRate(rate float64) error {
	if rate < 0 || rate > 100 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "interest_rate must be between 0 and 100")
	}
	return nil
}

// CreateAccount creates a new savings account.
func (s *savingsService) CreateAccount(userID, name string, balance int64, rate float64) (*models.SavingsAccount, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if err := validateRate(rate); err != nil {
		return nil, err
	}

	acc := &models.SavingsAccount{UserID: userID, Name: name, Balance: balance, InterestRate: rate}
	if err := s.db.Create(acc).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return acc, nil
}

// GetUserAccounts retrieves a paginated list of savings accounts.
func (s *savingsService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsAccount], error) {
	q := s.db.Model(&models.SavingsAccount{}).Scopes(ownedBy(userID))
	resp, err := pagination.Find[models.SavingsAccount](q, page, "created_at ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &resp, nil
}

// GetAccountByID retrieves a savings account by ID for a specific user.
func (s *savingsService) GetAccountByID(userID, accountID string) (*models.SavingsAccount, error) {
	var acc models.SavingsAccount
	if err := s.db.Scopes(ownedBy(userID)).Where("id = ?", accountID).First(&acc).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrSavingsAccountNotFound)
	}
	return &acc, nil
}

// UpdateAccount applies the non-nil changes to a savings account.
func (s *savingsService) UpdateAccount(userID, accountID string, name *string, balance *int64, rate *float64) (*models.SavingsAccount, error) {
	acc, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name cannot be empty")
		}
		acc.Name = trimmed
		updates["name"] = trimmed
	}
	if balance != nil {
		acc.Balance = *balance
		updates["balance"] = *balance
	}
	if rate != nil {
		if err := validateRate(*rate); err != nil {
			return nil, err
		}
		acc.InterestRate = *rate
		updates["interest_rate"] = *rate
	}
	if len(updates) == 0 {
		return acc, nil
	}

	if err := s.db.Model(acc).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return acc, nil
}

// DeleteAccount soft-deletes a savings account.
func (s *savingsService) DeleteAccount(userID, accountID string) error {
	acc, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(acc).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetSummary totals the accounts and projects one month of interest. The
// key rate is attached when a provider is configured and reachable.
func (s *savingsService) GetSummary(ctx context.Context, userID string) (*SavingsSummary, error) {
	var accounts []models.SavingsAccount
	if err := s.db.Scopes(ownedBy(userID)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &SavingsSummary{Count: int64(len(accounts))}
	rates := make([]float64, 0, len(accounts))
	for _, acc := range accounts {
		summary.TotalBalance += acc.Balance
		summary.ProjectedMonthlyInterest += finance.MonthlyInterest(acc.Balance, acc.InterestRate)
		rates = append(rates, acc.InterestRate)
	}
	summary.AverageRate = finance.AverageRate(rates)

	if s.rates != nil {
		ctx, cancel := context.WithTimeout(ctx, keyRateTimeout)
		defer cancel()
		rate, err := s.rates.KeyRate(ctx)
		if err != nil {
			logger.Get().Warnw("key rate unavailable", "error", err)
		} else {
			summary.KeyRate = &rate
		}
	}
	return summary, nil
}
