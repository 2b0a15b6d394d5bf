package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/finance"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// loanService handles loans and their repayment schedule.
type loanService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLoanService creates a new LoanServicer.
func NewLoanService(db *gorm.DB) LoanServicer {
	return &loanService{db: db, now: time.Now}
}

// newLoanView derives the repayment figures of loan as of now.
func newLoanView(loan models.Loan, now time.Time) LoanView {
	days := finance.DaysUntil(loan.PaymentDate, now)
	return LoanView{
		Loan:             loan,
		DaysUntilPayment: days,
		PaymentStatus:    finance.PaymentStatusFor(days),
		MonthsLeft:       finance.MonthsLeft(loan.Balance, loan.Payment),
		ProgressPercent:  finance.LoanProgress(loan.Balance, loan.Payment),
	}
}

// CreateLoan creates a new loan.
func (s *loanService) CreateLoan(userID string, in LoanInput) (*LoanView, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "loan name is required")
	case in.Balance < 0:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "balance cannot be negative")
	case in.Payment <= 0:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment must be greater than zero")
	case in.PaymentDate.IsZero():
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment_date is required")
	}

	loan := models.Loan{
		UserID:      userID,
		Name:        name,
		Balance:     in.Balance,
		Payment:     in.Payment,
		PaymentDate: finance.DateOnly(in.PaymentDate),
	}
	if err := s.db.Create(&loan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	view := newLoanView(loan, s.now())
	return &view, nil
}

// GetUserLoans lists loans ordered by the next payment date.
func (s *loanService) GetUserLoans(userID string, page pagination.PageRequest) (*pagination.PageResponse[LoanView], error) {
	q := s.db.Model(&models.Loan{}).Scopes(ownedBy(userID))
	loans, err := pagination.Find[models.Loan](q, page, "payment_date ASC, created_at ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now()
	views := make([]LoanView, 0, len(loans.Data))
	for _, loan := range loans.Data {
		views = append(views, newLoanView(loan, now))
	}
	resp := pagination.NewPageResponse(views, loans.Page, loans.PageSize, loans.TotalItems)
	return &resp, nil
}

func (s *loanService) getLoan(userID, loanID string) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.Scopes(ownedBy(userID)).Where("id = ?", loanID).First(&loan).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrLoanNotFound)
	}
	return &loan, nil
}

// GetLoanByID retrieves a loan with its derived figures.
func (s *loanService) GetLoanByID(userID, loanID string) (*LoanView, error) {
	loan, err := s.getLoan(userID, loanID)
	if err != nil {
		return nil, err
	}
	view := newLoanView(*loan, s.now())
	return &view, nil
}

// UpdateLoan applies the non-nil fields of in.
func (s *loanService) UpdateLoan(userID, loanID string, in LoanUpdate) (*LoanView, error) {
	loan, err := s.getLoan(userID, loanID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "loan name cannot be empty")
		}
		loan.Name = name
		updates["name"] = name
	}
	if in.Balance != nil {
		if *in.Balance < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "balance cannot be negative")
		}
		loan.Balance = *in.Balance
		updates["balance"] = *in.Balance
	}
	if in.Payment != nil {
		if *in.Payment <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment must be greater than zero")
		}
		loan.Payment = *in.Payment
		updates["payment"] = *in.Payment
	}
	if in.PaymentDate != nil {
		loan.PaymentDate = finance.DateOnly(*in.PaymentDate)
		updates["payment_date"] = loan.PaymentDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(loan).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	view := newLoanView(*loan, s.now())
	return &view, nil
}

// DeleteLoan soft-deletes a loan.
func (s *loanService) DeleteLoan(userID, loanID string) error {
	loan, err := s.getLoan(userID, loanID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(loan).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetSchedule lists the remaining installments of a loan.
func (s *loanService) GetSchedule(userID, loanID string) ([]finance.Installment, error) {
	loan, err := s.getLoan(userID, loanID)
	if err != nil {
		return nil, err
	}
	return finance.Schedule(loan.Balance, loan.Payment, loan.PaymentDate), nil
}

// RecordPayment pays amount (the regular payment when amount is 0) off the
// balance and moves the next payment date one month ahead.
func (s *loanService) RecordPayment(userID, loanID string, amount int64) (*LoanView, error) {
	if amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
	}

	var loan models.Loan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ownedBy(userID)).Where("id = ?", loanID).First(&loan).Error; err != nil {
			return lookupError(err, apperrors.ErrLoanNotFound)
		}
		if loan.Balance <= 0 {
			return apperrors.ErrLoanPaidOff
		}

		if amount == 0 {
			amount = loan.Payment
		}
		if amount > loan.Balance {
			amount = loan.Balance
		}
		loan.Balance -= amount
		loan.PaymentDate = finance.AddMonths(finance.DateOnly(loan.PaymentDate), 1)

		err := tx.Model(&loan).Updates(map[string]interface{}{
			"balance":      loan.Balance,
			"payment_date": loan.PaymentDate,
		}).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, internalError(err)
	}

	view := newLoanView(loan, s.now())
	return &view, nil
}

// GetSummary totals outstanding balances and monthly payments.
func (s *loanService) GetSummary(userID string) (*LoanSummary, error) {
	var summary LoanSummary
	err := s.db.Model(&models.Loan{}).Scopes(ownedBy(userID)).
		Select("COALESCE(SUM(balance), 0) AS total_balance, COALESCE(SUM(payment), 0) AS total_monthly_payment, COUNT(*) AS count").
		Scan(&summary).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &summary, nil
}
