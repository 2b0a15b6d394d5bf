package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/finance"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// reminderService raises payment_due and payment_overdue notifications.
type reminderService struct {
	db            *gorm.DB
	notifications NotificationServicer
}

// NewReminderService creates a new ReminderServicer.
func NewReminderService(db *gorm.DB, notifications NotificationServicer) ReminderServicer {
	return &reminderService{db: db, notifications: notifications}
}

// RunReminders scans every open loan and notifies its owner when the next
// payment is due within the reminder window or overdue. A loan is reminded
// at most once per calendar day. It returns the number of reminders sent.
func (s *reminderService) RunReminders(now time.Time) (int, error) {
	today := finance.DateOnly(now)

	var loans []models.Loan
	if err := s.db.
		Where("balance > 0 AND (last_reminded_on IS NULL OR last_reminded_on < ?)", today).
		Order("payment_date ASC").
		Find(&loans).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log := logger.Named("reminders")
	reminded := 0
	for _, loan := range loans {
		alert, ok := finance.LoanPayment(loan.Name, finance.DaysUntil(loan.PaymentDate, today))
		if !ok {
			continue
		}
		claimed, err := s.claim(loan.ID, today)
		if err != nil {
			log.Errorw("failed to claim loan for reminder", "error", err, "loan_id", loan.ID)
			continue
		}
		if !claimed {
			continue
		}
		if _, err := s.notifications.Notify(loan.UserID, alert); err != nil {
			log.Errorw("failed to create payment reminder", "error", err, "loan_id", loan.ID)
			s.release(loan, today)
			continue
		}
		reminded++
	}

	log.Infow("payment reminders sent", "scanned", len(loans), "reminded", reminded)
	return reminded, nil
}

// claim marks the loan as reminded today unless another run already did.
func (s *reminderService) claim(loanID string, today time.Time) (bool, error) {
	res := s.db.Model(&models.Loan{}).
		Where("id = ? AND (last_reminded_on IS NULL OR last_reminded_on < ?)", loanID, today).
		UpdateColumn("last_reminded_on", today)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// release restores the previous reminder date so a later run retries.
func (s *reminderService) release(loan models.Loan, today time.Time) {
	err := s.db.Model(&models.Loan{}).
		Where("id = ? AND last_reminded_on = ?", loan.ID, today).
		UpdateColumn("last_reminded_on", loan.LastRemindedOn).Error
	if err != nil {
		logger.Named("reminders").Errorw("failed to release reminder claim", "error", err, "loan_id", loan.ID)
	}
}
