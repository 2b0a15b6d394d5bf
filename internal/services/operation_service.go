package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/finance"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// operationService records income and expenses and keeps category balances
// equal to the sum of their operations.
type operationService struct {
	db              *gorm.DB
	notifications   NotificationServicer
	incomeThreshold int64
	now             func() time.Time
}

// NewOperationService creates a new OperationServicer. notifications may be
// nil, in which case no alerts are raised. incomeThreshold is the smallest
// income (kopecks) that triggers an income notification; 0 disables it.
func NewOperationService(db *gorm.DB, notifications NotificationServicer, incomeThreshold int64) OperationServicer {
	return &operationService{
		db:              db,
		notifications:   notifications,
		incomeThreshold: incomeThreshold,
		now:             time.Now,
	}
}

func validateOperationInput(in *OperationInput, today time.Time) error {
	if in.Type != models.OperationTypeIncome && in.Type != models.OperationTypeExpense {
		return apperrors.ErrInvalidOperationType
	}
	if in.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.CategoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id is required")
	}
	if in.Date.IsZero() {
		in.Date = today
	}
	in.Date = finance.DateOnly(in.Date)
	in.Description = strings.TrimSpace(in.Description)
	in.Tags = strings.TrimSpace(in.Tags)
	return nil
}

// CreateOperation records an operation and applies it to its category balance.
func (s *operationService) CreateOperation(userID string, in OperationInput) (*models.Operation, error) {
	if err := validateOperationInput(&in, s.now()); err != nil {
		return nil, err
	}

	op := &models.Operation{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      models.SignedAmount(in.Type, in.Amount),
		Date:        in.Date,
		Description: in.Description,
		Tags:        in.Tags,
	}

	var category models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ownedBy(userID)).Where("id = ?", in.CategoryID).First(&category).Error; err != nil {
			return lookupError(err, apperrors.ErrCategoryNotFound)
		}
		if err := tx.Create(op).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return adjustBalance(tx, category.ID, op.Amount)
	})
	if err != nil {
		return nil, internalError(err)
	}

	category.Balance += op.Amount
	op.Category = &category
	s.raiseAlerts(userID, op)
	return op, nil
}

// GetUserOperations lists operations matching filter, newest first.
func (s *operationService) GetUserOperations(userID string, page pagination.PageRequest, filter OperationFilter) (*pagination.PageResponse[models.Operation], error) {
	q := s.db.Model(&models.Operation{}).Scopes(ownedBy(userID), filter.scope)
	resp, err := pagination.Find[models.Operation](q, page, "date DESC, created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &resp, nil
}

// GetOperationByID retrieves an operation with its category.
func (s *operationService) GetOperationByID(userID, operationID string) (*models.Operation, error) {
	var op models.Operation
	if err := s.db.Scopes(ownedBy(userID)).Preload("Category").Where("id = ?", operationID).First(&op).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrOperationNotFound)
	}
	return &op, nil
}

// UpdateOperation replaces every editable field of an operation. The old
// amount is reversed on the old category and the new one applied to the new
// category in one transaction.
func (s *operationService) UpdateOperation(userID, operationID string, in OperationInput) (*models.Operation, error) {
	if err := validateOperationInput(&in, s.now()); err != nil {
		return nil, err
	}

	var op models.Operation
	var category models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ownedBy(userID)).Where("id = ?", operationID).First(&op).Error; err != nil {
			return lookupError(err, apperrors.ErrOperationNotFound)
		}
		if err := tx.Scopes(ownedBy(userID)).Where("id = ?", in.CategoryID).First(&category).Error; err != nil {
			return lookupError(err, apperrors.ErrCategoryNotFound)
		}
		if err := adjustBalance(tx, op.CategoryID, -op.Amount); err != nil {
			return err
		}

		op.CategoryID = category.ID
		op.Type = in.Type
		op.Amount = models.SignedAmount(in.Type, in.Amount)
		op.Date = in.Date
		op.Description = in.Description
		op.Tags = in.Tags
		if err := tx.Model(&op).Updates(map[string]interface{}{
			"category_id": op.CategoryID,
			"type":        op.Type,
			"amount":      op.Amount,
			"date":        op.Date,
			"description": op.Description,
			"tags":        op.Tags,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := adjustBalance(tx, category.ID, op.Amount); err != nil {
			return err
		}
		return tx.First(&category, "id = ?", category.ID).Error
	})
	if err != nil {
		return nil, internalError(err)
	}

	op.Category = &category
	s.raiseAlerts(userID, &op)
	return &op, nil
}

// DeleteOperation removes an operation and reverses its balance effect.
func (s *operationService) DeleteOperation(userID, operationID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var op models.Operation
		if err := tx.Scopes(ownedBy(userID)).Where("id = ?", operationID).First(&op).Error; err != nil {
			return lookupError(err, apperrors.ErrOperationNotFound)
		}
		if err := tx.Delete(&op).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return adjustBalance(tx, op.CategoryID, -op.Amount)
	})
	return internalError(err)
}

// GetSummary totals the operations matched by filter.
func (s *operationService) GetSummary(userID string, filter OperationFilter) (*OperationSummary, error) {
	var ops []models.Operation
	if err := s.db.Scopes(ownedBy(userID), filter.scope).Select("type", "amount").Find(&ops).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	totals := finance.Sum(ops)
	return &OperationSummary{Totals: totals, Balance: totals.Balance()}, nil
}

// ExportOperations returns every operation matched by filter with its category, newest first.
func (s *operationService) ExportOperations(userID string, filter OperationFilter) ([]models.Operation, error) {
	ops := []models.Operation{}
	if err := s.db.Scopes(ownedBy(userID), filter.scope).
		Preload("Category", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("date DESC, created_at DESC").
		Find(&ops).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ops, nil
}

// raiseAlerts evaluates the limit and income rules for a committed operation.
// Failures are logged; the operation itself has already been stored.
func (s *operationService) raiseAlerts(userID string, op *models.Operation) {
	if s.notifications == nil {
		return
	}

	var alerts []finance.Alert
	switch op.Type {
	case models.OperationTypeExpense:
		alert, ok, err := s.limitAlert(userID, op)
		if err != nil {
			logger.Get().Errorw("failed to evaluate category limit", "error", err, "operation_id", op.ID)
		} else if ok {
			alerts = append(alerts, alert)
		}
	case models.OperationTypeIncome:
		if alert, ok := finance.LargeIncome(op.Abs(), s.incomeThreshold); ok {
			alerts = append(alerts, alert)
		}
	}

	for _, alert := range alerts {
		if _, err := s.notifications.Notify(userID, alert); err != nil {
			logger.Get().Errorw("failed to create notification",
				"error", err,
				"user_id", userID,
				"kind", alert.Kind,
			)
		}
	}
}

func (s *operationService) limitAlert(userID string, op *models.Operation) (finance.Alert, bool, error) {
	var cl models.CategoryLimit
	err := s.db.Scopes(ownedBy(userID)).Preload("Category").Where("category_id = ?", op.CategoryID).Limit(1).Find(&cl).Error
	if err != nil || cl.ID == "" {
		return finance.Alert{}, false, err
	}

	start, end := finance.MonthRange(op.Date)
	var ops []models.Operation
	if err := s.db.Scopes(ownedBy(userID)).
		Where("category_id = ? AND type = ? AND date >= ? AND date < ?", op.CategoryID, models.OperationTypeExpense, start, end).
		Find(&ops).Error; err != nil {
		return finance.Alert{}, false, err
	}

	name := ""
	if cl.Category != nil {
		name = cl.Category.Name
	}
	alert, ok := finance.LimitExceeded(name, finance.CategoryMonthExpenses(ops, op.CategoryID, op.Date), cl.Limit)
	return alert, ok, nil
}

// adjustBalance adds delta to a category balance.
func adjustBalance(tx *gorm.DB, categoryID string, delta int64) error {
	if delta == 0 {
		return nil
	}
	err := tx.Model(&models.Category{}).Where("id = ?", categoryID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// scope applies the filter to an operations query.
func (f OperationFilter) scope(db *gorm.DB) *gorm.DB {
	if f.From != nil {
		db = db.Where("date >= ?", finance.DateOnly(*f.From))
	}
	if f.To != nil {
		db = db.Where("date < ?", finance.DateOnly(*f.To).AddDate(0, 0, 1))
	}
	if f.CategoryID != "" {
		db = db.Where("category_id = ?", f.CategoryID)
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		db = db.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if tags := strings.TrimSpace(f.Tags); tags != "" {
		db = db.Where("LOWER(tags) LIKE ?", "%"+strings.ToLower(tags)+"%")
	}
	return db
}
