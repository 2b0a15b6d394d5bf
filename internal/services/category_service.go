package services

import (
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/finance"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// categoryService handles categories and their monthly limits.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category with an opening balance.
func (s *categoryService) CreateCategory(userID, name string, balance int64) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if err := s.ensureUniqueName(userID, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{UserID: userID, Name: name, Balance: balance}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories retrieves a paginated list of categories for a user.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	q := s.db.Model(&models.Category{}).Scopes(ownedBy(userID))
	resp, err := pagination.Find[models.Category](q, page, "name ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &resp, nil
}

// GetCategoryByID retrieves a category by ID for a specific user.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Scopes(ownedBy(userID)).Where("id = ?", categoryID).First(&category).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrCategoryNotFound)
	}
	return &category, nil
}

// UpdateCategory renames a category. The balance is owned by operations and
// cannot be edited directly.
func (s *categoryService) UpdateCategory(userID, categoryID, name string) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" || name == category.Name {
		return category, nil
	}
	if err := s.ensureUniqueName(userID, name, categoryID); err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.db.Model(category).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// DeleteCategory removes a category and its limit. Categories that still
// have operations cannot be deleted.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Operation{}).Where("category_id = ?", category.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrCategoryInUse
		}
		if err := tx.Unscoped().Where("category_id = ?", category.ID).Delete(&models.CategoryLimit{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// CreateLimit sets a monthly cap on a category. Each category has at most one limit.
func (s *categoryService) CreateLimit(userID, categoryID string, limit int64) (*models.CategoryLimit, error) {
	if limit <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be greater than zero")
	}
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.CategoryLimit{}).Where("category_id = ?", category.ID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrLimitExists
	}

	cl := &models.CategoryLimit{UserID: userID, CategoryID: category.ID, Limit: limit}
	if err := s.db.Create(cl).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	cl.Category = category
	return cl, nil
}

// GetUserLimits returns every limit of the user with its category.
func (s *categoryService) GetUserLimits(userID string) ([]models.CategoryLimit, error) {
	limits := []models.CategoryLimit{}
	if err := s.db.Scopes(ownedBy(userID)).Preload("Category").Order("created_at ASC").Find(&limits).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return limits, nil
}

func (s *categoryService) getLimit(userID, limitID string) (*models.CategoryLimit, error) {
	var cl models.CategoryLimit
	if err := s.db.Scopes(ownedBy(userID)).Preload("Category").Where("id = ?", limitID).First(&cl).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrLimitNotFound)
	}
	return &cl, nil
}

// UpdateLimit changes the monthly cap.
func (s *categoryService) UpdateLimit(userID, limitID string, limit int64) (*models.CategoryLimit, error) {
	if limit <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be greater than zero")
	}
	cl, err := s.getLimit(userID, limitID)
	if err != nil {
		return nil, err
	}
	cl.Limit = limit
	if err := s.db.Model(cl).Update("monthly_limit", limit).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return cl, nil
}

// DeleteLimit removes a limit; the category becomes uncapped.
func (s *categoryService) DeleteLimit(userID, limitID string) error {
	cl, err := s.getLimit(userID, limitID)
	if err != nil {
		return err
	}
	if err := s.db.Unscoped().Delete(cl).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetSpending reports every category's expenses in month against its limit,
// ordered by category name.
func (s *categoryService) GetSpending(userID string, month time.Time) ([]CategorySpending, error) {
	return categorySpending(s.db, userID, month)
}

func categorySpending(db *gorm.DB, userID string, month time.Time) ([]CategorySpending, error) {
	var categories []models.Category
	if err := db.Scopes(ownedBy(userID)).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var limits []models.CategoryLimit
	if err := db.Scopes(ownedBy(userID)).Find(&limits).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	limitByCategory := make(map[string]int64, len(limits))
	for _, l := range limits {
		limitByCategory[l.CategoryID] = l.Limit
	}

	start, end := finance.MonthRange(month)
	var ops []models.Operation
	if err := db.Scopes(ownedBy(userID)).
		Where("type = ? AND date >= ? AND date < ?", models.OperationTypeExpense, start, end).
		Find(&ops).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	spent := finance.ExpensesByCategory(ops, month)

	out := make([]CategorySpending, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategorySpending{
			CategoryID: c.ID,
			Name:       c.Name,
			LimitUsage: finance.EvaluateLimit(spent[c.ID], limitByCategory[c.ID]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *categoryService) ensureUniqueName(userID, name, exceptID string) error {
	q := s.db.Model(&models.Category{}).Scopes(ownedBy(userID)).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}
