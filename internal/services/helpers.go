package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
)

// lookupError maps gorm.ErrRecordNotFound to notFound and wraps anything else.
func lookupError(err error, notFound *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// internalError wraps err unless it is nil or already an AppError.
func internalError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// ownedBy scopes a query to rows belonging to userID.
func ownedBy(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
