package services

import (
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/finance"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/notify"
	"fintrack/internal/pagination"
)

// notificationService persists notifications and forwards them for delivery.
type notificationService struct {
	db         *gorm.DB
	dispatcher Dispatcher
}

// NewNotificationService creates a new NotificationServicer. dispatcher may be nil.
func NewNotificationService(db *gorm.DB, dispatcher Dispatcher) NotificationServicer {
	return &notificationService{db: db, dispatcher: dispatcher}
}

// Notify stores alert for userID and hands it to the delivery channels.
func (s *notificationService) Notify(userID string, alert finance.Alert) (*models.Notification, error) {
	n := &models.Notification{
		UserID:  userID,
		Kind:    alert.Kind,
		Message: alert.Message,
	}
	if err := s.db.Create(n).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.dispatcher != nil && s.dispatcher.Enabled() {
		msg := notify.Message{
			ID:        n.ID,
			UserID:    userID,
			Kind:      string(n.Kind),
			Text:      n.Message,
			CreatedAt: n.CreatedAt,
		}
		var user models.User
		if err := s.db.Select("login", "email").Where("id = ?", userID).First(&user).Error; err != nil {
			logger.Get().Warnw("notification recipient lookup failed", "error", err, "user_id", userID)
		} else {
			msg.Login = user.Login
			msg.Email = user.Email
		}
		s.dispatcher.Dispatch(msg)
	}
	return n, nil
}

// GetUserNotifications lists notifications newest first, optionally of one kind.
func (s *notificationService) GetUserNotifications(userID string, page pagination.PageRequest, kind models.NotificationKind) (*pagination.PageResponse[models.Notification], error) {
	q := s.db.Model(&models.Notification{}).Scopes(ownedBy(userID))
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	resp, err := pagination.Find[models.Notification](q, page, "created_at DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &resp, nil
}

// DeleteNotification dismisses one notification.
func (s *notificationService) DeleteNotification(userID, notificationID string) error {
	result := s.db.Scopes(ownedBy(userID)).Where("id = ?", notificationID).Delete(&models.Notification{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// ClearNotifications dismisses every notification of the user and returns how many were removed.
func (s *notificationService) ClearNotifications(userID string) (int64, error) {
	result := s.db.Where("user_id = ?", userID).Delete(&models.Notification{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// CountNotifications returns how many notifications the user has.
func (s *notificationService) CountNotifications(userID string) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).Scopes(ownedBy(userID)).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}
