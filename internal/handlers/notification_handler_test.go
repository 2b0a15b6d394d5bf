package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/finance"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

const testNotificationID = "0190a1b2-c3d4-7e5f-8a9b-000000008001"

type mockNotificationService struct {
	notifyFn               func(userID string, alert finance.Alert) (*models.Notification, error)
	getUserNotificationsFn func(userID string, page pagination.PageRequest, kind models.NotificationKind) (*pagination.PageResponse[models.Notification], error)
	deleteNotificationFn   func(userID, notificationID string) error
	clearNotificationsFn   func(userID string) (int64, error)
	countNotificationsFn   func(userID string) (int64, error)
}

func (m *mockNotificationService) Notify(userID string, alert finance.Alert) (*models.Notification, error) {
	if m.notifyFn != nil {
		return m.notifyFn(userID, alert)
	}
	return &models.Notification{}, nil
}

func (m *mockNotificationService) GetUserNotifications(userID string, page pagination.PageRequest, kind models.NotificationKind) (*pagination.PageResponse[models.Notification], error) {
	if m.getUserNotificationsFn != nil {
		return m.getUserNotificationsFn(userID, page, kind)
	}
	resp := pagination.NewPageResponse([]models.Notification{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockNotificationService) DeleteNotification(userID, notificationID string) error {
	if m.deleteNotificationFn != nil {
		return m.deleteNotificationFn(userID, notificationID)
	}
	return nil
}

func (m *mockNotificationService) ClearNotifications(userID string) (int64, error) {
	if m.clearNotificationsFn != nil {
		return m.clearNotificationsFn(userID)
	}
	return 0, nil
}

func (m *mockNotificationService) CountNotifications(userID string) (int64, error) {
	if m.countNotificationsFn != nil {
		return m.countNotificationsFn(userID)
	}
	return 0, nil
}

func setupNotificationRouter(handler *NotificationHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/notifications", handler.GetNotifications)
	auth.DELETE("/notifications", handler.ClearNotifications)
	auth.DELETE("/notifications/:id", handler.DeleteNotification)
	return r
}

func TestNotificationHandler_GetNotifications(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantKind   models.NotificationKind
		wantStatus int
	}{
		{name: "all kinds", query: "", wantKind: "", wantStatus: http.StatusOK},
		{name: "limit exceeded", query: "?kind=limit_exceeded", wantKind: models.NotificationLimitExceeded, wantStatus: http.StatusOK},
		{name: "payment overdue", query: "?kind=payment_overdue", wantKind: models.NotificationPaymentOverdue, wantStatus: http.StatusOK},
		{name: "unknown kind", query: "?kind=spam", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotKind models.NotificationKind = "unset"
			svc := &mockNotificationService{
				getUserNotificationsFn: func(_ string, _ pagination.PageRequest, kind models.NotificationKind) (*pagination.PageResponse[models.Notification], error) {
					gotKind = kind
					resp := pagination.NewPageResponse([]models.Notification{{Kind: models.NotificationIncome, Message: "Income received: +50 000 ₽"}}, 1, 20, 1)
					return &resp, nil
				},
			}
			r := setupNotificationRouter(NewNotificationHandler(svc))

			rec := doRequest(r, "GET", "/notifications"+tt.query, "")

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
				return
			}
			if gotKind != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, gotKind)
			}
		})
	}
}

func TestNotificationHandler_Delete(t *testing.T) {
	t.Run("deletes one", func(t *testing.T) {
		deleted := ""
		svc := &mockNotificationService{
			deleteNotificationFn: func(_, id string) error {
				deleted = id
				return nil
			},
		}
		r := setupNotificationRouter(NewNotificationHandler(svc))

		rec := doRequest(r, "DELETE", "/notifications/"+testNotificationID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deleted != testNotificationID {
			t.Errorf("expected %s deleted, got %q", testNotificationID, deleted)
		}
	})

	t.Run("returns 404 for unknown notification", func(t *testing.T) {
		svc := &mockNotificationService{
			deleteNotificationFn: func(_, _ string) error { return apperrors.ErrNotificationNotFound },
		}
		r := setupNotificationRouter(NewNotificationHandler(svc))

		rec := doRequest(r, "DELETE", "/notifications/"+testNotificationID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOTIFICATION_NOT_FOUND")
	})

	t.Run("clears all", func(t *testing.T) {
		svc := &mockNotificationService{
			clearNotificationsFn: func(userID string) (int64, error) {
				if userID != testUserID {
					t.Errorf("unexpected user %q", userID)
				}
				return 7, nil
			},
		}
		r := setupNotificationRouter(NewNotificationHandler(svc))

		rec := doRequest(r, "DELETE", "/notifications", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := parseJSON(t, rec)["deleted"]; got != float64(7) {
			t.Errorf("expected 7 deleted, got %v", got)
		}
	})
}
