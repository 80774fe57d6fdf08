package handlers

import (
	"net/http"
	"testing"

	apperrors "budgetbell/internal/errors"
	"budgetbell/internal/models"
	"budgetbell/internal/pagination"
	"budgetbell/internal/services"

	"github.com/gin-gonic/gin"
)

// --- mock notification service ---

type mockNotificationService struct {
	getUserNotificationsFn func(userID string, page pagination.PageRequest, filter services.NotificationFilter) (*pagination.PageResponse[models.Notification], error)
	getUnreadCountFn       func(userID string) (int64, error)
	markAsReadFn           func(userID, notificationID string) (*models.Notification, error)
	markAllAsReadFn        func(userID string) (int64, error)
}

func (m *mockNotificationService) GetUserNotifications(userID string, page pagination.PageRequest, filter services.NotificationFilter) (*pagination.PageResponse[models.Notification], error) {
	if m.getUserNotificationsFn != nil {
		return m.getUserNotificationsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Notification{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockNotificationService) GetUnreadCount(userID string) (int64, error) {
	if m.getUnreadCountFn != nil {
		return m.getUnreadCountFn(userID)
	}
	return 0, nil
}

func (m *mockNotificationService) MarkAsRead(userID, notificationID string) (*models.Notification, error) {
	if m.markAsReadFn != nil {
		return m.markAsReadFn(userID, notificationID)
	}
	return &models.Notification{}, nil
}

func (m *mockNotificationService) MarkAllAsRead(userID string) (int64, error) {
	if m.markAllAsReadFn != nil {
		return m.markAllAsReadFn(userID)
	}
	return 0, nil
}

var _ services.NotificationServicer = (*mockNotificationService)(nil)

func setupNotificationRouter(handler *NotificationHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/notifications", handler.GetNotifications)
	auth.GET("/notifications/unread-count", handler.GetUnreadCount)
	auth.PUT("/notifications/read-all", handler.MarkAllAsRead)
	auth.PUT("/notifications/:id/read", handler.MarkAsRead)
	return r
}

func TestNotificationHandler_GetNotifications(t *testing.T) {
	t.Run("passes filters and page to the service", func(t *testing.T) {
		var gotFilter services.NotificationFilter
		var gotPage pagination.PageRequest
		svc := &mockNotificationService{
			getUserNotificationsFn: func(userID string, page pagination.PageRequest, filter services.NotificationFilter) (*pagination.PageResponse[models.Notification], error) {
				if userID != testUserID {
					t.Errorf("expected user %s, got %s", testUserID, userID)
				}
				gotFilter, gotPage = filter, page
				resp := pagination.NewPageResponse([]models.Notification{
					{UserID: userID, Type: models.NotificationTypeBudgetThreshold, Title: "Budget alert"},
				}, 2, 10, 11)
				return &resp, nil
			},
		}
		r := setupNotificationRouter(NewNotificationHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/notifications?is_read=false&type=budget-threshold&page=2&page_size=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.IsRead == nil || *gotFilter.IsRead {
			t.Errorf("expected is_read=false filter, got %v", gotFilter.IsRead)
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.NotificationTypeBudgetThreshold {
			t.Errorf("expected budget-threshold filter, got %v", gotFilter.Type)
		}
		if gotPage.Page != 2 || gotPage.PageSize != 10 {
			t.Errorf("expected page 2 size 10, got %+v", gotPage)
		}
		result := parseJSON(t, rec)
		if result["total_items"].(float64) != 11 {
			t.Errorf("expected 11 total items, got %v", result["total_items"])
		}
		if len(result["data"].([]interface{})) != 1 {
			t.Errorf("expected 1 notification, got %v", result["data"])
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupNotificationRouter(NewNotificationHandler(&mockNotificationService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/notifications?type=birthday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on oversized page", func(t *testing.T) {
		r := setupNotificationRouter(NewNotificationHandler(&mockNotificationService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/notifications?page_size=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestNotificationHandler_GetUnreadCount(t *testing.T) {
	svc := &mockNotificationService{
		getUnreadCountFn: func(string) (int64, error) { return 4, nil },
	}
	r := setupNotificationRouter(NewNotificationHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/notifications/unread-count", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if parseJSON(t, rec)["unread_count"].(float64) != 4 {
		t.Errorf("expected unread_count 4, got %s", rec.Body.String())
	}
}

func TestNotificationHandler_MarkAsRead(t *testing.T) {
	const notificationID = "0190a8f2-7c4e-7a6b-9d3e-aaaaaaaaaaaa"

	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockNotificationService{
			markAsReadFn: func(_, id string) (*models.Notification, error) {
				return &models.Notification{Base: models.Base{ID: id}, IsRead: true}, nil
			},
		}
		r := setupNotificationRouter(NewNotificationHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/notifications/"+notificationID+"/read", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		notification := parseJSON(t, rec)["notification"].(map[string]interface{})
		if notification["id"] != notificationID || notification["is_read"] != true {
			t.Errorf("unexpected notification %v", notification)
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupNotificationRouter(NewNotificationHandler(&mockNotificationService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/notifications/42/read", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockNotificationService{
			markAsReadFn: func(string, string) (*models.Notification, error) {
				return nil, apperrors.ErrNotificationNotFound
			},
		}
		r := setupNotificationRouter(NewNotificationHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/notifications/"+notificationID+"/read", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOTIFICATION_NOT_FOUND")
	})
}

func TestNotificationHandler_MarkAllAsRead(t *testing.T) {
	t.Run("audits when notifications were updated", func(t *testing.T) {
		audit := &mockAuditService{}
		svc := &mockNotificationService{
			markAllAsReadFn: func(string) (int64, error) { return 3, nil },
		}
		r := setupNotificationRouter(NewNotificationHandler(svc, audit))

		rec := doRequest(r, "PUT", "/notifications/read-all", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["updated"].(float64) != 3 {
			t.Errorf("expected updated 3, got %s", rec.Body.String())
		}
		entry := audit.last(t)
		if entry.action != services.AuditActionMarkAllRead || entry.userID != testUserID {
			t.Errorf("unexpected audit entry %+v", entry)
		}
	})

	t.Run("skips audit when nothing changed", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupNotificationRouter(NewNotificationHandler(&mockNotificationService{}, audit))

		rec := doRequest(r, "PUT", "/notifications/read-all", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(audit.entries) != 0 {
			t.Errorf("expected no audit entries, got %d", len(audit.entries))
		}
	})
}
