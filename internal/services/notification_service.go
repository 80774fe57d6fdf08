package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "budgetbell/internal/errors"
	"budgetbell/internal/models"
	"budgetbell/internal/pagination"
)

// notificationService serves the user's notification inbox. Notifications
// are written only by the reminder engine; here they are read and marked read.
type notificationService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// visible limits a query to the user's notifications that are due for display.
func (s *notificationService) visible(userID string) *gorm.DB {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Where("(scheduled_at IS NULL OR scheduled_at <= ?)", s.now())
}

// GetUserNotifications returns a paginated list of the user's notifications, newest first.
func (s *notificationService) GetUserNotifications(
	userID string,
	page pagination.PageRequest,
	filter NotificationFilter,
) (*pagination.PageResponse[models.Notification], error) {
	page.Defaults()

	base := s.visible(userID)
	if filter.IsRead != nil {
		base = base.Where("is_read = ?", *filter.IsRead)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	if err := base.Order("created_at DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(notifications, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetUnreadCount returns the number of visible unread notifications.
func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	var count int64
	if err := s.visible(userID).Where("is_read = ?", false).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// MarkAsRead marks one notification read. Marking an already read
// notification is a no-op that keeps the original ReadAt.
func (s *notificationService) MarkAsRead(userID, notificationID string) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if n.IsRead {
		return &n, nil
	}

	now := s.now()
	if err := s.db.Model(&n).Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	n.IsRead = true
	n.ReadAt = &now
	return &n, nil
}

// MarkAllAsRead marks every visible unread notification read and returns how many changed.
func (s *notificationService) MarkAllAsRead(userID string) (int64, error) {
	res := s.visible(userID).
		Where("is_read = ?", false).
		Updates(map[string]interface{}{"is_read": true, "read_at": s.now()})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}
