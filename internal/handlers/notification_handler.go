package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetbell/internal/errors"
	"budgetbell/internal/models"
	"budgetbell/internal/pagination"
	"budgetbell/internal/services"
)

// NotificationHandler handles the notification inbox.
type NotificationHandler struct {
	notificationService services.NotificationServicer
	auditService        services.AuditServicer
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.NotificationServicer, auditService services.AuditServicer) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, auditService: auditService}
}

// ListNotificationsQuery holds the optional inbox filters.
type ListNotificationsQuery struct {
	pagination.PageRequest
	IsRead *bool                    `form:"is_read"`
	Type   *models.NotificationType `form:"type" binding:"omitempty,notification_type"`
}

// GetNotifications lists the user's visible notifications, newest first.
// @Summary     List notifications
// @Description Get the user's notifications with optional read and type filters
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       is_read   query bool   false "Filter by read state"
// @Param       type      query string false "Filter by notification type"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size (max 100)"
// @Success     200 {object} pagination.PageResponse[models.Notification] "Notifications"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListNotificationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.notificationService.GetUserNotifications(userID, q.PageRequest,
		services.NotificationFilter{IsRead: q.IsRead, Type: q.Type})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetUnreadCount returns the number of unread notifications.
// @Summary     Unread notification count
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Unread count"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.notificationService.GetUnreadCount(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkAsRead marks one notification as read.
// @Summary     Mark a notification as read
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Notification ID"
// @Success     200 {object} models.Notification "Notification"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/{id}/read [put]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	notificationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	notification, err := h.notificationService.MarkAsRead(userID, notificationID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

// MarkAllAsRead marks every unread notification as read.
// @Summary     Mark all notifications as read
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Number of notifications updated"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/read-all [put]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if updated > 0 {
		h.auditService.Log(userID, services.AuditActionMarkAllRead, "notification", "", c.ClientIP(),
			map[string]interface{}{"updated": updated})
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
