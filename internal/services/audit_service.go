package services

import (
	"encoding/json"

	"budgetbell/internal/logger"
	"budgetbell/internal/models"

	"gorm.io/gorm"
)

// Audit actions recorded by the API.
const (
	AuditActionUpdatePreferences  = "UPDATE_PREFERENCES"
	AuditActionRecordPayment      = "RECORD_RECURRING_PAYMENT"
	AuditActionMarkAllRead        = "MARK_ALL_NOTIFICATIONS_READ"
	AuditActionTriggerReminderRun = "TRIGGER_REMINDER_RUN"
	AuditActionScheduledRun       = "SCHEDULED_REMINDER_RUN"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}
	if userID != "" {
		entry.UserID = &userID
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
