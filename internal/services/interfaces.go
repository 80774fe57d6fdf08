package services

import (
	"time"

	"gorm.io/gorm"

	"budgetbell/internal/models"
	"budgetbell/internal/pagination"
)

// NotificationFilter holds optional filter parameters for listing notifications.
type NotificationFilter struct {
	IsRead *bool
	Type   *models.NotificationType
}

// NotificationServicer defines the contract for the user's notification inbox.
type NotificationServicer interface {
	GetUserNotifications(userID string, page pagination.PageRequest, filter NotificationFilter) (*pagination.PageResponse[models.Notification], error)
	GetUnreadCount(userID string) (int64, error)
	MarkAsRead(userID, notificationID string) (*models.Notification, error)
	MarkAllAsRead(userID string) (int64, error)
}

// PreferencesUpdate carries a partial update; nil fields are left unchanged.
type PreferencesUpdate struct {
	EmailBudget        *bool
	PushBudget         *bool
	EmailLoan          *bool
	PushLoan           *bool
	EmailRecurring     *bool
	PushRecurring      *bool
	EmailGoal          *bool
	PushGoal           *bool
	BudgetThreshold    *int
	ReminderDaysBefore *int
	GoalMilestones     *string
}

// PreferencesServicer defines the contract for notification preferences.
type PreferencesServicer interface {
	GetPreferences(userID string) (*models.NotificationPreferences, error)
	UpdatePreferences(userID string, update PreferencesUpdate) (*models.NotificationPreferences, error)
}

// RecurringExpenseServicer defines the contract for recording recurring expense payments.
type RecurringExpenseServicer interface {
	RecordPayment(userID, expenseID string, paidAt time.Time) (*models.Transaction, *models.RecurringExpense, error)
	RecordPaymentTx(tx *gorm.DB, expenseID string, dueDate, paidAt time.Time) (*models.Transaction, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
