package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType identifies the rule that produced a notification.
type NotificationType string

const (
	NotificationTypeBudgetThreshold      NotificationType = "budget-threshold"
	NotificationTypeLoanPaymentDue       NotificationType = "loan-payment-due"
	NotificationTypeRecurringDue         NotificationType = "recurring-expense-due"
	NotificationTypeRecurringAutoPaid    NotificationType = "recurring-expense-auto-paid"
	NotificationTypeSavingsGoalMilestone NotificationType = "savings-goal-milestone"
	NotificationTypeSavingsGoalAchieved  NotificationType = "savings-goal-achieved"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeBudgetThreshold, NotificationTypeLoanPaymentDue,
		NotificationTypeRecurringDue, NotificationTypeRecurringAutoPaid,
		NotificationTypeSavingsGoalMilestone, NotificationTypeSavingsGoalAchieved:
		return true
	}
	return false
}

// NotificationPriority orders notifications for delivery.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is an in-app reminder created by the reminder engine.
// After creation only IsRead/ReadAt change.
type Notification struct {
	Base
	UserID      string               `gorm:"type:uuid;not null;index:idx_notifications_user_read" json:"user_id"`
	Type        NotificationType     `gorm:"size:40;not null" json:"type"`
	Title       string               `gorm:"not null" json:"title"`
	Message     string               `gorm:"not null" json:"message"`
	Priority    NotificationPriority `gorm:"size:10;not null;default:'normal'" json:"priority"`
	IsRead      bool                 `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	ReadAt      *time.Time           `json:"read_at,omitempty"`
	ScheduledAt *time.Time           `gorm:"index" json:"scheduled_at,omitempty"`

	BudgetID           *string `gorm:"type:uuid" json:"budget_id,omitempty"`
	LoanID             *string `gorm:"type:uuid" json:"loan_id,omitempty"`
	RecurringExpenseID *string `gorm:"type:uuid" json:"recurring_expense_id,omitempty"`
	SavingsGoalID      *string `gorm:"type:uuid" json:"savings_goal_id,omitempty"`
	TransactionID      *string `gorm:"type:uuid" json:"transaction_id,omitempty"`
}

// NotificationMark records that a notification was emitted for one
// (user, type, source entity, period) occurrence. The unique index is what
// keeps concurrent reminder runs from notifying twice.
type NotificationMark struct {
	ID             string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string           `gorm:"type:uuid;not null;uniqueIndex:idx_notification_mark_key,priority:1" json:"user_id"`
	Type           NotificationType `gorm:"size:40;not null;uniqueIndex:idx_notification_mark_key,priority:2" json:"type"`
	SourceID       string           `gorm:"type:uuid;not null;uniqueIndex:idx_notification_mark_key,priority:3" json:"source_id"`
	PeriodKey      string           `gorm:"size:32;not null;uniqueIndex:idx_notification_mark_key,priority:4" json:"period_key"`
	NotificationID *string          `gorm:"type:uuid" json:"notification_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// BeforeCreate assigns the mark its ID.
func (m *NotificationMark) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	return nil
}
