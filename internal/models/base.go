package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// NewID returns a time-ordered UUIDv7 string suitable for primary keys.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// All lists every model, in dependency order, for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&NotificationPreferences{},
		&Category{},
		&Transaction{},
		&Budget{},
		&Loan{},
		&LoanPayment{},
		&RecurringExpense{},
		&SavingsGoal{},
		&Notification{},
		&NotificationMark{},
		&AuditLog{},
	}
}
