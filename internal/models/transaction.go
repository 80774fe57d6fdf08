package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a financial transaction in the system
type Transaction struct {
	Base
	UserID             string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID         *string         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	RecurringExpenseID *string         `gorm:"type:uuid;index" json:"recurring_expense_id,omitempty"`
	Type               TransactionType `gorm:"not null" json:"type"`
	Amount             int64           `gorm:"type:bigint;not null" json:"amount"`
	Description        string          `json:"description"`
	Date               time.Time       `gorm:"not null;index" json:"date"`
}
