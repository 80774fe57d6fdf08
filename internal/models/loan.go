package models

import "time"

// Loan tracks a user's debt. Balance is decremented as payments are recorded
// and never goes negative.
type Loan struct {
	Base
	UserID         string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string    `gorm:"not null" json:"name"`
	InitialAmount  int64     `gorm:"type:bigint;not null" json:"initial_amount"`
	Balance        int64     `gorm:"type:bigint;not null" json:"balance"`
	MonthlyPayment int64     `gorm:"type:bigint;not null" json:"monthly_payment"`
	InterestRate   float64   `gorm:"not null" json:"interest_rate"`
	StartDate      time.Time `gorm:"not null" json:"start_date"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`

	Payments []LoanPayment `gorm:"foreignKey:LoanID" json:"payments,omitempty"`
}

// LoanPayment is one recorded installment against a loan.
type LoanPayment struct {
	Base
	LoanID string    `gorm:"type:uuid;not null;index" json:"loan_id"`
	Amount int64     `gorm:"type:bigint;not null" json:"amount"`
	PaidAt time.Time `gorm:"not null" json:"paid_at"`
}
