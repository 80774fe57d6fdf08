package models

import "time"

// Frequency is how often a recurring expense falls due.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Next returns the due date one period after t.
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return t.AddDate(0, 0, 14)
	case FrequencyQuarterly:
		return AddMonthsClamped(t, 3)
	case FrequencyYearly:
		return AddMonthsClamped(t, 12)
	default:
		return AddMonthsClamped(t, 1)
	}
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringExpense is a bill that repeats on a fixed frequency.
// NextDueDate only ever moves forward.
type RecurringExpense struct {
	Base
	UserID                string     `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID            *string    `gorm:"type:uuid" json:"category_id,omitempty"`
	Name                  string     `gorm:"not null" json:"name"`
	Amount                int64      `gorm:"type:bigint;not null" json:"amount"`
	Frequency             Frequency  `gorm:"not null" json:"frequency"`
	NextDueDate           time.Time  `gorm:"not null;index" json:"next_due_date"`
	LastPaidDate          *time.Time `json:"last_paid_date,omitempty"`
	IsActive              bool       `gorm:"default:true" json:"is_active"`
	ReminderDays          int        `gorm:"not null;default:3" json:"reminder_days"`
	AutoCreateTransaction bool       `json:"auto_create_transaction"`
	LastNotifiedAt        *time.Time `json:"last_notified_at,omitempty"`
}

// AddMonthsClamped adds n months to t, clamping the day to the end of the
// target month (Jan 31 + 1 month = Feb 28/29, not Mar 3).
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
